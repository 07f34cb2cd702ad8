package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockQuizRepository is a mock implementation of repositories.QuizRepository.
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if quiz := args.Get(0); quiz != nil {
		return quiz.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizRepository) GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Quiz, error) {
	args := m.Called(ctx, teacherID)
	if quizzes := args.Get(0); quizzes != nil {
		return quizzes.([]*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuizRepository) GetByClassrooms(ctx context.Context, classroomIDs []uint) ([]*models.Quiz, error) {
	args := m.Called(ctx, classroomIDs)
	if quizzes := args.Get(0); quizzes != nil {
		return quizzes.([]*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClassroomRepository is a mock implementation of repositories.ClassroomRepository.
type MockClassroomRepository struct {
	mock.Mock
}

func (m *MockClassroomRepository) GetByCode(ctx context.Context, classCode string) (*models.Classroom, error) {
	args := m.Called(ctx, classCode)
	if classroom := args.Get(0); classroom != nil {
		return classroom.(*models.Classroom), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClassroomRepository) GetJoinedClassroomIDs(ctx context.Context, studentID uint) ([]uint, error) {
	args := m.Called(ctx, studentID)
	if ids := args.Get(0); ids != nil {
		return ids.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClassroomRepository) IsMember(ctx context.Context, classroomID, studentID uint) (bool, error) {
	args := m.Called(ctx, classroomID, studentID)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeSubmissionRepo is an in-memory attempt ledger with the same conditional
// insert semantics as the postgres implementation. It is safe for concurrent
// use, so duplicate-guard races can be exercised for real.
type fakeSubmissionRepo struct {
	mu   sync.Mutex
	rows map[[2]uint]*models.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{rows: make(map[[2]uint]*models.Submission)}
}

func (f *fakeSubmissionRepo) Insert(ctx context.Context, submission *models.Submission) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := [2]uint{submission.QuizID, submission.StudentID}
	if _, exists := f.rows[key]; exists {
		return false, nil
	}
	submission.ID = uint(len(f.rows) + 1)
	stored := *submission
	f.rows[key] = &stored
	return true, nil
}

func (f *fakeSubmissionRepo) GetByQuizAndStudent(ctx context.Context, quizID, studentID uint) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[[2]uint{quizID, studentID}]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var submissions []*models.Submission
	for key, row := range f.rows {
		if key[0] == quizID {
			copied := *row
			submissions = append(submissions, &copied)
		}
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) Exists(ctx context.Context, quizID, studentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.rows[[2]uint{quizID, studentID}]
	return ok, nil
}

func (f *fakeSubmissionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeProctoringRepo is an in-memory counter store with the atomic upsert
// semantics of the postgres implementation.
type fakeProctoringRepo struct {
	mu     sync.Mutex
	states map[[2]uint]*models.ProctoringState
}

func newFakeProctoringRepo() *fakeProctoringRepo {
	return &fakeProctoringRepo{states: make(map[[2]uint]*models.ProctoringState)}
}

func (f *fakeProctoringRepo) IncrementTabSwitch(ctx context.Context, quizID, studentID uint, at time.Time) (*models.ProctoringState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := [2]uint{quizID, studentID}
	state, ok := f.states[key]
	if !ok {
		state = &models.ProctoringState{QuizID: quizID, StudentID: studentID}
		f.states[key] = state
	}
	state.TabSwitchCount++
	state.LastDetected = at

	copied := *state
	return &copied, nil
}

func (f *fakeProctoringRepo) Get(ctx context.Context, quizID, studentID uint) (*models.ProctoringState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if state, ok := f.states[[2]uint{quizID, studentID}]; ok {
		copied := *state
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// testRepository aggregates per-test repository doubles behind the
// repositories.Repository interface.
type testRepository struct {
	quiz       repositories.QuizRepository
	submission repositories.SubmissionRepository
	proctoring repositories.ProctoringRepository
	classroom  repositories.ClassroomRepository
	user       repositories.UserRepository
}

func (r *testRepository) Quiz() repositories.QuizRepository             { return r.quiz }
func (r *testRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *testRepository) Proctoring() repositories.ProctoringRepository { return r.proctoring }
func (r *testRepository) Classroom() repositories.ClassroomRepository   { return r.classroom }
func (r *testRepository) User() repositories.UserRepository             { return r.user }

// ===== FIXTURES =====

const (
	fixtureTeacherID = uint(10)
	fixtureStudentID = uint(20)
)

func fixtureTeacher() *models.User {
	return &models.User{ID: fixtureTeacherID, FullName: "Priya Nair", Role: models.RoleTeacher}
}

func fixtureStudent() *models.User {
	return &models.User{ID: fixtureStudentID, FullName: "Tom Okafor", Role: models.RoleStudent}
}

// fixtureQuiz returns a two-question quiz whose window is active around now.
func fixtureQuiz() *models.Quiz {
	now := time.Now()
	return &models.Quiz{
		ID:          1,
		Title:       "Fractions check-in",
		ClassroomID: 5,
		TeacherID:   fixtureTeacherID,
		StartTime:   now.Add(-10 * time.Minute),
		EndTime:     now.Add(10 * time.Minute),
		Duration:    20,
		Questions: []models.Question{
			{
				ID:            101,
				QuizID:        1,
				Text:          "1/2 + 1/4 = ?",
				Options:       datatypes.JSONSlice[string]{"1/6", "3/4", "2/6", "1"},
				CorrectOption: 1,
				Type:          models.QuestionMCQ,
				Topic:         "fractions",
				Position:      0,
			},
			{
				ID:            102,
				QuizID:        1,
				Text:          "1/3 is larger than 1/2.",
				Options:       datatypes.JSONSlice[string]{"false", "true"},
				CorrectOption: 0,
				Type:          models.QuestionTrueFalse,
				Topic:         "fractions",
				Position:      1,
			},
		},
	}
}
