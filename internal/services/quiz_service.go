package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/classpulse/quiz-service/internal/cache"
	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"github.com/classpulse/quiz-service/internal/validator"
	"gorm.io/datatypes"
)

type quizService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     cache.QuizCache
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, quizCache cache.QuizCache) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     quizCache,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, teacherID uint) (*models.Quiz, error) {
	s.logger.Info("Creating quiz",
		"class_code", req.ClassCode,
		"teacher_id", teacherID,
		"questions_count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	teacher, err := s.getUser(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher.Role != models.RoleTeacher {
		return nil, ErrOnlyTeachers
	}

	classroom, err := s.repo.Classroom().GetByCode(ctx, req.ClassCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom.TeacherID != teacherID {
		return nil, NewPermissionError(teacherID, classroom.ID, "classroom", "create_quiz", "not owned by teacher")
	}

	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidTimeWindow
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for i, qr := range req.Questions {
		if qr.CorrectOption < 0 || qr.CorrectOption >= len(qr.Options) {
			return nil, fmt.Errorf("%w: correct option out of range for question %d", ErrInvalidInput, i+1)
		}
		questions = append(questions, models.Question{
			Text:          qr.Text,
			Options:       datatypes.JSONSlice[string](qr.Options),
			CorrectOption: qr.CorrectOption,
			Type:          qr.Type,
			Topic:         qr.Topic,
			Position:      i,
		})
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		ClassroomID: classroom.ID,
		TeacherID:   teacherID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    int(math.Round(req.EndTime.Sub(req.StartTime).Minutes())),
		Questions:   questions,
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created",
		"quiz_id", quiz.ID,
		"classroom_id", classroom.ID,
		"duration_minutes", quiz.Duration)

	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, quizID uint) (*QuizWindowView, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return s.windowView(quiz), nil
}

func (s *quizService) ListByTeacher(ctx context.Context, teacherID uint) ([]*QuizWindowView, error) {
	teacher, err := s.getUser(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher.Role != models.RoleTeacher {
		return nil, ErrOnlyTeachers
	}

	quizzes, err := s.repo.Quiz().GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return s.windowViews(quizzes), nil
}

func (s *quizService) ListForStudent(ctx context.Context, studentID uint) ([]*QuizWindowView, error) {
	student, err := s.getUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, ErrOnlyStudents
	}

	classroomIDs, err := s.repo.Classroom().GetJoinedClassroomIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve classrooms: %w", err)
	}

	quizzes, err := s.repo.Quiz().GetByClassrooms(ctx, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return s.windowViews(quizzes), nil
}

func (s *quizService) ListByClassCode(ctx context.Context, classCode string) ([]*QuizWindowView, error) {
	classroom, err := s.repo.Classroom().GetByCode(ctx, classCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}

	quizzes, err := s.repo.Quiz().GetByClassrooms(ctx, []uint{classroom.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return s.windowViews(quizzes), nil
}

// getQuiz is a cache-aside read: quiz content is immutable once created, so a
// hit never serves stale data.
func (s *quizService) getQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	if quiz, ok := s.cache.Get(ctx, quizID); ok {
		return quiz, nil
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	s.cache.Set(ctx, quiz)
	return quiz, nil
}

func (s *quizService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *quizService) windowView(quiz *models.Quiz) *QuizWindowView {
	return &QuizWindowView{
		Quiz:   quiz,
		Window: quiz.WindowAt(time.Now()),
	}
}

func (s *quizService) windowViews(quizzes []*models.Quiz) []*QuizWindowView {
	now := time.Now()
	views := make([]*QuizWindowView, len(quizzes))
	for i, quiz := range quizzes {
		views[i] = &QuizWindowView{Quiz: quiz, Window: quiz.WindowAt(now)}
	}
	return views
}
