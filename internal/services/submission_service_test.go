package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/classpulse/quiz-service/internal/events"
	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/scoring"
	"github.com/classpulse/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type submissionEnv struct {
	service   SubmissionService
	subs      *fakeSubmissionRepo
	publisher *events.MockEventPublisher
	users     *MockUserRepository
	quizzes   *MockQuizRepository
}

func newSubmissionEnv() *submissionEnv {
	users := new(MockUserRepository)
	quizzes := new(MockQuizRepository)
	subs := newFakeSubmissionRepo()
	publisher := events.NewMockEventPublisher(testLogger())

	repo := &testRepository{
		quiz:       quizzes,
		submission: subs,
		proctoring: newFakeProctoringRepo(),
		classroom:  new(MockClassroomRepository),
		user:       users,
	}

	return &submissionEnv{
		service:   NewSubmissionService(repo, testLogger(), validator.New(), publisher, DefaultSubmitGrace),
		subs:      subs,
		publisher: publisher,
		users:     users,
		quizzes:   quizzes,
	}
}

func (e *submissionEnv) withStudentAndQuiz(quiz *models.Quiz) {
	e.users.On("GetByID", mock.Anything, fixtureStudentID).Return(fixtureStudent(), nil)
	e.quizzes.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)
}

func validSubmitRequest() *SubmitQuizRequest {
	return &SubmitQuizRequest{
		QuizID: 1,
		Answers: []scoring.AnswerInput{
			{QuestionID: 101, SelectedOption: 1, ConfidenceLevel: 5},
			{QuestionID: 102, SelectedOption: 1, ConfidenceLevel: 2},
		},
		TimeTaken: 480,
	}
}

func TestSubmitRecordsScoredAttempt(t *testing.T) {
	env := newSubmissionEnv()
	env.withStudentAndQuiz(fixtureQuiz())

	resp, err := env.service.Submit(context.Background(), validSubmitRequest(), fixtureStudentID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)

	stored, err := env.subs.GetByQuizAndStudent(context.Background(), 1, fixtureStudentID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Score)
	assert.False(t, stored.AutoSubmitted)
	assert.Equal(t, 480, stored.TimeTaken)
	require.Len(t, stored.Answers, 2)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSubmissionRecorded, published[0].Type)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	env := newSubmissionEnv()
	env.withStudentAndQuiz(fixtureQuiz())
	ctx := context.Background()

	_, err := env.service.Submit(ctx, validSubmitRequest(), fixtureStudentID)
	require.NoError(t, err)

	_, err = env.service.Submit(ctx, validSubmitRequest(), fixtureStudentID)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	assert.Equal(t, 1, env.subs.count())
	assert.Len(t, env.publisher.GetPublishedEvents(), 1)
}

func TestSubmitConcurrentAttemptsSingleWinner(t *testing.T) {
	env := newSubmissionEnv()
	env.withStudentAndQuiz(fixtureQuiz())

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Submit(context.Background(), validSubmitRequest(), fixtureStudentID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, duplicates := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDuplicateSubmission):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, duplicates)
	assert.Equal(t, 1, env.subs.count())
}

func TestSubmitWindowGate(t *testing.T) {
	t.Run("rejects before the quiz starts", func(t *testing.T) {
		quiz := fixtureQuiz()
		quiz.StartTime = time.Now().Add(time.Hour)
		quiz.EndTime = time.Now().Add(2 * time.Hour)

		env := newSubmissionEnv()
		env.withStudentAndQuiz(quiz)

		_, err := env.service.Submit(context.Background(), validSubmitRequest(), fixtureStudentID)
		assert.ErrorIs(t, err, ErrQuizNotStarted)
		assert.Equal(t, 0, env.subs.count())
	})

	t.Run("rejects well after the quiz ends", func(t *testing.T) {
		quiz := fixtureQuiz()
		quiz.StartTime = time.Now().Add(-2 * time.Hour)
		quiz.EndTime = time.Now().Add(-time.Hour)

		env := newSubmissionEnv()
		env.withStudentAndQuiz(quiz)

		_, err := env.service.Submit(context.Background(), validSubmitRequest(), fixtureStudentID)
		assert.ErrorIs(t, err, ErrQuizClosed)
	})

	t.Run("accepts within the grace period after the end", func(t *testing.T) {
		quiz := fixtureQuiz()
		quiz.StartTime = time.Now().Add(-time.Hour)
		quiz.EndTime = time.Now().Add(-5 * time.Second)

		env := newSubmissionEnv()
		env.withStudentAndQuiz(quiz)

		resp, err := env.service.Submit(context.Background(), validSubmitRequest(), fixtureStudentID)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Score)
	})
}

func TestSubmitRejectsNonStudents(t *testing.T) {
	env := newSubmissionEnv()
	env.users.On("GetByID", mock.Anything, fixtureTeacherID).Return(fixtureTeacher(), nil)

	_, err := env.service.Submit(context.Background(), validSubmitRequest(), fixtureTeacherID)
	assert.ErrorIs(t, err, ErrOnlyStudents)
}

func TestSubmitValidation(t *testing.T) {
	env := newSubmissionEnv()

	t.Run("empty answers", func(t *testing.T) {
		req := &SubmitQuizRequest{QuizID: 1, Answers: nil}
		_, err := env.service.Submit(context.Background(), req, fixtureStudentID)
		require.Error(t, err)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		req := validSubmitRequest()
		req.Answers[0].ConfidenceLevel = 6
		_, err := env.service.Submit(context.Background(), req, fixtureStudentID)
		require.Error(t, err)
		assert.True(t, IsInvalidInput(err))
	})
}

func TestSubmitScoringRejections(t *testing.T) {
	t.Run("selection past the option range", func(t *testing.T) {
		env := newSubmissionEnv()
		env.withStudentAndQuiz(fixtureQuiz())

		req := validSubmitRequest()
		req.Answers[1].SelectedOption = 3

		_, err := env.service.Submit(context.Background(), req, fixtureStudentID)
		var iace *scoring.InvalidAnswerChoiceError
		require.ErrorAs(t, err, &iace)
		assert.Equal(t, 0, env.subs.count())
	})

	t.Run("every answer references an unknown question", func(t *testing.T) {
		env := newSubmissionEnv()
		env.withStudentAndQuiz(fixtureQuiz())

		req := &SubmitQuizRequest{
			QuizID: 1,
			Answers: []scoring.AnswerInput{
				{QuestionID: 998, SelectedOption: 0, ConfidenceLevel: 3},
				{QuestionID: 999, SelectedOption: 1, ConfidenceLevel: 3},
			},
		}

		_, err := env.service.Submit(context.Background(), req, fixtureStudentID)
		assert.ErrorIs(t, err, scoring.ErrNoValidAnswers)
		assert.Equal(t, 0, env.subs.count())
	})
}

func TestAutoSubmit(t *testing.T) {
	t.Run("records a positional attempt", func(t *testing.T) {
		env := newSubmissionEnv()
		env.withStudentAndQuiz(fixtureQuiz())

		submission, err := env.service.AutoSubmit(context.Background(), &AutoSubmitQuizRequest{
			QuizID:           1,
			Answers:          []int{1, 1},
			ConfidenceLevels: []int{5, 2},
			TimeTaken:        600,
		}, fixtureStudentID)
		require.NoError(t, err)

		assert.Equal(t, 1, submission.Score)
		assert.True(t, submission.AutoSubmitted)
	})

	t.Run("skips the window gate", func(t *testing.T) {
		quiz := fixtureQuiz()
		quiz.StartTime = time.Now().Add(-2 * time.Hour)
		quiz.EndTime = time.Now().Add(-time.Hour)

		env := newSubmissionEnv()
		env.withStudentAndQuiz(quiz)

		_, err := env.service.AutoSubmit(context.Background(), &AutoSubmitQuizRequest{
			QuizID:           1,
			Answers:          []int{1, 0},
			ConfidenceLevels: []int{3, 3},
		}, fixtureStudentID)
		assert.NoError(t, err)
	})

	t.Run("still honors the duplicate guard", func(t *testing.T) {
		env := newSubmissionEnv()
		env.withStudentAndQuiz(fixtureQuiz())
		ctx := context.Background()

		_, err := env.service.Submit(ctx, validSubmitRequest(), fixtureStudentID)
		require.NoError(t, err)

		_, err = env.service.AutoSubmit(ctx, &AutoSubmitQuizRequest{
			QuizID:           1,
			Answers:          []int{0, 0},
			ConfidenceLevels: []int{1, 1},
		}, fixtureStudentID)
		assert.ErrorIs(t, err, ErrDuplicateSubmission)
		assert.Equal(t, 1, env.subs.count())
	})
}

func TestGetByQuizOwnership(t *testing.T) {
	env := newSubmissionEnv()
	quiz := fixtureQuiz()
	env.users.On("GetByID", mock.Anything, fixtureTeacherID).Return(fixtureTeacher(), nil)
	env.quizzes.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)

	_, err := env.service.GetByQuiz(context.Background(), quiz.ID, fixtureTeacherID)
	assert.NoError(t, err)

	other := &models.User{ID: 30, Role: models.RoleTeacher}
	env.users.On("GetByID", mock.Anything, uint(30)).Return(other, nil)

	_, err = env.service.GetByQuiz(context.Background(), quiz.ID, 30)
	assert.True(t, IsForbidden(err))
}
