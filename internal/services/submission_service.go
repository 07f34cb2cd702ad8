package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/classpulse/quiz-service/internal/events"
	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"github.com/classpulse/quiz-service/internal/scoring"
	"github.com/classpulse/quiz-service/internal/validator"
	"gorm.io/datatypes"
)

// DefaultSubmitGrace is how long past a quiz's end time a manual submission
// is still accepted. Client timers fire at or slightly after the end instant
// and the request takes time to arrive; rejecting at the exact boundary would
// drop legitimate attempts.
const DefaultSubmitGrace = 30 * time.Second

type submissionService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	publisher   events.EventPublisher
	submitGrace time.Duration
}

func NewSubmissionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, submitGrace time.Duration) SubmissionService {
	if submitGrace <= 0 {
		submitGrace = DefaultSubmitGrace
	}
	return &submissionService{
		repo:        repo,
		logger:      logger,
		validator:   validator,
		publisher:   publisher,
		submitGrace: submitGrace,
	}
}

// Submit handles the deliberate, id-keyed submission path.
func (s *submissionService) Submit(ctx context.Context, req *SubmitQuizRequest, studentID uint) (*SubmitQuizResponse, error) {
	s.logger.Info("Submitting quiz",
		"quiz_id", req.QuizID,
		"student_id", studentID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.prepare(ctx, req.QuizID, studentID)
	if err != nil {
		return nil, err
	}

	// Manual submissions are gated on the quiz window; auto-submit paths are
	// not, since their triggers fire client-side at the boundary.
	if err := s.checkWindow(quiz, time.Now()); err != nil {
		return nil, err
	}

	resolved, err := scoring.ResolveByID(quiz, req.Answers)
	if err != nil {
		return nil, err
	}
	result, err := scoring.Score(resolved)
	if err != nil {
		return nil, err
	}

	submission, err := s.commit(ctx, quiz, studentID, result, req.TimeTaken, false)
	if err != nil {
		return nil, err
	}

	return &SubmitQuizResponse{Score: submission.Score}, nil
}

// AutoSubmit handles the positional payload fired by timer expiry or the
// proctoring threshold.
func (s *submissionService) AutoSubmit(ctx context.Context, req *AutoSubmitQuizRequest, studentID uint) (*models.Submission, error) {
	s.logger.Info("Auto-submitting quiz",
		"quiz_id", req.QuizID,
		"student_id", studentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.prepare(ctx, req.QuizID, studentID)
	if err != nil {
		return nil, err
	}

	resolved, err := scoring.ResolvePositional(quiz, req.Answers, req.ConfidenceLevels)
	if err != nil {
		return nil, err
	}
	result, err := scoring.Score(resolved)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, quiz, studentID, result, req.TimeTaken, true)
}

func (s *submissionService) GetByQuiz(ctx context.Context, quizID uint, teacherID uint) ([]*models.Submission, error) {
	teacher, err := s.getUser(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher.Role != models.RoleTeacher {
		return nil, ErrOnlyTeachers
	}

	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.TeacherID != teacherID {
		return nil, NewPermissionError(teacherID, quizID, "quiz", "view_attempts", "not owned by teacher")
	}

	submissions, err := s.repo.Submission().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	return submissions, nil
}

// prepare runs the preconditions shared by both submission paths: the caller
// must be a student and the quiz must exist.
func (s *submissionService) prepare(ctx context.Context, quizID, studentID uint) (*models.Quiz, error) {
	student, err := s.getUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, ErrOnlyStudents
	}
	return s.getQuiz(ctx, quizID)
}

func (s *submissionService) checkWindow(quiz *models.Quiz, now time.Time) error {
	switch quiz.WindowAt(now) {
	case models.WindowUpcoming:
		return ErrQuizNotStarted
	case models.WindowCompleted:
		if now.After(quiz.EndTime.Add(s.submitGrace)) {
			return ErrQuizClosed
		}
	}
	return nil
}

// commit writes the submission through the ledger's conditional insert. A
// lost race surfaces as ErrDuplicateSubmission; it never leaves a second row.
func (s *submissionService) commit(ctx context.Context, quiz *models.Quiz, studentID uint, result *scoring.Result, timeTaken int, autoSubmitted bool) (*models.Submission, error) {
	submission := &models.Submission{
		QuizID:        quiz.ID,
		StudentID:     studentID,
		Answers:       datatypes.JSONSlice[models.Answer](result.Answers()),
		Score:         result.TotalScore,
		TimeTaken:     timeTaken,
		AutoSubmitted: autoSubmitted,
		SubmittedAt:   time.Now(),
	}

	inserted, err := s.repo.Submission().Insert(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	if !inserted {
		s.logger.Info("Duplicate submission rejected",
			"quiz_id", quiz.ID,
			"student_id", studentID)
		return nil, ErrDuplicateSubmission
	}

	s.logger.Info("Submission recorded",
		"quiz_id", quiz.ID,
		"student_id", studentID,
		"score", submission.Score,
		"auto_submitted", autoSubmitted)

	// Best-effort: the submission is already of record, a publish failure
	// must not fail the request.
	event := events.NewSubmissionRecordedEvent(events.SubmissionRecordedEvent{
		QuizID:        quiz.ID,
		StudentID:     studentID,
		Score:         submission.Score,
		AutoSubmitted: autoSubmitted,
		SubmittedAt:   submission.SubmittedAt,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish submission event",
			"quiz_id", quiz.ID,
			"student_id", studentID,
			"error", err)
	}

	return submission, nil
}

func (s *submissionService) getQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *submissionService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
