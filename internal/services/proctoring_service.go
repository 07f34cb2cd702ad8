package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classpulse/quiz-service/internal/events"
	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"github.com/classpulse/quiz-service/internal/validator"
)

type proctoringService struct {
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	publisher   events.EventPublisher
	submissions SubmissionService
}

func NewProctoringService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, submissions SubmissionService) ProctoringService {
	return &proctoringService{
		repo:        repo,
		logger:      logger,
		validator:   validator,
		publisher:   publisher,
		submissions: submissions,
	}
}

// RecordEvent registers one tab-switch for the (quiz, student) pair and, at
// the threshold, forces an auto-submission with the client's buffered
// answers. The count is persisted before the forced submission is attempted:
// the warning itself survives any submission failure.
func (s *proctoringService) RecordEvent(ctx context.Context, req *ProctoringEventRequest, studentID uint) (*ProctoringEventResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, ErrOnlyStudents
	}

	if _, err := s.repo.Quiz().GetByID(ctx, req.QuizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	state, err := s.repo.Proctoring().IncrementTabSwitch(ctx, req.QuizID, studentID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to record proctoring event: %w", err)
	}

	s.logger.Info("Tab switch recorded",
		"quiz_id", req.QuizID,
		"student_id", studentID,
		"tab_switch_count", state.TabSwitchCount)

	if !state.Exceeded() {
		return &ProctoringEventResponse{State: state}, nil
	}

	if state.TabSwitchCount == models.TabSwitchThreshold {
		event := events.NewProctoringFlaggedEvent(events.ProctoringFlaggedEvent{
			QuizID:         req.QuizID,
			StudentID:      studentID,
			TabSwitchCount: state.TabSwitchCount,
			DetectedAt:     state.LastDetected,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish proctoring event",
				"quiz_id", req.QuizID,
				"student_id", studentID,
				"error", err)
		}
	}

	submission, err := s.submissions.AutoSubmit(ctx, &AutoSubmitQuizRequest{
		QuizID:           req.QuizID,
		Answers:          req.Answers,
		ConfidenceLevels: req.ConfidenceLevels,
		TimeTaken:        req.TimeTaken,
	}, studentID)
	if err != nil {
		// The forced transition is terminal: once a submission exists -
		// whether from a prior forced submit or a racing manual one - later
		// events are no-ops, never a second record.
		if errors.Is(err, ErrDuplicateSubmission) {
			return &ProctoringEventResponse{State: state, AlreadySubmitted: true}, nil
		}
		// The incremented count is already persisted; surface the failure.
		return nil, err
	}

	s.logger.Warn("Forced submission after tab-switch threshold",
		"quiz_id", req.QuizID,
		"student_id", studentID,
		"tab_switch_count", state.TabSwitchCount,
		"score", submission.Score)

	return &ProctoringEventResponse{
		State:      state,
		Forced:     true,
		Submission: submission,
	}, nil
}
