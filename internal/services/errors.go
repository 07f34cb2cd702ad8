package services

import (
	"errors"
	"fmt"

	"github.com/classpulse/quiz-service/internal/scoring"
	validator "github.com/go-playground/validator/v10"
)

// ===== SERVICE ERRORS =====

var (
	// Role / permission errors
	ErrForbidden    = errors.New("forbidden - insufficient permissions")
	ErrOnlyTeachers = errors.New("only teachers can perform this action")
	ErrOnlyStudents = errors.New("only students can perform this action")

	// Lookup errors
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrClassroomNotFound  = errors.New("classroom not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// Input errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTimeWindow = errors.New("start time must be before end time")

	// Attempt ledger errors
	ErrDuplicateSubmission = errors.New("quiz already submitted")
	ErrQuizNotStarted      = errors.New("quiz has not started yet")
	ErrQuizClosed          = errors.New("quiz submission window has closed")
)

// PermissionError carries the denied action's context for logging.
type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== ERROR CLASSIFICATION =====

// IsNotFound reports a "not found" condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrClassroomNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSubmissionNotFound)
}

// IsForbidden reports a role or ownership violation.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrOnlyTeachers) ||
		errors.Is(err, ErrOnlyStudents)
}

// IsConflict reports a state conflict: a duplicate submission or a closed
// submission window.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission) ||
		errors.Is(err, ErrQuizNotStarted) ||
		errors.Is(err, ErrQuizClosed)
}

// IsInvalidInput reports malformed or rejected request content, including
// scoring rejections.
func IsInvalidInput(err error) bool {
	if errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidTimeWindow) ||
		errors.Is(err, scoring.ErrNoValidAnswers) {
		return true
	}
	var iace *scoring.InvalidAnswerChoiceError
	if errors.As(err, &iace) {
		return true
	}
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}
