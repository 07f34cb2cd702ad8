package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/classpulse/quiz-service/internal/cache"
	"github.com/classpulse/quiz-service/internal/events"
	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"github.com/classpulse/quiz-service/internal/scoring"
	"github.com/classpulse/quiz-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuestionRequest struct {
	Text          string              `json:"text" validate:"required"`
	Options       []string            `json:"options" validate:"required,min=2,dive,required"`
	CorrectOption int                 `json:"correct_option" validate:"min=0"`
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Topic         string              `json:"topic" validate:"max=100"`
}

type CreateQuizRequest struct {
	ClassCode string                  `json:"class_code" validate:"required"`
	Title     string                  `json:"title" validate:"required,min=1,max=200"`
	Questions []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
	StartTime time.Time               `json:"start_time" validate:"required"`
	EndTime   time.Time               `json:"end_time" validate:"required"`
}

type SubmitQuizRequest struct {
	QuizID    uint                  `json:"quiz_id" validate:"required"`
	Answers   []scoring.AnswerInput `json:"answers" validate:"required,min=1,dive"`
	TimeTaken int                   `json:"time_taken" validate:"min=0"`
}

// AutoSubmitQuizRequest carries the positional payload the client timer and
// proctoring listeners buffer: answers[i] is the selected option index for
// the quiz's i-th question, -1 when unanswered.
type AutoSubmitQuizRequest struct {
	QuizID           uint  `json:"quiz_id" validate:"required"`
	Answers          []int `json:"answers" validate:"required"`
	ConfidenceLevels []int `json:"confidence_levels" validate:"required"`
	TimeTaken        int   `json:"time_taken" validate:"min=0"`
}

// ProctoringEventRequest reports one tab-switch, together with whatever the
// client has buffered so far in case this event trips the forced submission.
type ProctoringEventRequest struct {
	QuizID           uint  `json:"quiz_id" validate:"required"`
	Answers          []int `json:"answers"`
	ConfidenceLevels []int `json:"confidence_levels"`
	TimeTaken        int   `json:"time_taken" validate:"min=0"`
}

type SubmitQuizResponse struct {
	Score int `json:"score"`
}

type ProctoringEventResponse struct {
	State *models.ProctoringState `json:"proctoring,omitempty"`
	// Forced is set when this event tripped the threshold and a submission
	// was committed by it.
	Forced     bool               `json:"forced"`
	Submission *models.Submission `json:"submission,omitempty"`
	// AlreadySubmitted is set when the threshold is exceeded but a
	// submission for the pair already exists; the event is then a no-op.
	AlreadySubmitted bool `json:"already_submitted"`
}

type QuizWindowView struct {
	Quiz   *models.Quiz      `json:"quiz"`
	Window models.QuizWindow `json:"window"`
}

type StudentAnalysisResponse struct {
	QuizID    uint                              `json:"quiz_id"`
	StudentID uint                              `json:"student_id"`
	Score     int                               `json:"score"`
	Records   []models.ConfidenceAnalysisRecord `json:"confidence_analysis"`
}

// ===== SERVICE INTERFACES =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, teacherID uint) (*models.Quiz, error)
	GetByID(ctx context.Context, quizID uint) (*QuizWindowView, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]*QuizWindowView, error)
	ListForStudent(ctx context.Context, studentID uint) ([]*QuizWindowView, error)
	ListByClassCode(ctx context.Context, classCode string) ([]*QuizWindowView, error)
}

// SubmissionService is the attempt ledger: it validates, scores and commits
// at most one submission per (quiz, student).
type SubmissionService interface {
	Submit(ctx context.Context, req *SubmitQuizRequest, studentID uint) (*SubmitQuizResponse, error)
	AutoSubmit(ctx context.Context, req *AutoSubmitQuizRequest, studentID uint) (*models.Submission, error)
	GetByQuiz(ctx context.Context, quizID uint, teacherID uint) ([]*models.Submission, error)
}

// ProctoringService escalates tab-switch events into a forced submission at
// the threshold.
type ProctoringService interface {
	RecordEvent(ctx context.Context, req *ProctoringEventRequest, studentID uint) (*ProctoringEventResponse, error)
}

// AnalyticsService derives confidence-vs-correctness views from committed
// submissions. It is a stateless reducer with no write side effects.
type AnalyticsService interface {
	QuizSummary(ctx context.Context, quizID uint, teacherID uint) (*models.ConfidenceSummary, error)
	StudentAnalysis(ctx context.Context, quizID, studentID uint, requesterID uint) (*StudentAnalysisResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Quiz() QuizService
	Submission() SubmissionService
	Proctoring() ProctoringService
	Analytics() AnalyticsService
}

type serviceManager struct {
	quiz       QuizService
	submission SubmissionService
	proctoring ProctoringService
	analytics  AnalyticsService
}

type ManagerConfig struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Publisher events.EventPublisher
	QuizCache cache.QuizCache
	// SubmitGrace is how long after a quiz's end time a manual submission is
	// still accepted, absorbing client timer latency.
	SubmitGrace time.Duration
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	submission := NewSubmissionService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.Publisher, cfg.SubmitGrace)
	return &serviceManager{
		quiz:       NewQuizService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.QuizCache),
		submission: submission,
		proctoring: NewProctoringService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.Publisher, submission),
		analytics:  NewAnalyticsService(cfg.Repo, cfg.Logger),
	}
}

func (sm *serviceManager) Quiz() QuizService             { return sm.quiz }
func (sm *serviceManager) Submission() SubmissionService { return sm.submission }
func (sm *serviceManager) Proctoring() ProctoringService { return sm.proctoring }
func (sm *serviceManager) Analytics() AnalyticsService   { return sm.analytics }
