package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type EventType string

const (
	EventSubmissionRecorded EventType = "quiz.submission.recorded"
	EventProctoringFlagged  EventType = "quiz.proctoring.flagged"
)

const eventSource = "quiz-service"

// QuizEvent is the envelope published for every domain event.
type QuizEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// SubmissionRecordedEvent is emitted after a submission is committed to the
// ledger. Consumers drive notifications and reporting from it; publishing is
// best-effort and never affects the committed submission.
type SubmissionRecordedEvent struct {
	QuizID        uint      `json:"quiz_id"`
	StudentID     uint      `json:"student_id"`
	Score         int       `json:"score"`
	AutoSubmitted bool      `json:"auto_submitted"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ProctoringFlaggedEvent is emitted when a student's tab-switch count reaches
// the forced-submission threshold.
type ProctoringFlaggedEvent struct {
	QuizID         uint      `json:"quiz_id"`
	StudentID      uint      `json:"student_id"`
	TabSwitchCount int       `json:"tab_switch_count"`
	DetectedAt     time.Time `json:"detected_at"`
}

func NewSubmissionRecordedEvent(data SubmissionRecordedEvent) *QuizEvent {
	return newEvent(EventSubmissionRecorded, data)
}

func NewProctoringFlaggedEvent(data ProctoringFlaggedEvent) *QuizEvent {
	return newEvent(EventProctoringFlagged, data)
}

func newEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    eventSource,
		Version:   "1.0",
		Timestamp: time.Now(),
		Data:      data,
	}
}
