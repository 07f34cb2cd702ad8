package models

import "time"

// TabSwitchThreshold is the number of detected tab switches after which the
// attempt is force-submitted.
const TabSwitchThreshold = 3

// ProctoringState tracks detected tab switches for one (quiz, student) pair.
// It is created lazily on the first event and incremented in place by an
// atomic upsert on every subsequent one.
type ProctoringState struct {
	QuizID    uint `json:"quiz_id" gorm:"primaryKey;autoIncrement:false"`
	StudentID uint `json:"student_id" gorm:"primaryKey;autoIncrement:false"`

	TabSwitchCount int       `json:"tab_switch_count" gorm:"not null;default:0"`
	LastDetected   time.Time `json:"last_detected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProctoringState) TableName() string {
	return "proctoring_states"
}

// Exceeded reports whether the forced-submission threshold has been reached.
func (p *ProctoringState) Exceeded() bool {
	return p.TabSwitchCount >= TabSwitchThreshold
}
