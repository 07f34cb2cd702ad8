package models

import (
	"time"

	"gorm.io/datatypes"
)

// Answer is one scored selection inside a submission. Both the id-keyed and
// the positional submission paths store answers in this canonical shape.
type Answer struct {
	QuestionID      uint `json:"question_id"`
	SelectedOption  int  `json:"selected_option"`
	ConfidenceLevel int  `json:"confidence_level"`
}

// Submission is a student's final, scored answer set for one quiz. At most
// one row exists per (quiz, student); the pair carries a unique index and
// inserts are conditional, so a losing concurrent submit never lands a
// second row. Submissions are never updated or deleted.
type Submission struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	QuizID    uint `json:"quiz_id" gorm:"not null;uniqueIndex:idx_submissions_quiz_student"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_submissions_quiz_student"`

	Answers datatypes.JSONSlice[Answer] `json:"answers" gorm:"type:jsonb;not null"`

	// Score is a count of correct answers, not a percentage.
	Score         int       `json:"score" gorm:"not null"`
	TimeTaken     int       `json:"time_taken" gorm:"not null"` // seconds
	AutoSubmitted bool      `json:"auto_submitted" gorm:"not null;default:false"`
	SubmittedAt   time.Time `json:"submitted_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Quiz    Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (Submission) TableName() string {
	return "submissions"
}
