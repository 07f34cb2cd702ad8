package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true-false"
)

// QuizWindow is the quiz's temporal status. It is derived from the clock and
// the quiz's start/end instants and is never stored.
type QuizWindow string

const (
	WindowUpcoming  QuizWindow = "upcoming"
	WindowActive    QuizWindow = "active"
	WindowCompleted QuizWindow = "completed"
)

type Quiz struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ClassroomID uint   `json:"classroom_id" gorm:"not null;index"`
	TeacherID   uint   `json:"teacher_id" gorm:"not null;index"`

	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`
	// Duration in minutes, derived from the window at creation time.
	Duration int `json:"duration" gorm:"not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions   []Question   `json:"questions" gorm:"foreignKey:QuizID"`
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:QuizID"`
	Classroom   Classroom    `json:"-" gorm:"foreignKey:ClassroomID"`
	Teacher     User         `json:"-" gorm:"foreignKey:TeacherID"`
}

type Question struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	QuizID uint `json:"quiz_id" gorm:"not null;index"`

	Text          string                     `json:"text" gorm:"not null;type:text" validate:"required"`
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb;not null" validate:"required,min=2,dive,required"`
	CorrectOption int                        `json:"correct_option" gorm:"not null" validate:"min=0"`
	Type          QuestionType               `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Topic         string                     `json:"topic" gorm:"size:100"`
	Position      int                        `json:"position" gorm:"not null;default:0"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Question) TableName() string {
	return "questions"
}

// WindowAt classifies the quiz against now. The three windows partition the
// timeline: both boundary instants count as Active.
func (q *Quiz) WindowAt(now time.Time) QuizWindow {
	switch {
	case now.Before(q.StartTime):
		return WindowUpcoming
	case now.After(q.EndTime):
		return WindowCompleted
	default:
		return WindowActive
	}
}

// QuestionByID looks up a question of this quiz by its identifier.
func (q *Quiz) QuestionByID(id uint) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}
