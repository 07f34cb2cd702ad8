package models

import (
	"time"

	"gorm.io/gorm"
)

// Classroom membership management (create/join/leave/remove) is owned by the
// classroom subsystem; this service only resolves class codes, ownership and
// membership for quiz operations.
type Classroom struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null;size:200"`
	ClassCode string `json:"class_code" gorm:"uniqueIndex;not null;size:20"`
	TeacherID uint   `json:"teacher_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Teacher  User   `json:"teacher" gorm:"foreignKey:TeacherID"`
	Students []User `json:"students" gorm:"many2many:classroom_students"`
	Quizzes  []Quiz `json:"quizzes" gorm:"foreignKey:ClassroomID"`
}

func (Classroom) TableName() string {
	return "classrooms"
}
