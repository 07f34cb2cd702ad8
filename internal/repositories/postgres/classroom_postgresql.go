package postgres

import (
	"context"

	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ClassroomPostgreSQL struct {
	db *gorm.DB
}

func NewClassroomPostgreSQL(db *gorm.DB) repositories.ClassroomRepository {
	return &ClassroomPostgreSQL{db: db}
}

func (c *ClassroomPostgreSQL) GetByCode(ctx context.Context, classCode string) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := c.db.WithContext(ctx).
		Where("class_code = ?", classCode).
		First(&classroom).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}

func (c *ClassroomPostgreSQL) GetJoinedClassroomIDs(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	if err := c.db.WithContext(ctx).
		Table("classroom_students").
		Where("user_id = ?", studentID).
		Pluck("classroom_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *ClassroomPostgreSQL) IsMember(ctx context.Context, classroomID, studentID uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Table("classroom_students").
		Where("classroom_id = ? AND user_id = ?", classroomID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
