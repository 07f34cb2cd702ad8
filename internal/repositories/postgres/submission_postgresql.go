package postgres

import (
	"context"

	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

// Insert is a conditional insert keyed by (quiz_id, student_id). The unique
// index plus ON CONFLICT DO NOTHING makes the duplicate check and the write a
// single atomic statement, so two racing submits resolve to exactly one row.
func (s *SubmissionPostgreSQL) Insert(ctx context.Context, submission *models.Submission) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quiz_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *SubmissionPostgreSQL) GetByQuizAndStudent(ctx context.Context, quizID, studentID uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	if err := s.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Preload("Student").
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) Exists(ctx context.Context, quizID, studentID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
