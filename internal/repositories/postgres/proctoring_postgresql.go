package postgres

import (
	"context"
	"time"

	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ProctoringPostgreSQL struct {
	db *gorm.DB
}

func NewProctoringPostgreSQL(db *gorm.DB) repositories.ProctoringRepository {
	return &ProctoringPostgreSQL{db: db}
}

// IncrementTabSwitch upserts the counter in one statement. Concurrent events
// for the same pair serialize on the row, so no increment is lost and the
// returned count reflects this event.
func (p *ProctoringPostgreSQL) IncrementTabSwitch(ctx context.Context, quizID, studentID uint, at time.Time) (*models.ProctoringState, error) {
	var state models.ProctoringState
	err := p.db.WithContext(ctx).Raw(`
		INSERT INTO proctoring_states (quiz_id, student_id, tab_switch_count, last_detected, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT (quiz_id, student_id)
		DO UPDATE SET tab_switch_count = proctoring_states.tab_switch_count + 1,
		              last_detected = EXCLUDED.last_detected,
		              updated_at = EXCLUDED.updated_at
		RETURNING quiz_id, student_id, tab_switch_count, last_detected, created_at, updated_at`,
		quizID, studentID, at, at, at).
		Scan(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (p *ProctoringPostgreSQL) Get(ctx context.Context, quizID, studentID uint) (*models.ProctoringState, error) {
	var state models.ProctoringState
	if err := p.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}
