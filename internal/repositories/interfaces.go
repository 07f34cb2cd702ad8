package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/classpulse/quiz-service/internal/models"
	"gorm.io/gorm"
)

// QuizRepository reads and writes quiz definitions. Quiz content is immutable
// after creation, so there is no update operation.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error) // questions preloaded in order
	GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Quiz, error)
	GetByClassrooms(ctx context.Context, classroomIDs []uint) ([]*models.Quiz, error)
}

// SubmissionRepository is the attempt ledger's storage contract.
type SubmissionRepository interface {
	// Insert commits the submission if and only if no row exists for its
	// (quiz, student) pair. The check and the write are one atomic statement
	// against the store; inserted reports whether this call won.
	Insert(ctx context.Context, submission *models.Submission) (inserted bool, err error)

	GetByQuizAndStudent(ctx context.Context, quizID, studentID uint) (*models.Submission, error)
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.Submission, error) // student preloaded
	Exists(ctx context.Context, quizID, studentID uint) (bool, error)
}

// ProctoringRepository persists per-(quiz, student) tab-switch counters.
type ProctoringRepository interface {
	// IncrementTabSwitch upserts the counter in one atomic statement: the row
	// is created with count 1 when absent, incremented otherwise. The state
	// after the increment is returned.
	IncrementTabSwitch(ctx context.Context, quizID, studentID uint, at time.Time) (*models.ProctoringState, error)

	Get(ctx context.Context, quizID, studentID uint) (*models.ProctoringState, error)
}

// ClassroomRepository exposes the lookups the quiz core needs from the
// external classroom subsystem.
type ClassroomRepository interface {
	GetByCode(ctx context.Context, classCode string) (*models.Classroom, error)
	GetJoinedClassroomIDs(ctx context.Context, studentID uint) ([]uint, error)
	IsMember(ctx context.Context, classroomID, studentID uint) (bool, error)
}

// UserRepository exposes the identity lookups the quiz core needs from the
// external user subsystem.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Repository aggregates the per-aggregate repositories.
type Repository interface {
	Quiz() QuizRepository
	Submission() SubmissionRepository
	Proctoring() ProctoringRepository
	Classroom() ClassroomRepository
	User() UserRepository
}

// IsNotFoundError reports whether err is the backing store's missing-record
// error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
