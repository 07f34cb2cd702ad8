package postgres

import (
	"github.com/classpulse/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type postgresRepository struct {
	quiz       repositories.QuizRepository
	submission repositories.SubmissionRepository
	proctoring repositories.ProctoringRepository
	classroom  repositories.ClassroomRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		quiz:       NewQuizPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		proctoring: NewProctoringPostgreSQL(db),
		classroom:  NewClassroomPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *postgresRepository) Quiz() repositories.QuizRepository             { return r.quiz }
func (r *postgresRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *postgresRepository) Proctoring() repositories.ProctoringRepository { return r.proctoring }
func (r *postgresRepository) Classroom() repositories.ClassroomRepository   { return r.classroom }
func (r *postgresRepository) User() repositories.UserRepository             { return r.user }
