package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/classpulse/quiz-service/internal/models"
	"github.com/classpulse/quiz-service/internal/repositories"
)

type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
	}
}

// QuizSummary reduces a quiz's submissions into per-bucket counts and the
// average score. Everything is recomputed from the immutable submissions and
// quiz content, so the summary can never diverge from the records themselves.
func (s *analyticsService) QuizSummary(ctx context.Context, quizID uint, teacherID uint) (*models.ConfidenceSummary, error) {
	quiz, err := s.getOwnedQuiz(ctx, quizID, teacherID, "view_analysis")
	if err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	summary := &models.ConfidenceSummary{
		QuizID:          quizID,
		SubmissionCount: len(submissions),
		Buckets: map[models.ConfidenceBucket]int{
			models.BucketHighCorrect:   0,
			models.BucketHighIncorrect: 0,
			models.BucketLowCorrect:    0,
			models.BucketLowIncorrect:  0,
		},
		GeneratedAt: time.Now(),
	}

	totalScore := 0
	for _, submission := range submissions {
		totalScore += submission.Score
		for _, record := range DeriveAnalysis(quiz, submission) {
			summary.Buckets[record.Bucket]++
		}
	}
	if len(submissions) > 0 {
		summary.AverageScore = float64(totalScore) / float64(len(submissions))
	}

	return summary, nil
}

// StudentAnalysis derives one student's confidence-vs-correctness records for
// a quiz, on demand.
func (s *analyticsService) StudentAnalysis(ctx context.Context, quizID, studentID uint, requesterID uint) (*StudentAnalysisResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, quizID, requesterID, "view_student_analysis")
	if err != nil {
		return nil, err
	}

	submission, err := s.repo.Submission().GetByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &StudentAnalysisResponse{
		QuizID:    quizID,
		StudentID: studentID,
		Score:     submission.Score,
		Records:   DeriveAnalysis(quiz, submission),
	}, nil
}

// DeriveAnalysis recomputes the confidence analysis records for one
// submission from the quiz definition. Answers whose question no longer
// resolves are skipped; quiz content is immutable so this only guards against
// corrupt data.
func DeriveAnalysis(quiz *models.Quiz, submission *models.Submission) []models.ConfidenceAnalysisRecord {
	records := make([]models.ConfidenceAnalysisRecord, 0, len(submission.Answers))
	for _, answer := range submission.Answers {
		question := quiz.QuestionByID(answer.QuestionID)
		if question == nil {
			continue
		}
		correct := answer.SelectedOption == question.CorrectOption
		records = append(records, models.ConfidenceAnalysisRecord{
			QuestionID:      question.ID,
			StudentAttempt:  answer.SelectedOption,
			CorrectAnswer:   question.CorrectOption,
			ConfidenceLevel: answer.ConfidenceLevel,
			Correctness:     correct,
			Topic:           question.Topic,
			Bucket:          models.ClassifyConfidence(correct, answer.ConfidenceLevel),
		})
	}
	return records
}

func (s *analyticsService) getOwnedQuiz(ctx context.Context, quizID, teacherID uint, action string) (*models.Quiz, error) {
	teacher, err := s.repo.User().GetByID(ctx, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if teacher.Role != models.RoleTeacher {
		return nil, ErrOnlyTeachers
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.TeacherID != teacherID {
		return nil, NewPermissionError(teacherID, quizID, "quiz", action, "not owned by teacher")
	}
	return quiz, nil
}
