package models

import "time"

// HighConfidenceLevel splits self-reported confidence (1-5) into the high and
// low halves used for bucketing.
const HighConfidenceLevel = 4

// ConfidenceBucket combines answer correctness with the student's
// self-reported confidence into one of four cells.
type ConfidenceBucket string

const (
	BucketHighCorrect   ConfidenceBucket = "high-correct"
	BucketHighIncorrect ConfidenceBucket = "high-incorrect"
	BucketLowCorrect    ConfidenceBucket = "low-correct"
	BucketLowIncorrect  ConfidenceBucket = "low-incorrect"
)

// ClassifyConfidence places an answer into its bucket. Every component that
// buckets answers goes through this single definition.
func ClassifyConfidence(correct bool, confidenceLevel int) ConfidenceBucket {
	high := confidenceLevel >= HighConfidenceLevel
	switch {
	case high && correct:
		return BucketHighCorrect
	case high && !correct:
		return BucketHighIncorrect
	case !high && correct:
		return BucketLowCorrect
	default:
		return BucketLowIncorrect
	}
}

// ConfidenceAnalysisRecord is one row of the derived confidence-vs-correctness
// view. It is recomputed on demand from the immutable Submission and Quiz
// rather than persisted, so it can never diverge from the submission of
// record.
type ConfidenceAnalysisRecord struct {
	QuestionID      uint             `json:"question_id"`
	StudentAttempt  int              `json:"student_attempt"`
	CorrectAnswer   int              `json:"correct_answer"`
	ConfidenceLevel int              `json:"confidence_level"`
	Correctness     bool             `json:"correctness"`
	Topic           string           `json:"topic"`
	Bucket          ConfidenceBucket `json:"bucket"`
}

// ConfidenceSummary aggregates one quiz's submissions into per-bucket counts
// and an overall average score.
type ConfidenceSummary struct {
	QuizID          uint                     `json:"quiz_id"`
	SubmissionCount int                      `json:"submission_count"`
	AverageScore    float64                  `json:"average_score"`
	Buckets         map[ConfidenceBucket]int `json:"buckets"`
	GeneratedAt     time.Time                `json:"generated_at"`
}
