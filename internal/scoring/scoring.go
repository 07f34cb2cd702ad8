// Package scoring maps a quiz definition and a set of submitted answers to a
// score. It is pure: identical inputs always produce identical results and
// nothing here touches storage.
//
// Two payload shapes reach the service - id-keyed answers from deliberate
// submission and positional arrays from the timer/proctoring auto-submit
// path. Each shape has an adapter that produces the same canonical resolved
// form, so there is exactly one scoring algorithm.
package scoring

import (
	"errors"
	"fmt"

	"github.com/classpulse/quiz-service/internal/models"
)

// ErrNoValidAnswers is returned when every submitted answer was dropped
// during resolution and nothing is left to score.
var ErrNoValidAnswers = errors.New("no valid answers provided")

// InvalidAnswerChoiceError reports a selected option outside the target
// question's option range. It fails the whole operation.
type InvalidAnswerChoiceError struct {
	QuestionID     uint
	SelectedOption int
	OptionCount    int
}

func (e *InvalidAnswerChoiceError) Error() string {
	return fmt.Sprintf("invalid answer choice for question %d: selected %d of %d options",
		e.QuestionID, e.SelectedOption, e.OptionCount)
}

// AnswerInput is one id-keyed answer as submitted by the client.
type AnswerInput struct {
	QuestionID      uint `json:"question_id" validate:"required"`
	SelectedOption  int  `json:"selected_option" validate:"min=0"`
	ConfidenceLevel int  `json:"confidence_level" validate:"min=1,max=5"`
}

// Resolved is the canonical representation both adapters produce: an answer
// bound to its question, with the selection already range-checked.
type Resolved struct {
	Question        *models.Question
	SelectedOption  int
	ConfidenceLevel int
}

// PerAnswer is the scored detail for one resolved answer.
type PerAnswer struct {
	QuestionID      uint                    `json:"question_id"`
	SelectedOption  int                     `json:"selected_option"`
	CorrectOption   int                     `json:"correct_option"`
	Correct         bool                    `json:"correct"`
	ConfidenceLevel int                     `json:"confidence_level"`
	Topic           string                  `json:"topic"`
	Bucket          models.ConfidenceBucket `json:"bucket"`
}

// Result is the outcome of scoring one attempt.
type Result struct {
	TotalScore int         `json:"total_score"`
	PerAnswer  []PerAnswer `json:"per_answer"`
}

// ResolveByID binds id-keyed answers to the quiz's questions. Answers
// referencing unknown questions are dropped silently; a selection outside the
// question's option range fails the whole resolution.
func ResolveByID(quiz *models.Quiz, answers []AnswerInput) ([]Resolved, error) {
	resolved := make([]Resolved, 0, len(answers))
	for _, in := range answers {
		question := quiz.QuestionByID(in.QuestionID)
		if question == nil {
			continue
		}
		if in.SelectedOption < 0 || in.SelectedOption >= len(question.Options) {
			return nil, &InvalidAnswerChoiceError{
				QuestionID:     question.ID,
				SelectedOption: in.SelectedOption,
				OptionCount:    len(question.Options),
			}
		}
		resolved = append(resolved, Resolved{
			Question:        question,
			SelectedOption:  in.SelectedOption,
			ConfidenceLevel: in.ConfidenceLevel,
		})
	}
	return resolved, nil
}

// ResolvePositional binds a positional answer array (aligned to question
// order) to the quiz's questions. Missing positions and negative selections
// are treated as unanswered and dropped; a selection past the option range
// fails, matching the id-keyed path.
func ResolvePositional(quiz *models.Quiz, selections []int, confidences []int) ([]Resolved, error) {
	resolved := make([]Resolved, 0, len(selections))
	for i := range quiz.Questions {
		if i >= len(selections) {
			break
		}
		question := &quiz.Questions[i]
		selected := selections[i]
		if selected < 0 {
			continue
		}
		if selected >= len(question.Options) {
			return nil, &InvalidAnswerChoiceError{
				QuestionID:     question.ID,
				SelectedOption: selected,
				OptionCount:    len(question.Options),
			}
		}
		confidence := 0
		if i < len(confidences) {
			confidence = confidences[i]
		}
		resolved = append(resolved, Resolved{
			Question:        question,
			SelectedOption:  selected,
			ConfidenceLevel: confidence,
		})
	}
	return resolved, nil
}

// Score computes the total and per-answer detail for a resolved attempt.
// Correctness is strict index equality with no partial credit; the total is a
// count of correct answers among the resolved ones.
func Score(resolved []Resolved) (*Result, error) {
	if len(resolved) == 0 {
		return nil, ErrNoValidAnswers
	}

	result := &Result{PerAnswer: make([]PerAnswer, 0, len(resolved))}
	for _, r := range resolved {
		correct := r.SelectedOption == r.Question.CorrectOption
		if correct {
			result.TotalScore++
		}
		result.PerAnswer = append(result.PerAnswer, PerAnswer{
			QuestionID:      r.Question.ID,
			SelectedOption:  r.SelectedOption,
			CorrectOption:   r.Question.CorrectOption,
			Correct:         correct,
			ConfidenceLevel: r.ConfidenceLevel,
			Topic:           r.Question.Topic,
			Bucket:          models.ClassifyConfidence(correct, r.ConfidenceLevel),
		})
	}
	return result, nil
}

// Answers converts a scored result into the canonical answer records stored
// on the submission.
func (r *Result) Answers() []models.Answer {
	answers := make([]models.Answer, 0, len(r.PerAnswer))
	for _, pa := range r.PerAnswer {
		answers = append(answers, models.Answer{
			QuestionID:      pa.QuestionID,
			SelectedOption:  pa.SelectedOption,
			ConfidenceLevel: pa.ConfidenceLevel,
		})
	}
	return answers
}
