package question

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError describes the first rule a question failed.
type ValidationError struct {
	QuestionID string // May be empty when the ID itself is missing
	Field      string // Field that failed, e.g. "id", "choices"
	Message    string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(id, field, msg string) *ValidationError {
	return &ValidationError{QuestionID: id, Field: field, Message: msg}
}

// Validate checks q against the structural rules. See Draft.Validate.
func Validate(q Question) error {
	return q.Draft().Validate()
}

// Validate checks the structural rules in a fixed order and reports the
// first violation as a *ValidationError:
// id, category, question text, choice count, choice content, correct
// answer index, explanation, difficulty.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return invalid(d.ID, "id", "Question ID is required")
	}
	if strings.TrimSpace(d.Category) == "" {
		return invalid(d.ID, "category", "Question category is required")
	}
	if strings.TrimSpace(d.Question) == "" {
		return invalid(d.ID, "question", "Question text is required")
	}
	if len(d.Choices) != 4 {
		return invalid(d.ID, "choices", "Question must have exactly 4 choices")
	}
	for _, c := range d.Choices {
		if strings.TrimSpace(c) == "" {
			return invalid(d.ID, "choices", "All choices must be non-empty")
		}
	}
	if !validAnswerIndex(d.CorrectAnswer) {
		return invalid(d.ID, "correctAnswer", "Correct answer index must be between 0 and 3")
	}
	if strings.TrimSpace(d.Explanation) == "" {
		return invalid(d.ID, "explanation", "Explanation is required")
	}
	if !Difficulty(d.Difficulty).Valid() {
		return invalid(d.ID, "difficulty", "Difficulty must be beginner, intermediate, or advanced")
	}
	return nil
}

func validAnswerIndex(v *float64) bool {
	if v == nil {
		return false
	}
	f := *v
	return f == math.Trunc(f) && f >= 0 && f <= 3
}

// ValidateBank validates every question and then rejects duplicate IDs,
// reporting the first duplicate in iteration order.
func ValidateBank(drafts []Draft) error {
	if len(drafts) == 0 {
		return &ValidationError{Message: "Question bank cannot be empty"}
	}
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		if _, dup := seen[d.ID]; dup {
			return invalid(d.ID, "id", fmt.Sprintf("Duplicate question ID found: %s", d.ID))
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

// ValidateQuestions is ValidateBank for already-typed questions.
func ValidateQuestions(qs []Question) error {
	drafts := make([]Draft, len(qs))
	for i, q := range qs {
		drafts[i] = q.Draft()
	}
	return ValidateBank(drafts)
}
