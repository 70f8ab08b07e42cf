package question

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Length limits for generated content, in characters.
const (
	MinChoiceLen      = 2
	MaxChoiceLen      = 200
	MinQuestionLen    = 10
	MaxQuestionLen    = 500
	MinExplanationLen = 10
)

var (
	ErrDuplicateChoices    = errors.New("duplicate choices detected")
	ErrChoiceTooShort      = errors.New("choice is too short")
	ErrChoiceTooLong       = errors.New("choice is too long")
	ErrQuestionTooShort    = errors.New("question text is too short")
	ErrQuestionTooLong     = errors.New("question text is too long")
	ErrExplanationTooShort = errors.New("explanation is too short")
)

// QualityError is a quality gate failure for one question.
type QualityError struct {
	QuestionID string
	Choice     int // Index of the offending choice, -1 when not choice-specific
	Err        error
}

func (e *QualityError) Error() string {
	if e.Choice >= 0 {
		return fmt.Sprintf("question ID %s: choice %d: %v", e.QuestionID, e.Choice, e.Err)
	}
	return fmt.Sprintf("question ID %s: %v", e.QuestionID, e.Err)
}

func (e *QualityError) Unwrap() error { return e.Err }

// CheckQuality applies the extra gates generated questions must pass on top
// of Validate. It assumes q is already structurally valid.
func CheckQuality(q Question) error {
	seen := make(map[string]struct{}, len(q.Choices))
	for _, c := range q.Choices {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, dup := seen[key]; dup {
			return &QualityError{QuestionID: q.ID, Choice: -1, Err: ErrDuplicateChoices}
		}
		seen[key] = struct{}{}
	}

	for i, c := range q.Choices {
		n := utf8.RuneCountInString(c)
		if n < MinChoiceLen {
			return &QualityError{QuestionID: q.ID, Choice: i, Err: ErrChoiceTooShort}
		}
		if n > MaxChoiceLen {
			return &QualityError{QuestionID: q.ID, Choice: i, Err: ErrChoiceTooLong}
		}
	}

	switch n := utf8.RuneCountInString(q.Text); {
	case n < MinQuestionLen:
		return &QualityError{QuestionID: q.ID, Choice: -1, Err: ErrQuestionTooShort}
	case n > MaxQuestionLen:
		return &QualityError{QuestionID: q.ID, Choice: -1, Err: ErrQuestionTooLong}
	}

	if utf8.RuneCountInString(q.Explanation) < MinExplanationLen {
		return &QualityError{QuestionID: q.ID, Choice: -1, Err: ErrExplanationTooShort}
	}
	return nil
}
