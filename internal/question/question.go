package question

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the level a question is pitched at.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists every valid difficulty, easiest first.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Label returns a human-readable name for the difficulty.
func (d Difficulty) Label() string {
	switch d {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	}
	return string(d)
}

// ParseDifficulty parses a difficulty name. The empty string parses to the
// empty Difficulty, which filters treat as "any".
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == "" || d.Valid() {
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (want beginner, intermediate, or advanced)", s)
}

// AIPrefix marks the IDs of generated questions.
const AIPrefix = "ai-"

// Question is a single four-choice quiz question.
//
// Questions are treated as immutable values. Anything that hands a question
// to a caller hands out a Clone so the canonical copy cannot be mutated.
type Question struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	Text          string     `json:"question"`
	Choices       [4]string  `json:"choices"`
	CorrectAnswer int        `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Tags          []string   `json:"tags,omitempty"`
	AIGenerated   bool       `json:"aiGenerated,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	if q.Tags != nil {
		out.Tags = append([]string(nil), q.Tags...)
	}
	if q.CreatedAt != nil {
		t := *q.CreatedAt
		out.CreatedAt = &t
	}
	return out
}

// CorrectChoice returns the text of the correct choice.
func (q Question) CorrectChoice() string {
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Choices) {
		return ""
	}
	return q.Choices[q.CorrectAnswer]
}

// IsAIGenerated reports whether q came from the generative pipeline, either
// by flag or by its ID prefix.
func (q Question) IsAIGenerated() bool {
	return q.AIGenerated || strings.HasPrefix(q.ID, AIPrefix)
}

// Draft returns q in its loosely-typed form.
func (q Question) Draft() Draft {
	answer := float64(q.CorrectAnswer)
	return Draft{
		ID:            q.ID,
		Category:      q.Category,
		Difficulty:    string(q.Difficulty),
		Question:      q.Text,
		Choices:       append([]string(nil), q.Choices[:]...),
		CorrectAnswer: &answer,
		Explanation:   q.Explanation,
		Tags:          q.Tags,
		AIGenerated:   q.AIGenerated,
		CreatedAt:     q.CreatedAt,
	}
}

// CloneAll deep-copies a slice of questions.
func CloneAll(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// Draft is the untrusted shape a question arrives in, from the embedded
// dataset, the local cache, or model output. Nothing in a Draft is trusted
// until Validate passes; only then is it converted to a Question.
type Draft struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	Difficulty    string     `json:"difficulty"`
	Question      string     `json:"question"`
	Choices       []string   `json:"choices"`
	CorrectAnswer *float64   `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Tags          []string   `json:"tags,omitempty"`
	AIGenerated   bool       `json:"aiGenerated,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// ToQuestion validates d and converts it into a Question.
func (d Draft) ToQuestion() (Question, error) {
	if err := d.Validate(); err != nil {
		return Question{}, err
	}
	q := Question{
		ID:            d.ID,
		Category:      d.Category,
		Difficulty:    Difficulty(d.Difficulty),
		Text:          d.Question,
		CorrectAnswer: int(*d.CorrectAnswer),
		Explanation:   d.Explanation,
		AIGenerated:   d.AIGenerated,
	}
	copy(q.Choices[:], d.Choices)
	if d.Tags != nil {
		q.Tags = append([]string(nil), d.Tags...)
	}
	if d.CreatedAt != nil {
		t := *d.CreatedAt
		q.CreatedAt = &t
	}
	return q, nil
}
