package aigen

import "github.com/abhisek/investiq/internal/question"

// Validator checks a single generated question.
type Validator interface {
	Validate(q question.Question) error
}

// StructuralValidator applies the rules every question must satisfy.
type StructuralValidator struct{}

func (StructuralValidator) Validate(q question.Question) error {
	return question.Validate(q)
}

// QualityValidator applies the extra gates for generated questions:
// distinct choices and sane lengths.
type QualityValidator struct{}

func (QualityValidator) Validate(q question.Question) error {
	return question.CheckQuality(q)
}
