package aigen

import "github.com/abhisek/investiq/internal/llm"

// Config controls the behavior of the Generator.
type Config struct {
	// Validators is the ordered list of checks every generated question
	// must pass. The first failure rejects the whole batch.
	Validators []Validator

	// Sampling parameters sent with every request.
	MaxTokens   int
	Temperature float64
	TopK        float64
	TopP        float64
}

// DefaultConfig returns a Config with the structural and quality
// validators and the standard sampling parameters.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			StructuralValidator{},
			QualityValidator{},
		},
		MaxTokens:   llm.DefaultMaxTokens,
		Temperature: llm.DefaultTemperature,
		TopK:        llm.DefaultTopK,
		TopP:        llm.DefaultTopP,
	}
}
