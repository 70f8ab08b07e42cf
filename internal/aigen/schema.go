package aigen

import "github.com/abhisek/investiq/internal/llm"

// WeaknessSchema is the loose shape expected from weakness analysis.
// Extra properties are tolerated.
var WeaknessSchema = &llm.Schema{
	Name:        "weakness-analysis",
	Description: "Learner weakness analysis with study advice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"weakestCategory": map[string]any{"type": "string"},
			"analysis":        map[string]any{"type": "string"},
			"advice":          map[string]any{"type": "string"},
			"recommendedTopics": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"weakestCategory", "analysis", "advice", "recommendedTopics"},
	},
}
