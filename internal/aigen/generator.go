// Package aigen turns model output into quiz content: new questions,
// richer explanations, and a weakness analysis of the learner's progress.
package aigen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/investiq/internal/llm"
	"github.com/abhisek/investiq/internal/progress"
	"github.com/abhisek/investiq/internal/question"
)

// ErrInvalidRequest is returned for a generation request that cannot be
// satisfied.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request describes a batch of questions to generate.
type Request struct {
	Category   string
	Difficulty question.Difficulty
	Count      int
}

// WeaknessAnalysis is the model's reading of the learner's progress.
type WeaknessAnalysis struct {
	WeakestCategory   string   `json:"weakestCategory"`
	Analysis          string   `json:"analysis"`
	Advice            string   `json:"advice"`
	RecommendedTopics []string `json:"recommendedTopics"`
}

// Generator runs the generative tasks against an llm.Provider.
type Generator struct {
	provider llm.Provider
	config   Config
	now      func() time.Time
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg, now: time.Now}
}

// WithClock replaces the generator's time source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) request(prompt string) llm.Request {
	return llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		TopK:        g.config.TopK,
		TopP:        g.config.TopP,
	}
}

// GenerateQuestions asks the model for req.Count questions. The batch is
// all-or-nothing: if any question fails validation, none are returned.
// Accepted questions are marked AI-generated and stamped with the current
// time.
func (g *Generator) GenerateQuestions(ctx context.Context, req Request) ([]question.Question, error) {
	if strings.TrimSpace(req.Category) == "" || !req.Difficulty.Valid() || req.Count <= 0 {
		return nil, fmt.Errorf("%w: category %q, difficulty %q, count %d",
			ErrInvalidRequest, req.Category, req.Difficulty, req.Count)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)
	resp, err := g.provider.Generate(ctx, g.request(buildQuestionsPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	text := ExtractJSONArray(StripCodeFences(resp.Text))
	var drafts []question.Draft
	if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		slog.Debug("unparseable question batch", "head", head(text, 500))
		return nil, &ErrMalformedResponse{Task: "questions", Content: text, Err: err}
	}

	now := g.now()
	stamp := now.UnixMilli()
	created := now.UTC()

	out := make([]question.Question, 0, len(drafts))
	for i, d := range drafts {
		// Ids are always replaced, not just backfilled, so every generated
		// question gets a unique ai- id.
		d.ID = fmt.Sprintf("%s%s-%s-%d-%d", question.AIPrefix, req.Category, req.Difficulty, stamp, i)
		if strings.TrimSpace(d.Category) == "" {
			d.Category = req.Category
		}
		if strings.TrimSpace(d.Difficulty) == "" {
			d.Difficulty = string(req.Difficulty)
		}
		d.AIGenerated = true
		d.CreatedAt = &created

		q, err := d.ToQuestion()
		if err != nil {
			return nil, err
		}
		for _, v := range g.config.Validators {
			if err := v.Validate(q); err != nil {
				return nil, err
			}
		}
		out = append(out, q)
	}
	return out, nil
}

// EnhanceExplanation asks the model for a fuller explanation of q and
// returns the trimmed text.
func (g *Generator) EnhanceExplanation(ctx context.Context, q question.Question) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplain)
	resp, err := g.provider.Generate(ctx, g.request(buildExplainPrompt(q)))
	if err != nil {
		return "", fmt.Errorf("enhance explanation: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

// AnalyzeWeakness asks the model to analyze p. The reply must be a single
// JSON object of the WeaknessSchema shape.
func (g *Generator) AnalyzeWeakness(ctx context.Context, p progress.UserProgress) (*WeaknessAnalysis, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeWeakness)
	resp, err := g.provider.Generate(ctx, g.request(buildWeaknessPrompt(p)))
	if err != nil {
		return nil, fmt.Errorf("analyze weakness: %w", err)
	}

	text := StripCodeFences(resp.Text)
	if err := llm.ValidateJSON(WeaknessSchema, []byte(text)); err != nil {
		slog.Debug("unparseable weakness analysis", "head", head(text, 500))
		return nil, &ErrMalformedResponse{Task: "weakness", Content: text, Err: err}
	}

	var wa WeaknessAnalysis
	if err := json.Unmarshal([]byte(text), &wa); err != nil {
		return nil, &ErrMalformedResponse{Task: "weakness", Content: text, Err: err}
	}
	return &wa, nil
}

// head returns at most n bytes of s, cut back to a rune boundary.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
