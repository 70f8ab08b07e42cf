package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/investiq/internal/progress"
	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/settings"
)

// loadRecord reads key and decodes it. A payload that fails to decode is
// deleted and reported as absent.
func loadRecord[T any](ctx context.Context, kv KV, key string, decode func([]byte) (T, error)) (T, bool, error) {
	var zero T
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := decode(raw)
	if err != nil {
		slog.Warn("discarding corrupt record", "key", key, "error", err)
		if delErr := kv.Delete(ctx, key); delErr != nil {
			return zero, false, fmt.Errorf("delete corrupt %s: %w", key, delErr)
		}
		return zero, false, nil
	}
	return v, true, nil
}

func saveRecord(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}

// ProgressRepo persists the learner's progress record.
type ProgressRepo struct {
	kv KV
}

// NewProgressRepo returns a ProgressRepo over kv.
func NewProgressRepo(kv KV) *ProgressRepo {
	return &ProgressRepo{kv: kv}
}

// Load returns the stored progress. Invalid records are removed.
func (r *ProgressRepo) Load(ctx context.Context) (progress.UserProgress, bool, error) {
	return loadRecord(ctx, r.kv, KeyProgress, progress.Decode)
}

// Save stores p. Progress that fails validation is rejected.
func (r *ProgressRepo) Save(ctx context.Context, p progress.UserProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return saveRecord(ctx, r.kv, KeyProgress, p)
}

// Clear removes the stored progress.
func (r *ProgressRepo) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, KeyProgress)
}

// SettingsRepo persists the settings record.
type SettingsRepo struct {
	kv KV
}

// NewSettingsRepo returns a SettingsRepo over kv.
func NewSettingsRepo(kv KV) *SettingsRepo {
	return &SettingsRepo{kv: kv}
}

// Load returns the stored settings. Invalid records are removed.
func (r *SettingsRepo) Load(ctx context.Context) (settings.AppSettings, bool, error) {
	return loadRecord(ctx, r.kv, KeySettings, settings.Decode)
}

// Save stores s.
func (r *SettingsRepo) Save(ctx context.Context, s settings.AppSettings) error {
	return saveRecord(ctx, r.kv, KeySettings, s)
}

// Clear removes the stored settings.
func (r *SettingsRepo) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, KeySettings)
}

// QuestionRepo persists generated questions apart from the curated bank.
type QuestionRepo struct {
	kv KV
}

// NewQuestionRepo returns a QuestionRepo over kv.
func NewQuestionRepo(kv KV) *QuestionRepo {
	return &QuestionRepo{kv: kv}
}

// Load returns the cached generated questions. Entries that fail
// validation or are not AI-tagged are skipped; an unparseable payload is
// removed.
func (r *QuestionRepo) Load(ctx context.Context) ([]question.Question, error) {
	qs, _, err := loadRecord(ctx, r.kv, KeyAIQuestions, decodeAIQuestions)
	return qs, err
}

// Save replaces the cache with the AI-tagged members of qs.
func (r *QuestionRepo) Save(ctx context.Context, qs []question.Question) error {
	ai := make([]question.Question, 0, len(qs))
	for _, q := range qs {
		if q.IsAIGenerated() {
			ai = append(ai, q)
		}
	}
	return saveRecord(ctx, r.kv, KeyAIQuestions, ai)
}

// Clear removes all cached generated questions.
func (r *QuestionRepo) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, KeyAIQuestions)
}

func decodeAIQuestions(data []byte) ([]question.Question, error) {
	var drafts []question.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, err
	}
	out := make([]question.Question, 0, len(drafts))
	for _, d := range drafts {
		q, err := d.ToQuestion()
		if err != nil {
			slog.Warn("skipping invalid cached question", "id", d.ID, "error", err)
			continue
		}
		if !q.IsAIGenerated() {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}
