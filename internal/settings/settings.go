// Package settings holds user preferences and the Gemini API key.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalid is wrapped when a stored settings record is malformed.
	ErrInvalid = errors.New("invalid settings")
	// ErrEmptyKey is returned when saving a blank API key.
	ErrEmptyKey = errors.New("API key cannot be empty")
)

// AppSettings is the persisted preferences record.
type AppSettings struct {
	GeminiAPIKey               string `json:"geminiApiKey,omitempty"`
	ShowExplanationImmediately bool   `json:"showExplanationImmediately"`
	ShuffleChoices             bool   `json:"shuffleChoices"`
}

// Default returns the settings used before anything is saved.
func Default() AppSettings {
	return AppSettings{ShowExplanationImmediately: true}
}

// HasAPIKey reports whether a non-blank key is stored.
func (s AppSettings) HasAPIKey() bool {
	return strings.TrimSpace(s.GeminiAPIKey) != ""
}

type wire struct {
	GeminiAPIKey               *string `json:"geminiApiKey"`
	ShowExplanationImmediately *bool   `json:"showExplanationImmediately"`
	ShuffleChoices             *bool   `json:"shuffleChoices"`
}

// Decode parses a stored settings record. Both flags must be present
// booleans; the key is optional but must be a string.
func Decode(data []byte) (AppSettings, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return AppSettings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if w.ShowExplanationImmediately == nil || w.ShuffleChoices == nil {
		return AppSettings{}, fmt.Errorf("%w: missing flags", ErrInvalid)
	}
	s := AppSettings{
		ShowExplanationImmediately: *w.ShowExplanationImmediately,
		ShuffleChoices:             *w.ShuffleChoices,
	}
	if w.GeminiAPIKey != nil {
		s.GeminiAPIKey = *w.GeminiAPIKey
	}
	return s, nil
}

// MaskAPIKey hides most of key for display. Keys shorter than eight
// characters show only their last three, or all of a key that is shorter.
func MaskAPIKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) < 8:
		return "***" + key[max(len(key)-3, 0):]
	}
	return key[:4] + "***...***" + key[len(key)-4:]
}

// Repo loads and saves the settings record. A missing or discarded record
// loads as ok == false.
type Repo interface {
	Load(ctx context.Context) (s AppSettings, ok bool, err error)
	Save(ctx context.Context, s AppSettings) error
}

// Manager reads and updates settings through a Repo.
type Manager struct {
	repo Repo
}

// NewManager returns a Manager backed by repo.
func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo}
}

// Get returns the stored settings, or Default when none are stored.
func (m *Manager) Get(ctx context.Context) (AppSettings, error) {
	s, ok, err := m.repo.Load(ctx)
	if err != nil {
		return Default(), err
	}
	if !ok {
		return Default(), nil
	}
	return s, nil
}

// Update applies fn to the current settings and saves the result.
func (m *Manager) Update(ctx context.Context, fn func(*AppSettings)) (AppSettings, error) {
	s, err := m.Get(ctx)
	if err != nil {
		return s, err
	}
	fn(&s)
	if err := m.repo.Save(ctx, s); err != nil {
		return s, fmt.Errorf("save settings: %w", err)
	}
	return s, nil
}

// SaveAPIKey stores key after trimming surrounding whitespace.
func (m *Manager) SaveAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	_, err := m.Update(ctx, func(s *AppSettings) { s.GeminiAPIKey = key })
	return err
}

// LoadAPIKey returns the stored key, or "" when none is stored.
func (m *Manager) LoadAPIKey(ctx context.Context) (string, error) {
	s, err := m.Get(ctx)
	if err != nil || !s.HasAPIKey() {
		return "", err
	}
	return s.GeminiAPIKey, nil
}

// ClearAPIKey removes the stored key and keeps the other preferences.
func (m *Manager) ClearAPIKey(ctx context.Context) error {
	_, err := m.Update(ctx, func(s *AppSettings) { s.GeminiAPIKey = "" })
	return err
}

// HasAPIKey reports whether a key is stored.
func (m *Manager) HasAPIKey(ctx context.Context) bool {
	key, err := m.LoadAPIKey(ctx)
	return err == nil && key != ""
}
