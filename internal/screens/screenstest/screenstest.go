// Package screenstest builds screen dependencies over in-memory storage
// for TUI tests.
package screenstest

import (
	"context"
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/investiq/internal/aigen"
	"github.com/abhisek/investiq/internal/llm"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/session"
	"github.com/abhisek/investiq/internal/settings"
	"github.com/abhisek/investiq/internal/store"
)

// Env is a Deps plus the storage behind it.
type Env struct {
	Deps *screens.Deps
	KV   *store.MemKV
}

// New returns an Env over an empty in-memory store and the curated bank.
// A non-nil provider turns AI features on; the generator factory hands
// out generators over the same provider for any non-empty key.
func New(t testing.TB, provider llm.Provider) *Env {
	t.Helper()
	kv := store.NewMemKV()
	d := &screens.Deps{
		Store: session.New(context.Background(), session.Options{
			Progress:  store.NewProgressRepo(kv),
			Questions: store.NewQuestionRepo(kv),
		}),
		Settings: settings.NewManager(store.NewSettingsRepo(kv)),
	}
	if provider != nil {
		d.Generator = aigen.New(provider, aigen.DefaultConfig())
		d.NewGenerator = func(_ context.Context, key string) (*aigen.Generator, error) {
			if key == "" {
				return nil, llm.ErrMissingAPIKey
			}
			return aigen.New(provider, aigen.DefaultConfig()), nil
		}
	}
	return &Env{Deps: d, KV: kv}
}

// Key builds a key press for a printable key such as "a" or "1".
func Key(s string) tea.KeyPressMsg {
	r := []rune(s)
	return tea.KeyPressMsg{Code: r[0], Text: s}
}

// Enter is an enter key press.
func Enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

// Down is a down-arrow key press.
func Down() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyDown}
}

// Right is a right-arrow key press.
func Right() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyRight}
}

// AnswerKey returns the number key that picks choice index i.
func AnswerKey(i int) tea.KeyPressMsg {
	return Key(fmt.Sprint(i + 1))
}
