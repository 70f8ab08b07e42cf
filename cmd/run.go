package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/investiq/internal/aigen"
	"github.com/abhisek/investiq/internal/app"
	"github.com/abhisek/investiq/internal/llm"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/session"
	"github.com/abhisek/investiq/internal/settings"
	"github.com/abhisek/investiq/internal/store"
	"github.com/spf13/cobra"
)

// appEnv is everything a command needs, built over one open database.
type appEnv struct {
	st       *store.Store
	settings *settings.Manager
	session  *session.Store
	timeout  func(context.Context) (context.Context, context.CancelFunc)
}

// openEnv opens the database and loads progress and saved AI questions.
// Callers must call close.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ss := session.New(ctx, session.Options{
		Progress:  st.ProgressRepo(),
		Questions: st.QuestionRepo(),
	})
	if err := ss.LoadQuestions(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to load saved AI questions:", err)
	}

	timeout := llm.ConfigFromEnv().Timeout
	return &appEnv{
		st:       st,
		settings: settings.NewManager(st.SettingsRepo()),
		session:  ss,
		timeout: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, timeout)
		},
	}, nil
}

func (e *appEnv) close() error {
	return e.st.Close()
}

// generator builds an AI generator for apiKey. An empty apiKey falls back
// to the environment; non-Gemini providers use their own env keys.
func (e *appEnv) generator(ctx context.Context, apiKey string) (*aigen.Generator, error) {
	cfg := llm.ConfigFromEnv()
	if cfg.Provider == "gemini" {
		key, err := llm.ResolveAPIKey(apiKey)
		if err != nil {
			return nil, err
		}
		cfg.Gemini.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, cfg, e.st.EventRepo())
	if err != nil {
		return nil, err
	}
	return aigen.New(provider, aigen.DefaultConfig()), nil
}

// requireGenerator builds a generator from the stored key or the
// environment, with a readable error when neither is set.
func (e *appEnv) requireGenerator(ctx context.Context) (*aigen.Generator, error) {
	key, err := e.settings.LoadAPIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	gen, err := e.generator(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("AI features unavailable: %w (run `investiq settings set-key`)", err)
	}
	return gen, nil
}

// deps builds the TUI dependencies. A missing key leaves AI features off.
func (e *appEnv) deps(ctx context.Context) *screens.Deps {
	d := &screens.Deps{
		Store:        e.session,
		Settings:     e.settings,
		NewGenerator: e.generator,
	}
	if err := d.RefreshGenerator(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "AI provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	}
	return d
}

// runApp opens the store, builds dependencies, and launches the TUI. start,
// when non-nil, prepares the first screen shown over home.
func runApp(cmd *cobra.Command, start func(context.Context, *screens.Deps) (screen.Screen, error)) error {
	ctx := cmd.Context()
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	opts := app.Options{Deps: env.deps(ctx)}
	if start != nil {
		s, err := start(ctx, opts.Deps)
		if err != nil {
			return err
		}
		opts.Start = s
	}
	return app.Run(opts)
}
