// Package screens holds what the TUI screens share: their dependencies and
// the quiz-building helpers the home and setup screens both use.
package screens

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/investiq/internal/aigen"
	"github.com/abhisek/investiq/internal/bank"
	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/quiz"
	"github.com/abhisek/investiq/internal/session"
	"github.com/abhisek/investiq/internal/settings"
)

// ErrNoWrongQuestions is returned when a review quiz has nothing to review.
var ErrNoWrongQuestions = errors.New("no missed questions to review")

// GeneratorFactory builds a generator for a Gemini API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (*aigen.Generator, error)

// Deps is shared by every screen. It is passed by pointer so a generator
// built after a key is saved becomes visible everywhere.
type Deps struct {
	Store        *session.Store
	Settings     *settings.Manager
	Generator    *aigen.Generator
	NewGenerator GeneratorFactory
}

// AIEnabled reports whether AI features can be offered.
func (d *Deps) AIEnabled() bool {
	return d.Generator != nil
}

// RefreshGenerator rebuilds the generator from the stored key. A missing
// key disables AI features.
func (d *Deps) RefreshGenerator(ctx context.Context) error {
	if d.NewGenerator == nil {
		return nil
	}
	key, err := d.Settings.LoadAPIKey(ctx)
	if err != nil {
		return err
	}
	g, err := d.NewGenerator(ctx, key)
	if err != nil {
		d.Generator = nil
		return err
	}
	d.Generator = g
	return nil
}

// ShuffleEnabled reports whether choices should be shuffled, either because
// the caller forces it or the user turned it on.
func (d *Deps) ShuffleEnabled(ctx context.Context, force bool) bool {
	if force {
		return true
	}
	s, err := d.Settings.Get(ctx)
	return err == nil && s.ShuffleChoices
}

// BuildQuiz samples a quiz from every known question, curated and saved AI
// ones alike, and starts it on the store.
func (d *Deps) BuildQuiz(ctx context.Context, opts quiz.Options, shuffle bool) error {
	qs, err := quiz.Generate(bank.New(d.Store.Questions()), opts)
	if err != nil {
		return err
	}
	d.start(ctx, opts.Category, opts.Difficulty, qs, shuffle)
	return nil
}

// BuildReview starts a quiz over previously missed questions.
func (d *Deps) BuildReview(ctx context.Context, count int, shuffle bool) error {
	if count <= 0 {
		count = quiz.DefaultCount
	}
	qs := quiz.ReviewQuiz(d.Store.WrongQuestions(), count)
	if len(qs) == 0 {
		return ErrNoWrongQuestions
	}
	d.start(ctx, "", "", qs, shuffle)
	return nil
}

// StartGenerated starts a quiz over freshly generated questions.
func (d *Deps) StartGenerated(ctx context.Context, req aigen.Request, qs []question.Question, shuffle bool) {
	d.start(ctx, req.Category, req.Difficulty, qs, shuffle)
}

func (d *Deps) start(ctx context.Context, category string, diff question.Difficulty, qs []question.Question, shuffle bool) {
	if d.ShuffleEnabled(ctx, shuffle) {
		for i := range qs {
			qs[i] = quiz.ShuffleChoices(qs[i])
		}
	}
	d.Store.StartQuiz(session.StartOptions{
		Category:   category,
		Difficulty: diff,
		Questions:  qs,
	})
}

// AITimeout bounds one generative call made from the TUI, retries included.
const AITimeout = 2 * time.Minute

// AIContext returns a context for a background generative call.
func AIContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), AITimeout)
}
