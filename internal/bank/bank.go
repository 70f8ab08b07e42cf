// Package bank holds the curated question pool and samples quizzes from it.
package bank

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/abhisek/investiq/internal/question"
)

var (
	// ErrInvalidCount is returned when a sample size is not positive.
	ErrInvalidCount = errors.New("question count must be a positive integer")
	// ErrInsufficientPool is returned when fewer questions match than requested.
	ErrInsufficientPool = errors.New("not enough questions match the filters")
)

//go:embed questions.json
var curated []byte

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Bank is an immutable arena of validated questions. Every accessor returns
// fresh copies; the canonical slice never leaves the package.
type Bank struct {
	questions []question.Question
	byID      map[string]int

	mu  sync.Mutex
	rng *rand.Rand
}

// Default returns the bank built from the embedded curated dataset. The
// dataset ships with the binary, so a dataset that fails validation is a
// build defect and panics.
func Default() *Bank {
	defaultOnce.Do(func() {
		qs, err := Decode(curated)
		if err != nil {
			panic(fmt.Sprintf("bank: embedded question set is invalid: %v", err))
		}
		defaultBank = New(qs)
	})
	return defaultBank
}

// Decode parses a JSON array of questions and validates it as a bank.
func Decode(data []byte) ([]question.Question, error) {
	var drafts []question.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := question.ValidateBank(drafts); err != nil {
		return nil, err
	}
	out := make([]question.Question, 0, len(drafts))
	for _, d := range drafts {
		q, err := d.ToQuestion()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// New builds a bank over a copy of qs. Callers are expected to have
// validated qs; later duplicates of an ID are ignored.
func New(qs []question.Question) *Bank {
	b := &Bank{
		questions: make([]question.Question, 0, len(qs)),
		byID:      make(map[string]int, len(qs)),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, q := range qs {
		if _, dup := b.byID[q.ID]; dup {
			continue
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q.Clone())
	}
	return b
}

// WithRand replaces the bank's random source. Intended for tests that need
// a reproducible sample.
func (b *Bank) WithRand(r *rand.Rand) *Bank {
	b.mu.Lock()
	b.rng = r
	b.mu.Unlock()
	return b
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int { return len(b.questions) }

// All returns copies of every question in dataset order.
func (b *Bank) All() []question.Question {
	return question.CloneAll(b.questions)
}

// Get returns a copy of the question with the given ID.
func (b *Bank) Get(id string) (question.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return question.Question{}, false
	}
	return b.questions[i].Clone(), true
}

// ByCategory returns copies of the questions in category c.
func (b *Bank) ByCategory(c string) []question.Question {
	return b.filter(c, "")
}

// ByDifficulty returns copies of the questions at difficulty d.
func (b *Bank) ByDifficulty(d question.Difficulty) []question.Question {
	return b.filter("", d)
}

// filter applies both criteria with AND semantics; empty values match all.
func (b *Bank) filter(category string, d question.Difficulty) []question.Question {
	var out []question.Question
	for _, q := range b.questions {
		if category != "" && q.Category != category {
			continue
		}
		if d != "" && q.Difficulty != d {
			continue
		}
		out = append(out, q.Clone())
	}
	return out
}

// PickOptions narrows a random sample. Empty Category or Difficulty match
// every question.
type PickOptions struct {
	Category   string
	Difficulty question.Difficulty
	Count      int
}

// PickRandom returns Count distinct questions matching opts in random order.
func (b *Bank) PickRandom(opts PickOptions) ([]question.Question, error) {
	if opts.Count <= 0 {
		return nil, ErrInvalidCount
	}
	pool := b.filter(opts.Category, opts.Difficulty)
	if len(pool) < opts.Count {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientPool, opts.Count, len(pool))
	}
	b.mu.Lock()
	Shuffle(b.rng, pool)
	b.mu.Unlock()
	return pool[:opts.Count], nil
}

// Categories returns the distinct categories, sorted alphabetically.
func (b *Bank) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range b.questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Difficulties returns the distinct difficulties in first-seen order.
func (b *Bank) Difficulties() []question.Difficulty {
	seen := make(map[question.Difficulty]bool)
	var out []question.Difficulty
	for _, q := range b.questions {
		if !seen[q.Difficulty] {
			seen[q.Difficulty] = true
			out = append(out, q.Difficulty)
		}
	}
	return out
}

// Shuffle permutes s in place with an unbiased Fisher-Yates pass.
func Shuffle[T any](r *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
