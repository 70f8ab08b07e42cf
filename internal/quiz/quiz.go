// Package quiz builds quizzes from a question source and scores them.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/investiq/internal/bank"
	"github.com/abhisek/investiq/internal/question"
)

// DefaultCount is the quiz length used when Options.Count is zero.
const DefaultCount = 10

// ErrLengthMismatch is returned when answers and questions differ in length.
var ErrLengthMismatch = errors.New("answers and questions must have the same length")

// Source supplies random question samples. *bank.Bank satisfies it.
type Source interface {
	PickRandom(opts bank.PickOptions) ([]question.Question, error)
}

// Options configures Generate.
type Options struct {
	Category   string
	Difficulty question.Difficulty
	Count      int
}

// CategoryScore is the score for one category within a quiz.
type CategoryScore struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Result summarises a scored quiz.
type Result struct {
	TotalQuestions    int                      `json:"totalQuestions"`
	CorrectAnswers    int                      `json:"correctAnswers"`
	Accuracy          float64                  `json:"accuracy"`
	CategoryBreakdown map[string]CategoryScore `json:"categoryBreakdown"`
}

// Engine holds the random source used for review sampling and choice
// shuffling. The zero value is not usable; use NewEngine.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine drawing randomness from r. A nil r gets a
// randomly seeded source.
func NewEngine(r *rand.Rand) *Engine {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rng: r}
}

var defaultEngine = NewEngine(nil)

// Generate draws a quiz from src. A zero Count means DefaultCount.
func Generate(src Source, opts Options) ([]question.Question, error) {
	count := opts.Count
	if count == 0 {
		count = DefaultCount
	}
	qs, err := src.PickRandom(bank.PickOptions{
		Category:   opts.Category,
		Difficulty: opts.Difficulty,
		Count:      count,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	return qs, nil
}

// CheckAnswer reports whether answer selects q's correct choice. A nil
// answer is always wrong.
func CheckAnswer(q question.Question, answer *int) bool {
	return answer != nil && *answer == q.CorrectAnswer
}

// Percent returns correct/total as a percentage, or 0 when total is 0.
func Percent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// CalculateScore scores answers against questions position by position.
func CalculateScore(answers []*int, questions []question.Question) (*Result, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("%w: %d answers for %d questions", ErrLengthMismatch, len(answers), len(questions))
	}
	res := &Result{
		TotalQuestions:    len(questions),
		CategoryBreakdown: make(map[string]CategoryScore),
	}
	for i, q := range questions {
		cs := res.CategoryBreakdown[q.Category]
		cs.Total++
		if CheckAnswer(q, answers[i]) {
			cs.Correct++
			res.CorrectAnswers++
		}
		res.CategoryBreakdown[q.Category] = cs
	}
	for c, cs := range res.CategoryBreakdown {
		cs.Accuracy = Percent(cs.Correct, cs.Total)
		res.CategoryBreakdown[c] = cs
	}
	res.Accuracy = Percent(res.CorrectAnswers, res.TotalQuestions)
	return res, nil
}

// ReviewQuiz picks up to count questions from previously missed ones. When
// everything fits, the input order is kept; otherwise a random subset of
// exactly count questions is returned.
func (e *Engine) ReviewQuiz(wrong []question.Question, count int) []question.Question {
	if len(wrong) == 0 || count <= 0 {
		return []question.Question{}
	}
	out := question.CloneAll(wrong)
	if len(out) <= count {
		return out
	}
	e.mu.Lock()
	bank.Shuffle(e.rng, out)
	e.mu.Unlock()
	return out[:count]
}

// ShuffleChoices returns a copy of q with its choices permuted and the
// correct answer index following the correct text. q is not modified.
func (e *Engine) ShuffleChoices(q question.Question) question.Question {
	out := q.Clone()
	order := []int{0, 1, 2, 3}
	e.mu.Lock()
	bank.Shuffle(e.rng, order)
	e.mu.Unlock()
	for i, src := range order {
		out.Choices[i] = q.Choices[src]
		if src == q.CorrectAnswer {
			out.CorrectAnswer = i
		}
	}
	return out
}

// ReviewQuiz calls ReviewQuiz on a package-level engine.
func ReviewQuiz(wrong []question.Question, count int) []question.Question {
	return defaultEngine.ReviewQuiz(wrong, count)
}

// ShuffleChoices calls ShuffleChoices on a package-level engine.
func ShuffleChoices(q question.Question) question.Question {
	return defaultEngine.ShuffleChoices(q)
}
