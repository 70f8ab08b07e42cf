// Package session owns the running quiz, its result, and the learner's
// cumulative progress, and mirrors every progress change to storage.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/investiq/internal/bank"
	"github.com/abhisek/investiq/internal/progress"
	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/quiz"
	"github.com/google/uuid"
)

// ProgressRepo persists the progress aggregate.
type ProgressRepo interface {
	Load(ctx context.Context) (progress.UserProgress, bool, error)
	Save(ctx context.Context, p progress.UserProgress) error
}

// QuestionRepo persists generated questions.
type QuestionRepo interface {
	Load(ctx context.Context) ([]question.Question, error)
	Save(ctx context.Context, qs []question.Question) error
}

// Options configures a Store. Bank defaults to bank.Default and Clock to
// time.Now.
type Options struct {
	Progress  ProgressRepo
	Questions QuestionRepo
	Bank      *bank.Bank
	Clock     func() time.Time
}

// Store is the quiz state machine: Idle → InProgress → Completed, and back
// to Idle on Reset. It is safe for concurrent use.
//
// Mutations update memory first and then persist. A persistence failure is
// returned to the caller but the in-memory state is kept.
type Store struct {
	mu sync.Mutex

	progressRepo ProgressRepo
	questionRepo QuestionRepo
	now          func() time.Time

	status     Status
	session    *Session
	lastResult *quiz.Result
	progress   progress.UserProgress
	questions  []question.Question
}

// New creates a Store seeded with the bank's questions and the persisted
// progress. Unreadable progress is treated as absent.
func New(ctx context.Context, opts Options) *Store {
	if opts.Bank == nil {
		opts.Bank = bank.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		progressRepo: opts.Progress,
		questionRepo: opts.Questions,
		now:          opts.Clock,
		progress:     progress.New(),
		questions:    opts.Bank.All(),
	}

	if s.progressRepo != nil {
		p, ok, err := s.progressRepo.Load(ctx)
		switch {
		case err != nil:
			slog.Warn("load progress failed; starting fresh", "err", err)
		case ok:
			s.progress = p
		}
	}
	return s
}

// StartQuiz begins a session over opts.Questions. An empty list moves the
// store to Idle and clears any session and result.
func (s *Store) StartQuiz(opts StartOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastResult = nil
	if len(opts.Questions) == 0 {
		s.status = StatusIdle
		s.session = nil
		return
	}

	s.session = &Session{
		ID:         uuid.NewString(),
		Category:   opts.Category,
		Difficulty: opts.Difficulty,
		Questions:  question.CloneAll(opts.Questions),
		Answers:    make([]*int, len(opts.Questions)),
		StartedAt:  s.now(),
	}
	s.status = StatusInProgress
}

// AnswerQuestion records choice for the current question. It is ignored
// unless a quiz is in progress and choice is in [0,3]. The current index
// does not move.
func (s *Store) AnswerQuestion(choice int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress || s.session == nil || choice < 0 || choice > 3 {
		return false
	}
	s.session.Answers[s.session.CurrentIndex] = &choice
	return true
}

// NextQuestion advances to the next question, stopping at the last one.
func (s *Store) NextQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	if s.session.CurrentIndex < len(s.session.Questions)-1 {
		s.session.CurrentIndex++
	}
}

// FinishQuiz scores the session, folds the result into progress, persists
// progress, and moves to Completed. Unanswered questions count as wrong
// and are added to the wrong-question set. With no session it does
// nothing and returns nil. A completed session is folded only once; later
// calls return its result unchanged.
func (s *Store) FinishQuiz(ctx context.Context) (*quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	if s.status == StatusCompleted {
		return copyResult(s.lastResult), nil
	}

	now := s.now()
	res, err := quiz.CalculateScore(s.session.Answers, s.session.Questions)
	if err != nil {
		return nil, err
	}

	var wrong []string
	for i, q := range s.session.Questions {
		if !quiz.CheckAnswer(q, s.session.Answers[i]) {
			wrong = append(wrong, q.ID)
		}
	}

	s.session.CompletedAt = &now
	s.progress.ApplyResult(res, wrong, now)
	s.lastResult = res
	s.status = StatusCompleted

	if err := s.saveProgress(ctx); err != nil {
		return copyResult(res), err
	}
	return copyResult(res), nil
}

// RecordResult folds counts for one category straight into progress. It
// counts as a quiz and a study day, independent of any session.
func (s *Store) RecordResult(ctx context.Context, correct, total int, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.progress.Record(correct, total, category, s.now()); err != nil {
		return err
	}
	return s.saveProgress(ctx)
}

// AddWrongQuestion adds id to the wrong-question set. Adding an id that is
// already present changes nothing.
func (s *Store) AddWrongQuestion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.progress.AddWrong(id) {
		return nil
	}
	return s.saveProgress(ctx)
}

// ResetProgress replaces progress with an empty aggregate and persists it.
func (s *Store) ResetProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = progress.New()
	return s.saveProgress(ctx)
}

// LoadQuestions merges the cached generated questions into the working
// set. Questions whose id is already present are skipped.
func (s *Store) LoadQuestions(ctx context.Context) error {
	if s.questionRepo == nil {
		return nil
	}
	cached, err := s.questionRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load generated questions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	have := make(map[string]bool, len(s.questions))
	for _, q := range s.questions {
		have[q.ID] = true
	}
	for _, q := range cached {
		if have[q.ID] {
			continue
		}
		have[q.ID] = true
		s.questions = append(s.questions, q.Clone())
	}
	return nil
}

// AddAIGeneratedQuestion adds q to the working set, replacing any question
// with the same id, and persists the generated subset.
func (s *Store) AddAIGeneratedQuestion(ctx context.Context, q question.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = slices.DeleteFunc(s.questions, func(e question.Question) bool {
		return e.ID == q.ID
	})
	s.questions = append(s.questions, q.Clone())

	if s.questionRepo == nil {
		return nil
	}
	var generated []question.Question
	for _, e := range s.questions {
		if e.IsAIGenerated() {
			generated = append(generated, e)
		}
	}
	if err := s.questionRepo.Save(ctx, generated); err != nil {
		return fmt.Errorf("save generated questions: %w", err)
	}
	return nil
}

// Reset returns to Idle and drops the session and last result. Progress
// and the working question set are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusIdle
	s.session = nil
	s.lastResult = nil
}

// Status returns the lifecycle state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Session returns a copy of the active session, or nil.
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// LastResult returns a copy of the most recent result, or nil.
func (s *Store) LastResult() *quiz.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyResult(s.lastResult)
}

// Progress returns a copy of the cumulative progress.
func (s *Store) Progress() progress.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// Questions returns copies of every question in the working set.
func (s *Store) Questions() []question.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return question.CloneAll(s.questions)
}

// CurrentQuestion returns the question at the session's current index.
func (s *Store) CurrentQuestion() (question.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.CurrentIndex >= len(s.session.Questions) {
		return question.Question{}, false
	}
	return s.session.Questions[s.session.CurrentIndex].Clone(), true
}

// Score returns the number of correct answers so far and the session
// length. Both are 0 without a session.
func (s *Store) Score() (correct, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return 0, 0
	}
	for i, q := range s.session.Questions {
		if quiz.CheckAnswer(q, s.session.Answers[i]) {
			correct++
		}
	}
	return correct, len(s.session.Questions)
}

// CategoryAccuracy returns the rounded accuracy for category, 0 when it
// has no answers.
func (s *Store) CategoryAccuracy(category string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.CategoryAccuracy(category)
}

// WrongQuestions resolves the wrong-question ids against the working set,
// in wrong-set order. Ids with no matching question are dropped.
func (s *Store) WrongQuestions() []question.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]int, len(s.questions))
	for i, q := range s.questions {
		byID[q.ID] = i
	}
	var out []question.Question
	for _, id := range s.progress.WrongQuestions {
		if i, ok := byID[id]; ok {
			out = append(out, s.questions[i].Clone())
		}
	}
	return out
}

func (s *Store) saveProgress(ctx context.Context) error {
	if s.progressRepo == nil {
		return nil
	}
	if err := s.progressRepo.Save(ctx, s.progress); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func copyResult(r *quiz.Result) *quiz.Result {
	if r == nil {
		return nil
	}
	out := *r
	out.CategoryBreakdown = make(map[string]quiz.CategoryScore, len(r.CategoryBreakdown))
	for k, v := range r.CategoryBreakdown {
		out.CategoryBreakdown[k] = v
	}
	return &out
}
