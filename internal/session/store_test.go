package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/investiq/internal/bank"
	"github.com/abhisek/investiq/internal/progress"
	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

type fixture struct {
	kv        *store.MemKV
	progress  *store.ProgressRepo
	questions *store.QuestionRepo
	clock     *fakeClock
	store     *Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemKV()
	f := &fixture{
		kv:        kv,
		progress:  store.NewProgressRepo(kv),
		questions: store.NewQuestionRepo(kv),
		clock:     &fakeClock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.Local)},
	}
	f.store = f.open()
	return f
}

func (f *fixture) open() *Store {
	return New(context.Background(), Options{
		Progress:  f.progress,
		Questions: f.questions,
		Bank:      bank.Default(),
		Clock:     f.clock.Now,
	})
}

func twoQuestions(t *testing.T) []question.Question {
	t.Helper()
	qs := bank.Default().ByCategory("stocks")
	require.GreaterOrEqual(t, len(qs), 2)
	return qs[:2]
}

func aiQuestion(id, text string) question.Question {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return question.Question{
		ID:            id,
		Category:      "funds",
		Difficulty:    question.Beginner,
		Text:          text,
		Choices:       [4]string{"Track an index", "Pick winners", "Avoid risk", "Pay coupons"},
		CorrectAnswer: 0,
		Explanation:   "Index funds replicate a benchmark.",
		AIGenerated:   true,
		CreatedAt:     &now,
	}
}

func TestNew_Empty(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, StatusIdle, f.store.Status())
	assert.Nil(t, f.store.Session())
	assert.Nil(t, f.store.LastResult())
	assert.Equal(t, progress.New(), f.store.Progress())
	assert.Len(t, f.store.Questions(), bank.Default().Len())
}

func TestStartQuiz_Empty(t *testing.T) {
	f := newFixture(t)
	qs := twoQuestions(t)

	f.store.StartQuiz(StartOptions{Questions: qs})
	_, err := f.store.FinishQuiz(context.Background())
	require.NoError(t, err)
	require.NotNil(t, f.store.LastResult())

	f.store.StartQuiz(StartOptions{Category: "stocks"})
	assert.Equal(t, StatusIdle, f.store.Status())
	assert.Nil(t, f.store.Session())
	assert.Nil(t, f.store.LastResult())
}

func TestStartQuiz(t *testing.T) {
	f := newFixture(t)
	qs := twoQuestions(t)

	f.store.StartQuiz(StartOptions{Category: "stocks", Difficulty: question.Beginner, Questions: qs})
	assert.Equal(t, StatusInProgress, f.store.Status())

	s := f.store.Session()
	require.NotNil(t, s)
	assert.Len(t, s.ID, 36)
	assert.Equal(t, "stocks", s.Category)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, []*int{nil, nil}, s.Answers)
	assert.Equal(t, f.clock.t, s.StartedAt)
	assert.Nil(t, s.CompletedAt)

	cur, ok := f.store.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, qs[0].ID, cur.ID)

	f.store.StartQuiz(StartOptions{Questions: qs})
	assert.NotEqual(t, s.ID, f.store.Session().ID)
}

func TestAnswerQuestion(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.store.AnswerQuestion(1), "idle store accepts no answers")

	f.store.StartQuiz(StartOptions{Questions: twoQuestions(t)})
	assert.False(t, f.store.AnswerQuestion(-1))
	assert.False(t, f.store.AnswerQuestion(4))
	assert.Nil(t, f.store.Session().Answers[0])

	assert.True(t, f.store.AnswerQuestion(2))
	assert.True(t, f.store.AnswerQuestion(3), "answers can be changed")
	s := f.store.Session()
	require.NotNil(t, s.Answers[0])
	assert.Equal(t, 3, *s.Answers[0])
	assert.Equal(t, 0, s.CurrentIndex, "answering does not advance")
	assert.Equal(t, 1, s.Answered())
}

func TestNextQuestion_Clamped(t *testing.T) {
	f := newFixture(t)
	f.store.NextQuestion()
	assert.Nil(t, f.store.Session())

	f.store.StartQuiz(StartOptions{Questions: twoQuestions(t)})
	f.store.NextQuestion()
	f.store.NextQuestion()
	f.store.NextQuestion()
	assert.Equal(t, 1, f.store.Session().CurrentIndex)
}

func TestFinishQuiz_NoSession(t *testing.T) {
	f := newFixture(t)
	res, err := f.store.FinishQuiz(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, StatusIdle, f.store.Status())
	assert.Equal(t, 0, f.store.Progress().TotalQuizzes)
}

func TestFinishQuiz_TwoQuestions(t *testing.T) {
	f := newFixture(t)
	qs := twoQuestions(t)
	ctx := context.Background()

	f.store.StartQuiz(StartOptions{Category: "stocks", Questions: qs})
	f.store.AnswerQuestion(qs[0].CorrectAnswer)
	f.store.NextQuestion()
	f.store.AnswerQuestion((qs[1].CorrectAnswer + 1) % 4)

	correct, total := f.store.Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)

	res, err := f.store.FinishQuiz(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 1, res.CorrectAnswers)
	assert.Equal(t, 50.0, res.Accuracy)

	assert.Equal(t, StatusCompleted, f.store.Status())
	require.NotNil(t, f.store.Session().CompletedAt)
	assert.Equal(t, res, f.store.LastResult())

	p := f.store.Progress()
	assert.Equal(t, 1, p.TotalQuizzes)
	assert.Equal(t, 1, p.TotalCorrect)
	assert.Equal(t, 2, p.TotalQuestions)
	assert.Equal(t, progress.CategoryStat{Correct: 1, Total: 2}, p.CategoryStats["stocks"])
	assert.Equal(t, []string{qs[1].ID}, p.WrongQuestions)
	assert.Equal(t, 1, p.StudyDays)
	assert.Equal(t, "2026-05-01", p.LastStudyDate)
	assert.Equal(t, 50, f.store.CategoryAccuracy("stocks"))

	saved, ok, err := f.progress.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, saved)

	reopened := f.open()
	assert.Equal(t, p, reopened.Progress())
}

func TestFinishQuiz_UnansweredCountAsWrong(t *testing.T) {
	f := newFixture(t)
	qs := twoQuestions(t)

	f.store.StartQuiz(StartOptions{Questions: qs})
	res, err := f.store.FinishQuiz(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.CorrectAnswers)
	assert.Equal(t, []string{qs[0].ID, qs[1].ID}, f.store.Progress().WrongQuestions)
}

func TestStudyDays_CountedOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	qs := twoQuestions(t)

	for range 3 {
		f.store.StartQuiz(StartOptions{Questions: qs})
		_, err := f.store.FinishQuiz(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.store.Progress().StudyDays)
	assert.Equal(t, 3, f.store.Progress().TotalQuizzes)

	f.clock.t = f.clock.t.Add(24 * time.Hour)
	require.NoError(t, f.store.RecordResult(ctx, 1, 1, "bonds"))
	assert.Equal(t, 2, f.store.Progress().StudyDays)
	assert.Equal(t, "2026-05-02", f.store.Progress().LastStudyDate)
}

func TestFinishQuiz_SecondCallDoesNotFoldAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	qs := twoQuestions(t)

	f.store.StartQuiz(StartOptions{Questions: qs})
	f.store.AnswerQuestion(qs[0].CorrectAnswer)
	first, err := f.store.FinishQuiz(ctx)
	require.NoError(t, err)

	again, err := f.store.FinishQuiz(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	p := f.store.Progress()
	assert.Equal(t, 1, p.TotalQuizzes)
	assert.Equal(t, 2, p.TotalQuestions)
	assert.Equal(t, 1, p.TotalCorrect)
}

func TestRecordResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.RecordResult(ctx, 3, 5, "macro"))
	p := f.store.Progress()
	assert.Equal(t, 1, p.TotalQuizzes)
	assert.Equal(t, 3, p.TotalCorrect)
	assert.Equal(t, 5, p.TotalQuestions)
	assert.Equal(t, 60, f.store.CategoryAccuracy("macro"))
	assert.Equal(t, 0, f.store.CategoryAccuracy("unknown"))
	assert.Equal(t, StatusIdle, f.store.Status())

	assert.ErrorIs(t, f.store.RecordResult(ctx, 6, 5, "macro"), progress.ErrInvalidRecord)
	assert.Equal(t, 1, f.store.Progress().TotalQuizzes)
}

func TestAddWrongQuestion_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddWrongQuestion(ctx, "bonds-001"))
	require.NoError(t, f.store.AddWrongQuestion(ctx, "bonds-001"))
	require.NoError(t, f.store.AddWrongQuestion(ctx, "risk-002"))
	assert.Equal(t, []string{"bonds-001", "risk-002"}, f.store.Progress().WrongQuestions)

	saved, _, err := f.progress.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bonds-001", "risk-002"}, saved.WrongQuestions)
}

func TestWrongQuestions_DropsUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddWrongQuestion(ctx, "risk-002"))
	require.NoError(t, f.store.AddWrongQuestion(ctx, "gone-999"))
	require.NoError(t, f.store.AddWrongQuestion(ctx, "bonds-001"))

	wrong := f.store.WrongQuestions()
	require.Len(t, wrong, 2)
	assert.Equal(t, "risk-002", wrong[0].ID)
	assert.Equal(t, "bonds-001", wrong[1].ID)
}

func TestAddAIGeneratedQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := len(f.store.Questions())

	require.NoError(t, f.store.AddAIGeneratedQuestion(ctx, aiQuestion("ai-funds-beginner-1-0", "What does an index fund do?")))
	require.NoError(t, f.store.AddAIGeneratedQuestion(ctx, aiQuestion("ai-funds-beginner-1-0", "What does an index fund aim for?")))
	require.NoError(t, f.store.AddAIGeneratedQuestion(ctx, aiQuestion("ai-funds-beginner-1-1", "Why buy a broad index fund?")))

	all := f.store.Questions()
	assert.Len(t, all, base+2)
	assert.Equal(t, "What does an index fund aim for?", all[len(all)-1-1].Text)

	cached, err := f.questions.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 2)
	for _, q := range cached {
		assert.True(t, q.IsAIGenerated())
	}
}

func TestLoadQuestions_MergesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.questions.Save(ctx, []question.Question{
		aiQuestion("ai-funds-beginner-2-0", "What does an index fund do?"),
		aiQuestion("ai-funds-beginner-2-1", "Why buy a broad index fund?"),
	}))

	s := f.open()
	base := len(s.Questions())
	require.NoError(t, s.LoadQuestions(ctx))
	assert.Len(t, s.Questions(), base+2)

	require.NoError(t, s.LoadQuestions(ctx))
	assert.Len(t, s.Questions(), base+2, "reloading skips ids already present")
}

func TestPersistenceFailure_KeepsMemoryState(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk full")
	f.kv.SetErr = boom

	f.store.StartQuiz(StartOptions{Questions: twoQuestions(t)})
	res, err := f.store.FinishQuiz(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.Equal(t, StatusCompleted, f.store.Status())
	assert.Equal(t, 1, f.store.Progress().TotalQuizzes)

	assert.ErrorIs(t, f.store.AddWrongQuestion(context.Background(), "x-1"), boom)
	assert.Contains(t, f.store.Progress().WrongQuestions, "x-1")
}

func TestNew_CorruptProgressStartsFresh(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.kv.Set(context.Background(), store.KeyProgress, []byte(`{"totalQuizzes":-1}`)))

	s := f.open()
	assert.Equal(t, progress.New(), s.Progress())
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.store.StartQuiz(StartOptions{Questions: twoQuestions(t)})
	_, err := f.store.FinishQuiz(context.Background())
	require.NoError(t, err)

	f.store.Reset()
	assert.Equal(t, StatusIdle, f.store.Status())
	assert.Nil(t, f.store.Session())
	assert.Nil(t, f.store.LastResult())
	assert.Equal(t, 1, f.store.Progress().TotalQuizzes, "progress survives a reset")

	_, ok := f.store.CurrentQuestion()
	assert.False(t, ok)
	c, total := f.store.Score()
	assert.Zero(t, c)
	assert.Zero(t, total)
}

func TestResetProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.RecordResult(ctx, 1, 2, "risk"))
	require.NoError(t, f.store.ResetProgress(ctx))
	assert.Equal(t, progress.New(), f.store.Progress())

	saved, ok, err := f.progress.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, saved.TotalQuizzes)
}

func TestSession_IsCopy(t *testing.T) {
	f := newFixture(t)
	f.store.StartQuiz(StartOptions{Questions: twoQuestions(t)})
	f.store.AnswerQuestion(1)

	s := f.store.Session()
	*s.Answers[0] = 3
	s.Questions[0].Text = "mutated"

	again := f.store.Session()
	assert.Equal(t, 1, *again.Answers[0])
	assert.NotEqual(t, "mutated", again.Questions[0].Text)
}
