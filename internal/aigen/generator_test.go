package aigen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/investiq/internal/llm"
	"github.com/abhisek/investiq/internal/progress"
	"github.com/abhisek/investiq/internal/question"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestGenerator(responses ...llm.MockResponse) (*Generator, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	gen := New(mock, DefaultConfig()).WithClock(func() time.Time { return fixedNow })
	return gen, mock
}

func questionJSON(text string, choices [4]string, answer int) string {
	return fmt.Sprintf(`{"question":%q,"choices":[%q,%q,%q,%q],"correctAnswer":%d,"explanation":"Because diversification lowers unsystematic risk."}`,
		text, choices[0], choices[1], choices[2], choices[3], answer)
}

func twoQuestions() string {
	return "[" +
		questionJSON("What does an index fund try to do?", [4]string{"Track a market index", "Beat every stock", "Avoid all risk", "Pay fixed interest"}, 0) +
		"," +
		questionJSON("What is a common benefit of diversification?", [4]string{"Guaranteed returns", "Lower single-stock risk", "Higher fees", "No taxes"}, 1) +
		"]"
}

func TestGenerateQuestions_HappyPath(t *testing.T) {
	gen, mock := newTestGenerator(llm.MockResponse{Text: "```json\n" + twoQuestions() + "\n```"})

	qs, err := gen.GenerateQuestions(context.Background(), Request{
		Category:   "funds",
		Difficulty: question.Beginner,
		Count:      2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}

	stamp := fixedNow.UnixMilli()
	for i, q := range qs {
		wantID := fmt.Sprintf("ai-funds-beginner-%d-%d", stamp, i)
		if q.ID != wantID {
			t.Errorf("id = %q, want %q", q.ID, wantID)
		}
		if q.Category != "funds" || q.Difficulty != question.Beginner {
			t.Errorf("backfill failed: %+v", q)
		}
		if !q.AIGenerated || q.CreatedAt == nil || !q.CreatedAt.Equal(fixedNow) {
			t.Errorf("expected AI tagging and timestamp, got %+v", q)
		}
	}
	if qs[1].CorrectAnswer != 1 {
		t.Errorf("expected correct answer 1, got %d", qs[1].CorrectAnswer)
	}

	req := mock.LastRequest()
	if req.Temperature != 0.7 || req.TopK != 40 || req.TopP != 0.95 || req.MaxTokens != 8192 {
		t.Errorf("unexpected sampling params %+v", req)
	}
	prompt := req.Messages[0].Content
	for _, want := range []string{"Create 2 investment", "Category: funds", "Difficulty: Beginner", "exactly 4 choices", "not investment advice"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateQuestions_KeepsModelCategory(t *testing.T) {
	body := `[{"category":"bonds","difficulty":"advanced","question":"What happens to bond prices when rates rise?","choices":["They fall","They rise","No change","They double"],"correctAnswer":0,"explanation":"Prices move inversely to yields."}]`
	gen, _ := newTestGenerator(llm.MockResponse{Text: body})

	qs, err := gen.GenerateQuestions(context.Background(), Request{Category: "macro", Difficulty: question.Beginner, Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qs[0].Category != "bonds" || qs[0].Difficulty != question.Advanced {
		t.Errorf("model-supplied category and difficulty should be kept, got %+v", qs[0])
	}
}

func TestGenerateQuestions_SurroundingProse(t *testing.T) {
	gen, _ := newTestGenerator(llm.MockResponse{Text: "Here you go!\n" + twoQuestions() + "\nGood luck."})

	qs, err := gen.GenerateQuestions(context.Background(), Request{Category: "funds", Difficulty: question.Beginner, Count: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
}

func TestGenerateQuestions_Malformed(t *testing.T) {
	gen, _ := newTestGenerator(llm.MockResponse{Text: "[{\"question\": \"unterminated"})

	_, err := gen.GenerateQuestions(context.Background(), Request{Category: "funds", Difficulty: question.Beginner, Count: 1})
	var mErr *ErrMalformedResponse
	if !errors.As(err, &mErr) {
		t.Fatalf("expected ErrMalformedResponse, got %T (%v)", err, err)
	}
	if mErr.Task != "questions" {
		t.Errorf("unexpected task %q", mErr.Task)
	}
}

func TestGenerateQuestions_AllOrNothing(t *testing.T) {
	bad := questionJSON("Which is a stock?", [4]string{"Apple shares", "apple shares", "A bond", "Cash"}, 0)
	body := "[" + questionJSON("What does an index fund try to do?", [4]string{"Track a market index", "Beat every stock", "Avoid all risk", "Pay fixed interest"}, 0) + "," + bad + "]"
	gen, _ := newTestGenerator(llm.MockResponse{Text: body})

	qs, err := gen.GenerateQuestions(context.Background(), Request{Category: "stocks", Difficulty: question.Beginner, Count: 2})
	if qs != nil {
		t.Fatalf("expected no questions, got %d", len(qs))
	}
	if !errors.Is(err, question.ErrDuplicateChoices) {
		t.Fatalf("expected ErrDuplicateChoices, got %v", err)
	}
}

func TestGenerateQuestions_StructuralFailure(t *testing.T) {
	body := `[{"question":"What is a dividend payment?","choices":["A","B","C"],"correctAnswer":0,"explanation":"A share of profits."}]`
	gen, _ := newTestGenerator(llm.MockResponse{Text: body})

	_, err := gen.GenerateQuestions(context.Background(), Request{Category: "stocks", Difficulty: question.Beginner, Count: 1})
	var vErr *question.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if vErr.Message != "Question must have exactly 4 choices" {
		t.Errorf("unexpected message %q", vErr.Message)
	}
}

func TestGenerateQuestions_InvalidRequest(t *testing.T) {
	gen, mock := newTestGenerator()
	tests := []Request{
		{Category: "", Difficulty: question.Beginner, Count: 1},
		{Category: "funds", Difficulty: "expert", Count: 1},
		{Category: "funds", Difficulty: question.Beginner, Count: 0},
	}
	for _, req := range tests {
		if _, err := gen.GenerateQuestions(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("expected no provider calls, got %d", mock.CallCount())
	}
}

func TestGenerateQuestions_ProviderError(t *testing.T) {
	gen, _ := newTestGenerator(llm.MockResponse{Err: llm.ErrMaxRetriesReached})

	_, err := gen.GenerateQuestions(context.Background(), Request{Category: "funds", Difficulty: question.Beginner, Count: 1})
	if !errors.Is(err, llm.ErrMaxRetriesReached) {
		t.Fatalf("expected ErrMaxRetriesReached, got %v", err)
	}
}

func sampleQuestion() question.Question {
	return question.Question{
		ID:            "bonds-001",
		Category:      "bonds",
		Difficulty:    question.Beginner,
		Text:          "What is a bond coupon?",
		Choices:       [4]string{"A discount code", "The periodic interest payment", "The bond's maturity", "A stock dividend"},
		CorrectAnswer: 1,
		Explanation:   "The coupon is the interest the issuer pays.",
	}
}

func TestEnhanceExplanation(t *testing.T) {
	gen, mock := newTestGenerator(llm.MockResponse{Text: "\n\n## Coupons\nA coupon is interest.  \n"})

	got, err := gen.EnhanceExplanation(context.Background(), sampleQuestion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "## Coupons\nA coupon is interest." {
		t.Errorf("unexpected text %q", got)
	}

	prompt := mock.LastRequest().Messages[0].Content
	for _, want := range []string{"Question: What is a bond coupon?", "Correct answer: The periodic interest payment", "Current explanation: The coupon is the interest the issuer pays."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEnhanceExplanation_Empty(t *testing.T) {
	gen, _ := newTestGenerator(llm.MockResponse{Text: "   \n"})
	if _, err := gen.EnhanceExplanation(context.Background(), sampleQuestion()); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func sampleProgress() progress.UserProgress {
	p := progress.New()
	p.TotalQuizzes = 3
	p.TotalCorrect = 14
	p.TotalQuestions = 20
	p.StudyDays = 2
	p.CategoryStats = map[string]progress.CategoryStat{
		"stocks": {Correct: 9, Total: 10},
		"bonds":  {Correct: 2, Total: 5},
		"funds":  {Correct: 3, Total: 5},
	}
	p.WrongQuestions = []string{"bonds-001", "funds-002"}
	return p
}

func TestAnalyzeWeakness(t *testing.T) {
	body := "```json\n" + `{"weakestCategory":"bonds","analysis":"Bond pricing is shaky.","advice":"Review yields.","recommendedTopics":["yield","duration"]}` + "\n```"
	gen, mock := newTestGenerator(llm.MockResponse{Text: body})

	wa, err := gen.AnalyzeWeakness(context.Background(), sampleProgress())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wa.WeakestCategory != "bonds" || len(wa.RecommendedTopics) != 2 {
		t.Errorf("unexpected analysis %+v", wa)
	}

	prompt := mock.LastRequest().Messages[0].Content
	bonds := strings.Index(prompt, "bonds: 2/5 correct (40%)")
	funds := strings.Index(prompt, "funds: 3/5 correct (60%)")
	stocks := strings.Index(prompt, "stocks: 9/10 correct (90%)")
	if bonds < 0 || funds < 0 || stocks < 0 {
		t.Fatalf("prompt missing category lines:\n%s", prompt)
	}
	if !(bonds < funds && funds < stocks) {
		t.Errorf("categories not sorted weakest first")
	}
	for _, want := range []string{"Quizzes taken: 3", "Correct answers: 14/20", "Overall accuracy: 70%", "Study days: 2", "answered wrong: 2"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAnalyzeWeakness_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "You should study bonds."},
		{"missing field", `{"weakestCategory":"bonds","analysis":"a","advice":"b"}`},
		{"wrong type", `{"weakestCategory":"bonds","analysis":"a","advice":"b","recommendedTopics":"yield"}`},
		{"array", `[{"weakestCategory":"bonds"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, _ := newTestGenerator(llm.MockResponse{Text: tt.text})
			_, err := gen.AnalyzeWeakness(context.Background(), sampleProgress())
			var mErr *ErrMalformedResponse
			if !errors.As(err, &mErr) {
				t.Fatalf("expected ErrMalformedResponse, got %T (%v)", err, err)
			}
		})
	}
}
