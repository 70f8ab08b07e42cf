package cmd

import (
	"testing"
	"unicode/utf8"

	"github.com/abhisek/investiq/internal/question"
)

func TestTextBar(t *testing.T) {
	tests := []struct {
		pct    float64
		filled int
	}{
		{0, 0}, {50, 5}, {100, 10}, {140, 10}, {-5, 0}, {33.4, 3},
	}
	for _, tt := range tests {
		bar := textBar(tt.pct, 10)
		if n := utf8.RuneCountInString(bar); n != 10 {
			t.Errorf("textBar(%v) width = %d, want 10", tt.pct, n)
		}
		got := 0
		for _, r := range bar {
			if r == '█' {
				got++
			}
		}
		if got != tt.filled {
			t.Errorf("textBar(%v) filled = %d, want %d", tt.pct, got, tt.filled)
		}
	}
}

func TestFindQuestion(t *testing.T) {
	qs := []question.Question{{ID: "bonds-1"}, {ID: "ai-risk-beginner-1-0"}}
	if q, ok := findQuestion(qs, "ai-risk-beginner-1-0"); !ok || q.ID != "ai-risk-beginner-1-0" {
		t.Errorf("findQuestion = %+v, %v", q, ok)
	}
	if _, ok := findQuestion(qs, "missing"); ok {
		t.Error("expected no match")
	}
}
