package session

import (
	"time"

	"github.com/abhisek/investiq/internal/question"
)

// Status is the store's position in the quiz lifecycle.
type Status int

const (
	StatusIdle       Status = iota // No quiz running
	StatusInProgress               // Accepting answers
	StatusCompleted                // Finished and scored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInProgress:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Session is one run through a fixed list of questions.
type Session struct {
	// ID is a UUID assigned at start.
	ID string

	// Category and Difficulty describe how the questions were chosen.
	// Either may be empty for a mixed quiz.
	Category   string
	Difficulty question.Difficulty

	Questions []question.Question

	// CurrentIndex is the question on screen.
	CurrentIndex int

	// Answers holds the chosen index per question; nil means unanswered.
	// Always the same length as Questions.
	Answers []*int

	StartedAt   time.Time
	CompletedAt *time.Time
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Questions = question.CloneAll(s.Questions)
	out.Answers = make([]*int, len(s.Answers))
	for i, a := range s.Answers {
		if a != nil {
			v := *a
			out.Answers[i] = &v
		}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// Answered returns the number of questions with an answer.
func (s *Session) Answered() int {
	n := 0
	for _, a := range s.Answers {
		if a != nil {
			n++
		}
	}
	return n
}

// StartOptions describes a quiz to start.
type StartOptions struct {
	Category   string
	Difficulty question.Difficulty
	Questions  []question.Question
}
