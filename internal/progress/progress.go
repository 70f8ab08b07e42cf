// Package progress holds the learner's cumulative statistics and the rules
// for folding quiz outcomes into them.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/abhisek/investiq/internal/quiz"
)

// DateLayout is the format of LastStudyDate.
const DateLayout = time.DateOnly

var (
	// ErrInvalid is wrapped by every structural validation failure.
	ErrInvalid = errors.New("invalid progress")
	// ErrInvalidRecord is returned when a direct record has impossible counts.
	ErrInvalidRecord = errors.New("correct and total must be non-negative with correct <= total")
)

// CategoryStat counts answers in one category.
type CategoryStat struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns the percentage of correct answers, 0 when empty.
func (s CategoryStat) Accuracy() float64 {
	return quiz.Percent(s.Correct, s.Total)
}

// UserProgress is the durable cross-session aggregate.
type UserProgress struct {
	TotalQuizzes   int                     `json:"totalQuizzes"`
	TotalCorrect   int                     `json:"totalCorrect"`
	TotalQuestions int                     `json:"totalQuestions"`
	CategoryStats  map[string]CategoryStat `json:"categoryStats"`
	StudyDays      int                     `json:"studyDays"`
	LastStudyDate  string                  `json:"lastStudyDate"`
	WrongQuestions []string                `json:"wrongQuestions"`
}

// New returns empty progress.
func New() UserProgress {
	return UserProgress{
		CategoryStats:  make(map[string]CategoryStat),
		WrongQuestions: []string{},
	}
}

// Clone returns a deep copy of p.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.CategoryStats = make(map[string]CategoryStat, len(p.CategoryStats))
	for k, v := range p.CategoryStats {
		out.CategoryStats[k] = v
	}
	out.WrongQuestions = append([]string{}, p.WrongQuestions...)
	return out
}

// Validate checks the structural invariants of p.
//
// Category sums may exceed the overall totals because direct records and
// finished quizzes both feed the category table; only a shortfall is an
// error.
func (p UserProgress) Validate() error {
	switch {
	case p.TotalQuizzes < 0, p.TotalCorrect < 0, p.TotalQuestions < 0, p.StudyDays < 0:
		return fmt.Errorf("%w: counters must be non-negative", ErrInvalid)
	case p.TotalCorrect > p.TotalQuestions:
		return fmt.Errorf("%w: totalCorrect %d exceeds totalQuestions %d", ErrInvalid, p.TotalCorrect, p.TotalQuestions)
	}
	var sumCorrect, sumTotal int
	for c, s := range p.CategoryStats {
		if s.Correct < 0 || s.Total < 0 || s.Correct > s.Total {
			return fmt.Errorf("%w: category %q has correct %d of %d", ErrInvalid, c, s.Correct, s.Total)
		}
		sumCorrect += s.Correct
		sumTotal += s.Total
	}
	if sumCorrect < p.TotalCorrect || sumTotal < p.TotalQuestions {
		return fmt.Errorf("%w: category sums %d/%d fall short of totals %d/%d",
			ErrInvalid, sumCorrect, sumTotal, p.TotalCorrect, p.TotalQuestions)
	}
	if p.LastStudyDate != "" {
		if _, err := time.Parse(DateLayout, p.LastStudyDate); err != nil {
			return fmt.Errorf("%w: lastStudyDate %q", ErrInvalid, p.LastStudyDate)
		}
	}
	return nil
}

// wire mirrors UserProgress with every field optional so that a payload
// missing a field can be told apart from one holding a zero.
type wire struct {
	TotalQuizzes   *int                    `json:"totalQuizzes"`
	TotalCorrect   *int                    `json:"totalCorrect"`
	TotalQuestions *int                    `json:"totalQuestions"`
	CategoryStats  map[string]CategoryStat `json:"categoryStats"`
	StudyDays      *int                    `json:"studyDays"`
	LastStudyDate  *string                 `json:"lastStudyDate"`
	WrongQuestions []string                `json:"wrongQuestions"`
}

// Decode parses and validates a stored progress record.
func Decode(data []byte) (UserProgress, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return UserProgress{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if w.TotalQuizzes == nil || w.TotalCorrect == nil || w.TotalQuestions == nil ||
		w.StudyDays == nil || w.LastStudyDate == nil || w.WrongQuestions == nil || w.CategoryStats == nil {
		return UserProgress{}, fmt.Errorf("%w: missing fields", ErrInvalid)
	}
	p := UserProgress{
		TotalQuizzes:   *w.TotalQuizzes,
		TotalCorrect:   *w.TotalCorrect,
		TotalQuestions: *w.TotalQuestions,
		CategoryStats:  w.CategoryStats,
		StudyDays:      *w.StudyDays,
		LastStudyDate:  *w.LastStudyDate,
		WrongQuestions: w.WrongQuestions,
	}
	if err := p.Validate(); err != nil {
		return UserProgress{}, err
	}
	return p, nil
}

// ApplyResult folds a finished quiz into p. wrongIDs are merged into the
// wrong-question set in order, skipping ones already present.
func (p *UserProgress) ApplyResult(res *quiz.Result, wrongIDs []string, now time.Time) {
	p.ensure()
	p.TotalQuizzes++
	p.TotalCorrect += res.CorrectAnswers
	p.TotalQuestions += res.TotalQuestions
	for c, cs := range res.CategoryBreakdown {
		s := p.CategoryStats[c]
		s.Correct += cs.Correct
		s.Total += cs.Total
		p.CategoryStats[c] = s
	}
	for _, id := range wrongIDs {
		p.AddWrong(id)
	}
	p.markStudied(now)
}

// Record folds counts for a single category into p without a session.
// It counts as one quiz.
func (p *UserProgress) Record(correct, total int, category string, now time.Time) error {
	if correct < 0 || total < 0 || correct > total {
		return fmt.Errorf("%w: got %d/%d", ErrInvalidRecord, correct, total)
	}
	p.ensure()
	p.TotalQuizzes++
	p.TotalCorrect += correct
	p.TotalQuestions += total
	s := p.CategoryStats[category]
	s.Correct += correct
	s.Total += total
	p.CategoryStats[category] = s
	p.markStudied(now)
	return nil
}

// AddWrong appends id to the wrong-question set and reports whether it was
// new.
func (p *UserProgress) AddWrong(id string) bool {
	if slices.Contains(p.WrongQuestions, id) {
		return false
	}
	p.WrongQuestions = append(p.WrongQuestions, id)
	return true
}

// markStudied counts today as a study day once, however many quizzes are
// finished on it.
func (p *UserProgress) markStudied(now time.Time) {
	today := now.Format(DateLayout)
	if p.LastStudyDate != today {
		p.StudyDays++
		p.LastStudyDate = today
	}
}

func (p *UserProgress) ensure() {
	if p.CategoryStats == nil {
		p.CategoryStats = make(map[string]CategoryStat)
	}
	if p.WrongQuestions == nil {
		p.WrongQuestions = []string{}
	}
}

// Accuracy returns the overall percentage of correct answers.
func (p UserProgress) Accuracy() float64 {
	return quiz.Percent(p.TotalCorrect, p.TotalQuestions)
}

// CategoryAccuracy returns the rounded accuracy for category, or 0 when it
// has no recorded answers.
func (p UserProgress) CategoryAccuracy(category string) int {
	s, ok := p.CategoryStats[category]
	if !ok || s.Total == 0 {
		return 0
	}
	return int(math.Round(s.Accuracy()))
}

// CategoryEntry pairs a category name with its stats.
type CategoryEntry struct {
	Category string
	CategoryStat
}

// ByAccuracy returns the categories ordered from weakest to strongest.
// Ties are broken by name.
func (p UserProgress) ByAccuracy() []CategoryEntry {
	out := make([]CategoryEntry, 0, len(p.CategoryStats))
	for c, s := range p.CategoryStats {
		out = append(out, CategoryEntry{Category: c, CategoryStat: s})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Accuracy(), out[j].Accuracy()
		if ai != aj {
			return ai < aj
		}
		return out[i].Category < out[j].Category
	})
	return out
}
