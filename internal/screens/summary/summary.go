package summary

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/quiz"
	"github.com/abhisek/investiq/internal/router"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/ui/components"
	"github.com/abhisek/investiq/internal/ui/layout"
	"github.com/abhisek/investiq/internal/ui/theme"
)

// SummaryScreen displays the result of a finished quiz.
type SummaryScreen struct {
	result  *quiz.Result
	saveErr error
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. saveErr is shown when the result was
// scored but could not be persisted.
func New(result *quiz.Result, saveErr error) *SummaryScreen {
	return &SummaryScreen{result: result, saveErr: saveErr}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// Verdict returns the headline for a quiz accuracy percentage.
func Verdict(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "Outstanding! You really know your markets."
	case accuracy >= 70:
		return "Great work! A solid result."
	case accuracy >= 50:
		return "Not bad. Review the misses to sharpen up."
	}
	return "Keep studying. Every investor starts somewhere."
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	if res == nil {
		return ""
	}

	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder

	b.WriteString(center(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("Quiz complete!")))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().
		Foreground(theme.AccuracyColor(res.Accuracy)).
		Bold(true).
		Render(Verdict(res.Accuracy))))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%",
		res.TotalQuestions, res.CorrectAnswers, res.Accuracy)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Render(statsLine)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("By category")))
	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n\n")

	cats := make([]string, 0, len(res.CategoryBreakdown))
	for c := range res.CategoryBreakdown {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	barWidth := min(width-8, 60)
	for _, c := range cats {
		cs := res.CategoryBreakdown[c]
		bar := components.NewProgressBar(
			fmt.Sprintf("%-8s %2d/%-2d", c, cs.Correct, cs.Total),
			cs.Accuracy/100, true, barWidth)
		bar.Color = theme.AccuracyColor(cs.Accuracy)
		b.WriteString(center(bar.View()))
		b.WriteString("\n")
	}

	if s.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error).Render(
			"Progress could not be saved: " + s.saveErr.Error())))
		b.WriteString("\n")
	}

	return b.String()
}
