// Package stats shows cumulative progress and the AI weakness analysis.
package stats

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/aigen"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/ui/components"
	"github.com/abhisek/investiq/internal/ui/layout"
	"github.com/abhisek/investiq/internal/ui/theme"
)

type analysisDoneMsg struct {
	Analysis *aigen.WeaknessAnalysis
	Err      error
}

// StatsScreen renders progress totals and per-category accuracy.
type StatsScreen struct {
	deps *screens.Deps

	analyzing bool
	analysis  *aigen.WeaknessAnalysis
	err       error
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a StatsScreen.
func New(deps *screens.Deps) *StatsScreen {
	return &StatsScreen{deps: deps}
}

func (s *StatsScreen) Init() tea.Cmd {
	return nil
}

func (s *StatsScreen) Title() string {
	return "Progress"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	if s.canAnalyze() {
		hints = append(hints, layout.KeyHint{Key: "a", Description: "AI analysis"})
	}
	return hints
}

func (s *StatsScreen) canAnalyze() bool {
	return s.deps.AIEnabled() && s.deps.Store.Progress().TotalQuestions > 0
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisDoneMsg:
		s.analyzing = false
		s.analysis = msg.Analysis
		s.err = msg.Err
	case tea.KeyMsg:
		if msg.String() == "a" && s.canAnalyze() && !s.analyzing {
			s.analyzing = true
			s.err = nil
			gen := s.deps.Generator
			p := s.deps.Store.Progress()
			return s, func() tea.Msg {
				ctx, cancel := screens.AIContext()
				defer cancel()
				wa, err := gen.AnalyzeWeakness(ctx, p)
				return analysisDoneMsg{Analysis: wa, Err: err}
			}
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	p := s.deps.Store.Progress()
	inner := min(width-8, 72)
	pad := lipgloss.NewStyle().PaddingLeft(max((width-inner)/2, 0))

	var b strings.Builder
	b.WriteString(theme.Title.Width(inner).Render("Your progress"))
	b.WriteString("\n\n")

	if p.TotalQuestions == 0 {
		b.WriteString(theme.Hint.Render("No quizzes yet. Take one from the home screen to see stats here."))
		return pad.Render(b.String())
	}

	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	value := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	row := func(k, v string) {
		b.WriteString(label.Render(fmt.Sprintf("%-18s", k)) + value.Render(v) + "\n")
	}
	row("Quizzes taken", fmt.Sprintf("%d", p.TotalQuizzes))
	row("Correct answers", fmt.Sprintf("%d/%d", p.TotalCorrect, p.TotalQuestions))
	row("Overall accuracy", fmt.Sprintf("%.0f%%", p.Accuracy()))
	row("Study days", fmt.Sprintf("%d", p.StudyDays))
	row("To review", fmt.Sprintf("%d", len(p.WrongQuestions)))
	b.WriteString("\n")

	b.WriteString(label.Render("By category, weakest first"))
	b.WriteString("\n")
	for _, e := range p.ByAccuracy() {
		bar := components.NewProgressBar(
			fmt.Sprintf("%-8s %3d/%-3d", e.Category, e.Correct, e.Total),
			e.Accuracy()/100, true, inner)
		bar.Color = theme.AccuracyColor(e.Accuracy())
		b.WriteString(bar.View())
		b.WriteString("\n")
	}

	switch {
	case s.analyzing:
		b.WriteString("\n" + theme.Hint.Render("Analyzing your answers..."))
	case s.err != nil:
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("Analysis failed: "+s.err.Error()))
	case s.analysis != nil:
		b.WriteString("\n" + renderAnalysis(s.analysis, inner))
	}

	return pad.Render(b.String())
}

func renderAnalysis(wa *aigen.WeaknessAnalysis, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render("Focus area: " + wa.WeakestCategory))
	b.WriteString("\n")
	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width)
	b.WriteString(body.Render(wa.Analysis))
	b.WriteString("\n\n")
	b.WriteString(body.Render(wa.Advice))
	b.WriteString("\n")
	if len(wa.RecommendedTopics) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Study next:"))
		b.WriteString("\n")
		for _, t := range wa.RecommendedTopics {
			b.WriteString("  • " + t + "\n")
		}
	}
	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}
