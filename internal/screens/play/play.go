// Package play is the question-by-question quiz screen.
package play

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/router"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/screens/summary"
	"github.com/abhisek/investiq/internal/ui/components"
	"github.com/abhisek/investiq/internal/ui/layout"
	"github.com/abhisek/investiq/internal/ui/theme"
)

// enhanceDoneMsg carries a generated explanation for question ID.
type enhanceDoneMsg struct {
	ID   string
	Text string
	Err  error
}

// PlayScreen walks the learner through the store's current session.
type PlayScreen struct {
	deps *screens.Deps

	current  question.Question
	ok       bool
	choice   components.MultiChoice
	answered bool

	showExplanation bool
	autoExplain     bool
	enhanced        string
	enhancing       bool
	enhanceErr      error
	err             error
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)

// New creates a PlayScreen over the session already started on deps.Store.
func New(deps *screens.Deps) *PlayScreen {
	p := &PlayScreen{deps: deps}
	if s, err := deps.Settings.Get(context.Background()); err == nil {
		p.autoExplain = s.ShowExplanationImmediately
	}
	p.load()
	return p
}

func (p *PlayScreen) load() {
	p.current, p.ok = p.deps.Store.CurrentQuestion()
	p.choice = components.NewMultiChoice(p.current.Text, p.current.Choices, p.current.CorrectAnswer)
	p.answered = false
	p.showExplanation = false
	p.enhanced = ""
	p.enhancing = false
	p.enhanceErr = nil
}

func (p *PlayScreen) Init() tea.Cmd {
	return nil
}

func (p *PlayScreen) Title() string {
	return "Quiz"
}

func (p *PlayScreen) KeyHints() []layout.KeyHint {
	if !p.answered {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "1-4", Description: "Answer"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit quiz"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Next"},
		{Key: "x", Description: "Explanation"},
	}
	if p.deps.AIEnabled() {
		hints = append(hints, layout.KeyHint{Key: "e", Description: "Explain more"})
	}
	return hints
}

func (p *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case enhanceDoneMsg:
		if msg.ID != p.current.ID {
			return p, nil
		}
		p.enhancing = false
		p.enhanceErr = msg.Err
		if msg.Err == nil {
			p.enhanced = msg.Text
			p.showExplanation = true
		}
		return p, nil

	case tea.KeyMsg:
		if !p.ok {
			return p, nil
		}
		if !p.answered {
			var cmd tea.Cmd
			p.choice, cmd = p.choice.Update(msg)
			if p.choice.Submitted {
				p.deps.Store.AnswerQuestion(p.choice.ChosenIndex)
				p.answered = true
				p.showExplanation = p.autoExplain
			}
			return p, cmd
		}

		switch msg.String() {
		case "enter", "n", "right":
			return p, p.advance()
		case "x":
			p.showExplanation = !p.showExplanation
		case "e":
			return p, p.enhance()
		}
	}
	return p, nil
}

// advance moves to the next question, or finishes the quiz and swaps this
// screen for the summary after the last one.
func (p *PlayScreen) advance() tea.Cmd {
	sess := p.deps.Store.Session()
	if sess == nil {
		return nil
	}
	if sess.CurrentIndex < len(sess.Questions)-1 {
		p.deps.Store.NextQuestion()
		p.load()
		return nil
	}

	res, err := p.deps.Store.FinishQuiz(context.Background())
	if res == nil {
		p.err = err
		return nil
	}
	next := summary.New(res, err)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (p *PlayScreen) enhance() tea.Cmd {
	gen := p.deps.Generator
	if gen == nil || p.enhancing || p.enhanced != "" {
		return nil
	}
	p.enhancing = true
	p.enhanceErr = nil
	q := p.current
	return func() tea.Msg {
		ctx, cancel := screens.AIContext()
		defer cancel()
		text, err := gen.EnhanceExplanation(ctx, q)
		return enhanceDoneMsg{ID: q.ID, Text: text, Err: err}
	}
}

func (p *PlayScreen) View(width, height int) string {
	if !p.ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("No quiz in progress."))
	}

	sess := p.deps.Store.Session()
	inner := min(width-8, 72)
	pad := lipgloss.NewStyle().PaddingLeft(max((width-inner)/2, 0))

	var b strings.Builder

	meta := fmt.Sprintf("Question %d of %d   %s · %s",
		sess.CurrentIndex+1, len(sess.Questions), p.current.Category, p.current.Difficulty.Label())
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(meta))
	if p.current.IsAIGenerated() {
		b.WriteString("  " + theme.Badge.Render("AI"))
	}
	b.WriteString("\n")

	bar := components.NewProgressBar("", float64(sess.Answered())/float64(len(sess.Questions)), false, inner)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Width(inner).Render(p.choice.View()))
	b.WriteString("\n")

	if p.answered {
		if p.choice.IsCorrect() {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Not quite. The answer is " + p.current.CorrectChoice() + "."))
		}
		b.WriteString("\n\n")

		if p.showExplanation {
			b.WriteString(theme.Explanation.Width(inner).Render(p.current.Explanation))
			b.WriteString("\n")
			if p.enhanced != "" {
				b.WriteString("\n")
				b.WriteString(theme.Explanation.BorderForeground(theme.Accent).Width(inner).Render(p.enhanced))
				b.WriteString("\n")
			}
		}
		switch {
		case p.enhancing:
			b.WriteString(theme.Hint.Render("Asking the AI tutor..."))
			b.WriteString("\n")
		case p.enhanceErr != nil:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("Could not get a better explanation: " + p.enhanceErr.Error()))
			b.WriteString("\n")
		}
	}

	if p.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(p.err.Error()))
		b.WriteString("\n")
	}

	return pad.Render(b.String())
}
