package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/quiz"
	"github.com/abhisek/investiq/internal/router"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/screens/play"
	settingsscreen "github.com/abhisek/investiq/internal/screens/settings"
	"github.com/abhisek/investiq/internal/screens/setup"
	"github.com/abhisek/investiq/internal/screens/stats"
	"github.com/abhisek/investiq/internal/ui/components"
	"github.com/abhisek/investiq/internal/ui/theme"
)

const (
	itemQuick = iota
	itemCustom
	itemReview
	itemGenerate
	itemStats
	itemSettings
	itemQuit
)

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps *screens.Deps
	menu components.Menu
	err  error
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps *screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.items())
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// items rebuilds the menu so labels and disabled states follow the store.
func (h *HomeScreen) items() []components.MenuItem {
	wrong := len(h.deps.Store.Progress().WrongQuestions)
	ai := h.deps.AIEnabled()

	generate := "Generate AI Questions"
	if !ai {
		generate += " (needs API key)"
	}

	return []components.MenuItem{
		itemQuick: {Label: fmt.Sprintf("Quick Quiz (%d random)", quiz.DefaultCount), Action: func() tea.Cmd {
			return h.startQuiz(h.deps.BuildQuiz(context.Background(), quiz.Options{}, false))
		}},
		itemCustom: {Label: "Custom Quiz", Action: func() tea.Cmd {
			return push(setup.New(h.deps, false))
		}},
		itemReview: {Label: fmt.Sprintf("Review Mistakes (%d)", wrong), Disabled: wrong == 0, Action: func() tea.Cmd {
			return h.startQuiz(h.deps.BuildReview(context.Background(), quiz.DefaultCount, false))
		}},
		itemGenerate: {Label: generate, Disabled: !ai, Action: func() tea.Cmd {
			return push(setup.New(h.deps, true))
		}},
		itemStats: {Label: "Progress", Action: func() tea.Cmd {
			return push(stats.New(h.deps))
		}},
		itemSettings: {Label: "Settings", Action: func() tea.Cmd {
			return push(settingsscreen.New(h.deps))
		}},
		itemQuit: {Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) startQuiz(err error) tea.Cmd {
	h.err = err
	if err != nil {
		return nil
	}
	return push(play.New(h.deps))
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		h.err = nil
	}
	h.refresh()
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// refresh rebuilds the items and moves the cursor off an item that has
// just become disabled.
func (h *HomeScreen) refresh() {
	h.menu.Items = h.items()
	if h.menu.Items[h.menu.Selected].Disabled {
		h.menu = components.NewMenu(h.menu.Items)
	}
}

func (h *HomeScreen) View(width, height int) string {
	h.refresh()

	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}

	var b strings.Builder
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("InvestIQ")))
	b.WriteString("\n")
	b.WriteString(center(theme.Subtitle.Render("Sharpen your investing knowledge, one question at a time.")))
	b.WriteString("\n\n")

	p := h.deps.Store.Progress()
	summary := "No quizzes yet. Start with a quick quiz!"
	if p.TotalQuestions > 0 {
		summary = fmt.Sprintf("%d quizzes · %.0f%% accuracy · %d study days",
			p.TotalQuizzes, p.Accuracy(), p.StudyDays)
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Render(summary)))
	b.WriteString("\n\n")

	menu := theme.Card.Width(min(width-8, 48)).Render(strings.TrimRight(h.menu.View(), "\n"))
	b.WriteString(center(menu))
	b.WriteString("\n")

	if h.err != nil {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error).Render(h.err.Error())))
		b.WriteString("\n")
	}

	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
