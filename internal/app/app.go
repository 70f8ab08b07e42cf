package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/router"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/screens/home"
	"github.com/abhisek/investiq/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Deps *screens.Deps

	// Start, when set, is pushed over the home screen at launch so that
	// CLI flags can drop the user straight into a quiz.
	Start screen.Screen
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   *screens.Deps
	start  screen.Screen
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Deps)),
		deps:   opts.Deps,
		start:  opts.Start,
	}
}

func (m AppModel) Init() tea.Cmd {
	if m.start != nil {
		s := m.start
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	p := m.deps.Store.Progress()
	header := layout.RenderHeader(title, layout.HeaderStats{
		Accuracy:  int(p.Accuracy() + 0.5),
		StudyDays: p.StudyDays,
	}, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
