package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/ui/theme"
)

// choiceLabels prefixes the four answer choices.
var choiceLabels = [4]string{"A", "B", "C", "D"}

// MultiChoice is a four-option selector. Arrow keys move the cursor and
// enter submits; 1-4 and a-d pick and submit in one step.
type MultiChoice struct {
	Question     string
	Options      [4]string
	CorrectIndex int
	Selected     int
	Submitted    bool
	ChosenIndex  int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options [4]string, correctIndex int) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		ChosenIndex:  -1,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.submit(m.Selected)
	case "1", "2", "3", "4":
		m.submit(int(key[0] - '1'))
	case "a", "b", "c", "d":
		m.submit(int(key[0] - 'a'))
	}

	return m, nil
}

func (m *MultiChoice) submit(i int) {
	m.Selected = i
	m.ChosenIndex = i
	m.Submitted = true
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, choiceLabels[i], opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = theme.Correct
			line += "  ✓"
		case m.Submitted && i == m.ChosenIndex:
			style = theme.Incorrect
			line += "  ✗"
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenIndex == m.CorrectIndex
}
