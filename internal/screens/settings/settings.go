// Package settings is the preferences and API key screen.
package settings

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	appsettings "github.com/abhisek/investiq/internal/settings"
	"github.com/abhisek/investiq/internal/ui/components"
	"github.com/abhisek/investiq/internal/ui/layout"
	"github.com/abhisek/investiq/internal/ui/theme"
)

const (
	rowExplain = iota
	rowShuffle
	rowKey
	rowClearKey
	rowCount
)

// SettingsScreen toggles preferences and manages the Gemini API key.
type SettingsScreen struct {
	deps *screens.Deps

	current  appsettings.AppSettings
	selected int

	editing bool
	input   components.TextInput

	status string
	err    error
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen showing the stored settings.
func New(deps *screens.Deps) *SettingsScreen {
	s := &SettingsScreen{deps: deps}
	s.current, s.err = deps.Settings.Get(context.Background())
	return s
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save key"},
			{Key: "Enter (empty)", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Change"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.editing {
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	if s.editing {
		if kmsg.String() == "enter" {
			s.saveKey(s.input.Value())
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < rowCount-1 {
			s.selected++
		}
	case "enter", "space", " ":
		return s, s.activate()
	}
	return s, nil
}

func (s *SettingsScreen) activate() tea.Cmd {
	ctx := context.Background()
	s.status, s.err = "", nil

	switch s.selected {
	case rowExplain:
		s.current, s.err = s.deps.Settings.Update(ctx, func(a *appsettings.AppSettings) {
			a.ShowExplanationImmediately = !a.ShowExplanationImmediately
		})
	case rowShuffle:
		s.current, s.err = s.deps.Settings.Update(ctx, func(a *appsettings.AppSettings) {
			a.ShuffleChoices = !a.ShuffleChoices
		})
	case rowKey:
		s.editing = true
		s.input = components.NewTextInput("Paste your Gemini API key", true, 0)
		return s.input.Init()
	case rowClearKey:
		if !s.current.HasAPIKey() {
			return nil
		}
		if s.err = s.deps.Settings.ClearAPIKey(ctx); s.err != nil {
			return nil
		}
		s.current.GeminiAPIKey = ""
		if err := s.deps.RefreshGenerator(ctx); err != nil {
			s.status = "API key removed. AI features are off."
			return nil
		}
		s.status = "API key removed. Using the key from the environment."
	}
	return nil
}

func (s *SettingsScreen) saveKey(raw string) {
	s.editing = false
	if strings.TrimSpace(raw) == "" {
		return
	}
	ctx := context.Background()
	if s.err = s.deps.Settings.SaveAPIKey(ctx, raw); s.err != nil {
		return
	}
	s.current, s.err = s.deps.Settings.Get(ctx)
	if s.err != nil {
		return
	}
	if err := s.deps.RefreshGenerator(ctx); err != nil {
		s.status = "API key saved, but AI features are unavailable: " + err.Error()
		return
	}
	s.status = "API key saved. AI features are on."
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

func (s *SettingsScreen) View(width, height int) string {
	inner := min(width-8, 72)
	pad := lipgloss.NewStyle().PaddingLeft(max((width-inner)/2, 0))

	key := "not set"
	if s.current.HasAPIKey() {
		key = appsettings.MaskAPIKey(s.current.GeminiAPIKey)
	}
	rows := [rowCount][2]string{
		rowExplain:  {"Show explanation immediately", onOff(s.current.ShowExplanationImmediately)},
		rowShuffle:  {"Shuffle answer choices", onOff(s.current.ShuffleChoices)},
		rowKey:      {"Gemini API key", key},
		rowClearKey: {"Clear API key", ""},
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(inner).Render("Settings"))
	b.WriteString("\n\n")

	for i, r := range rows {
		prefix := "    "
		style := theme.Unselected
		if i == s.selected {
			prefix = "  ▸ "
			style = theme.Selected
		}
		if i == rowClearKey && !s.current.HasAPIKey() {
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		}
		line := fmt.Sprintf("%s%-32s %s", prefix, r[0], r[1])
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if s.editing {
		b.WriteString("\n")
		b.WriteString(s.input.View())
		b.WriteString("\n")
	}

	if s.status != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Success).Render(s.status) + "\n")
	}
	if s.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(s.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Width(inner).Render(
		"The key is stored in your local database. INVESTIQ_GEMINI_API_KEY or GEMINI_API_KEY is used when none is saved."))

	return pad.Render(b.String())
}
