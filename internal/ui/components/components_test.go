package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	m := NewMultiChoice("What is a bond?", [4]string{"Debt", "Equity", "Cash", "Gold"}, 0)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || m.ChosenIndex != 1 {
		t.Fatalf("Submitted=%v ChosenIndex=%d, want true/1", m.Submitted, m.ChosenIndex)
	}
	if m.IsCorrect() {
		t.Error("choice 1 should be wrong")
	}
}

func TestMultiChoice_NumberAndLetterKeys(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"1", 0}, {"3", 2}, {"4", 3}, {"b", 1}, {"d", 3},
	}
	for _, tt := range tests {
		m := NewMultiChoice("q", [4]string{"w", "x", "y", "z"}, 3)
		m, _ = m.Update(key(tt.key))
		if !m.Submitted || m.ChosenIndex != tt.want {
			t.Errorf("key %q: ChosenIndex = %d, want %d", tt.key, m.ChosenIndex, tt.want)
		}
	}
}

func TestMultiChoice_IgnoresKeysAfterSubmit(t *testing.T) {
	m := NewMultiChoice("q", [4]string{"w", "x", "y", "z"}, 2)
	m, _ = m.Update(key("3"))
	m, _ = m.Update(key("1"))
	if m.ChosenIndex != 2 || !m.IsCorrect() {
		t.Fatalf("ChosenIndex = %d, want 2", m.ChosenIndex)
	}
	if !strings.Contains(m.View(), "✓") {
		t.Error("view should mark the correct choice")
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	called := ""
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "Play", Action: func() tea.Cmd { called = "play"; return nil }},
		{Label: "Off too", Disabled: true},
		{Label: "Stats", Action: func() tea.Cmd { called = "stats"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("initial Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Fatalf("Selected = %d, want 3", m.Selected)
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if called != "stats" {
		t.Errorf("called = %q, want stats", called)
	}
}

func TestProgressBar_ClampsFill(t *testing.T) {
	for _, pct := range []float64{-1, 0, 0.5, 1, 2} {
		view := NewProgressBar("Bonds", pct, true, 40).View()
		if !strings.Contains(view, "Bonds") {
			t.Errorf("percent %v: label missing from %q", pct, view)
		}
	}
}

func TestTextInput_Masked(t *testing.T) {
	ti := NewTextInput("key", true, 0)
	for _, r := range "secret" {
		ti, _ = ti.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if ti.Value() != "secret" {
		t.Fatalf("Value = %q, want secret", ti.Value())
	}
	if strings.Contains(ti.View(), "secret") {
		t.Error("masked input must not echo the value")
	}
}
