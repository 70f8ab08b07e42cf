// Package welcome is the launch splash: a rising price chart, then the
// banner. It sits above the home screen and pops itself on any key.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/router"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 800 * time.Millisecond
	totalDur     = 2 * time.Second
)

// chartBars are column heights of the splash chart, drawn left to right.
var chartBars = []int{2, 3, 2, 4, 3, 5, 4, 6, 5, 7}

const chartHeight = 7

type tickMsg time.Time

// WelcomeScreen animates the chart and waits for a key.
type WelcomeScreen struct {
	elapsed  time.Duration
	finished bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen.
func New() *WelcomeScreen {
	return &WelcomeScreen{}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.finished || w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		if w.finished {
			return w, nil
		}
		w.finished = true
		return w, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return w, nil
}

// visibleBars is how many chart columns the animation has drawn so far.
func (w *WelcomeScreen) visibleBars() int {
	n := int(w.elapsed * time.Duration(len(chartBars)) / bannerAt)
	return min(n, len(chartBars))
}

func renderChart(bars int) string {
	up := lipgloss.NewStyle().Foreground(theme.Success)
	rows := make([]string, chartHeight)
	for r := range chartHeight {
		level := chartHeight - r
		var line strings.Builder
		for i := range len(chartBars) {
			if i < bars && chartBars[i] >= level {
				line.WriteString(up.Render("█ "))
			} else {
				line.WriteString("  ")
			}
		}
		rows[r] = line.String()
	}
	return strings.Join(rows, "\n")
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{renderChart(w.visibleBars())}

	if w.elapsed >= bannerAt {
		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Learn the market, one question at a time.")
		hint := lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue")
		sections = append(sections, "", RenderBanner(width), "", tagline, "", hint)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
