// Package setup lets the learner pick a topic, level, and length before a
// quiz, and optionally have the questions generated.
package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/aigen"
	"github.com/abhisek/investiq/internal/bank"
	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/quiz"
	"github.com/abhisek/investiq/internal/router"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/screens/play"
	"github.com/abhisek/investiq/internal/ui/layout"
	"github.com/abhisek/investiq/internal/ui/theme"
)

var errNeedTopic = errors.New("pick a category and a difficulty for AI questions")

// Counts are the quiz lengths on offer.
var Counts = []int{5, 10, 15, 20}

const (
	fieldCategory = iota
	fieldDifficulty
	fieldLength
	fieldSource
	fieldStart
	numFields
)

const (
	sourceBank = iota
	sourceAI
)

type generatedMsg struct {
	Request   aigen.Request
	Questions []question.Question
	Err       error
}

// SetupScreen is a small form whose rows cycle with ←/→.
type SetupScreen struct {
	deps *screens.Deps

	categories   []string // "" means any
	difficulties []question.Difficulty

	field      int
	category   int
	difficulty int
	count      int
	source     int

	generating bool
	err        error
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a SetupScreen. preferAI starts with the AI source selected
// when AI features are available.
func New(deps *screens.Deps, preferAI bool) *SetupScreen {
	s := &SetupScreen{
		deps:         deps,
		categories:   append([]string{""}, bank.New(deps.Store.Questions()).Categories()...),
		difficulties: append([]question.Difficulty{""}, question.Difficulties...),
		count:        1,
		field:        fieldStart,
	}
	if preferAI && deps.AIEnabled() {
		s.source = sourceAI
		s.category = 1
		s.difficulty = 1
	}
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return "New Quiz"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		s.generating = false
		if msg.Err != nil {
			s.err = msg.Err
			return s, nil
		}
		ctx := context.Background()
		for _, q := range msg.Questions {
			if err := s.deps.Store.AddAIGeneratedQuestion(ctx, q); err != nil {
				s.err = err
				return s, nil
			}
		}
		s.deps.StartGenerated(ctx, msg.Request, msg.Questions, false)
		return s, s.openPlay()

	case tea.KeyMsg:
		if s.generating {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			s.field = cycle(s.field, -1, numFields)
		case "down", "j", "tab":
			s.field = cycle(s.field, 1, numFields)
		case "left", "h":
			s.change(-1)
		case "right", "l":
			s.change(1)
		case "enter":
			return s, s.start()
		}
	}
	return s, nil
}

func (s *SetupScreen) change(delta int) {
	s.err = nil
	switch s.field {
	case fieldCategory:
		s.category = cycle(s.category, delta, len(s.categories))
	case fieldDifficulty:
		s.difficulty = cycle(s.difficulty, delta, len(s.difficulties))
	case fieldLength:
		s.count = cycle(s.count, delta, len(Counts))
	case fieldSource:
		if s.deps.AIEnabled() {
			s.source = cycle(s.source, delta, 2)
		}
	}
}

// Request returns the selections as a generation request.
func (s *SetupScreen) Request() aigen.Request {
	return aigen.Request{
		Category:   s.categories[s.category],
		Difficulty: s.difficulties[s.difficulty],
		Count:      Counts[s.count],
	}
}

func (s *SetupScreen) start() tea.Cmd {
	s.err = nil
	req := s.Request()

	if s.source == sourceAI {
		if req.Category == "" || req.Difficulty == "" {
			s.err = errNeedTopic
			return nil
		}
		gen := s.deps.Generator
		if gen == nil {
			return nil
		}
		s.generating = true
		return func() tea.Msg {
			ctx, cancel := screens.AIContext()
			defer cancel()
			qs, err := gen.GenerateQuestions(ctx, req)
			return generatedMsg{Request: req, Questions: qs, Err: err}
		}
	}

	err := s.deps.BuildQuiz(context.Background(), quiz.Options{
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Count:      req.Count,
	}, false)
	if err != nil {
		s.err = err
		return nil
	}
	return s.openPlay()
}

// openPlay replaces this screen with the quiz.
func (s *SetupScreen) openPlay() tea.Cmd {
	next := play.New(s.deps)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SetupScreen) View(width, height int) string {
	inner := min(width-8, 72)
	pad := lipgloss.NewStyle().PaddingLeft(max((width-inner)/2, 0))

	category := s.categories[s.category]
	if category == "" {
		category = "Any"
	}
	difficulty := s.difficulties[s.difficulty].Label()
	if difficulty == "" {
		difficulty = "Any"
	}
	source := "Question bank"
	switch {
	case s.source == sourceAI:
		source = "AI generated"
	case !s.deps.AIEnabled():
		source = "Question bank (add an API key for AI)"
	}

	rows := [][2]string{
		{"Category", "◂ " + category + " ▸"},
		{"Difficulty", "◂ " + difficulty + " ▸"},
		{"Questions", fmt.Sprintf("◂ %d ▸", Counts[s.count])},
		{"Source", source},
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(inner).Render("Build your quiz"))
	b.WriteString("\n\n")

	for i, r := range rows {
		prefix, style := "    ", theme.Unselected
		if i == s.field {
			prefix, style = "  ▸ ", theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-12s %s", prefix, r[0], r[1])))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	start := "    Start quiz"
	if s.field == fieldStart {
		start = theme.Selected.Render("  ▸ Start quiz")
	}
	b.WriteString(start)
	b.WriteString("\n")

	if s.generating {
		b.WriteString("\n" + theme.Hint.Render(fmt.Sprintf("Generating %d questions...", Counts[s.count])) + "\n")
	}
	if s.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Width(inner).Render(s.err.Error()) + "\n")
	}

	return pad.Render(b.String())
}
