package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cadetcorps/cadet/internal/screen"
	"github.com/cadetcorps/cadet/internal/session"
	"github.com/cadetcorps/cadet/internal/store"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// historyLimit caps how many attempts are listed.
const historyLimit = 50

// AttemptLister returns stored quiz attempts for a user.
type AttemptLister interface {
	QueryQuizAttempts(ctx context.Context, userID string, opts store.QueryOpts) ([]store.QuizAttemptRecord, error)
}

type historyLoadedMsg struct {
	Attempts []store.QuizAttemptRecord
	Err      error
}

// HistoryScreen lists past quiz attempts.
type HistoryScreen struct {
	repo     AttemptLister
	user     string
	attempts []store.QuizAttemptRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen for user.
func New(repo AttemptLister, user string) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		user:     user,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		attempts, err := s.repo.QueryQuizAttempts(context.Background(), s.user, store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Quiz History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  No quizzes yet. Generate one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %-28s  %d/%d  %5.1f%%",
			prefix, a.CompletedAt.Format("Jan 02, 2006 15:04"), truncate(a.Topic, 28),
			a.CorrectAnswers, a.TotalQuestions, a.Score)

		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		mark := theme.Correct.Render(" ✓")
		if !a.Passed {
			mark = theme.Incorrect.Render(" ✗")
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)+mark))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s  ·  %s  ·  took %s",
				orDash(a.Difficulty), orDash(a.CertificateLevel), session.FormatDuration(a.Duration))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
