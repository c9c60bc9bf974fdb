package home

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/cadetcorps/cadet/internal/bootstrap"
	assist "github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/features"
	prog "github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screen"
	chatscreen "github.com/cadetcorps/cadet/internal/screens/chat"
	"github.com/cadetcorps/cadet/internal/screens/history"
	"github.com/cadetcorps/cadet/internal/screens/placeholder"
	progressscreen "github.com/cadetcorps/cadet/internal/screens/progress"
	"github.com/cadetcorps/cadet/internal/screens/quizsetup"
	sessionscreen "github.com/cadetcorps/cadet/internal/screens/session"
	"github.com/cadetcorps/cadet/internal/screens/summary"
	sess "github.com/cadetcorps/cadet/internal/session"
	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// BankTopic labels quizzes drawn from the imported question bank.
const BankTopic = "Question Bank"

type statsLoadedMsg struct {
	report prog.Report
	err    error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc       *bootstrap.Services
	user      string
	assistant *assist.Assistant
	prefill   quizsetup.Prefill

	menu   components.Menu
	stats  prog.Stats
	goal   int
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen for user.
func New(svc *bootstrap.Services, user string) *HomeScreen {
	h := &HomeScreen{
		svc:       svc,
		user:      user,
		assistant: svc.NewAssistant(user),
		prefill:   quizsetup.Prefill{Count: svc.Config.Quiz.DefaultCount},
	}
	h.menu = components.NewMenu(h.items())
	return h
}

// WithPrefill seeds the quiz form opened from the menu.
func (h *HomeScreen) WithPrefill(p quizsetup.Prefill) *HomeScreen {
	if p.Count <= 0 {
		p.Count = h.prefill.Count
	}
	h.prefill = p
	return h
}

// QuizSetup returns the quiz form with the current prefill.
func (h *HomeScreen) QuizSetup() screen.Screen {
	if !h.svc.Features.Available(features.Quiz) {
		return placeholder.New("New Quiz", h.reason(features.Quiz))
	}
	return quizsetup.New(h.svc, h.user, h.prefill, h.resultOptions())
}

func (h *HomeScreen) items() []components.MenuItem {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			if s == nil {
				return nil
			}
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	items := []components.MenuItem{
		{Label: "Generate a quiz", Action: push(h.QuizSetup)},
		{Label: "Demo quiz", Action: push(func() screen.Screen {
			return h.startQuiz(quiz.DemoQuestions(), quiz.DemoTopic)
		})},
	}

	bank := components.MenuItem{Label: "Question bank quiz", Action: push(func() screen.Screen {
		qs := append([]quiz.Question(nil), h.svc.Bank...)
		rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		if n := h.prefill.Count; n > 0 && n < len(qs) {
			qs = qs[:n]
		}
		return h.startQuiz(qs, BankTopic)
	})}
	if len(h.svc.Bank) == 0 {
		bank.Disabled, bank.Note = true, "no bank imported"
	}
	items = append(items, bank)

	items = append(items, components.MenuItem{Label: "Study assistant", Action: push(func() screen.Screen {
		if h.assistant == nil {
			return placeholder.New("Study Assistant", h.reason(features.Chat))
		}
		return chatscreen.New(h.assistant)
	})})

	progressItem := components.MenuItem{Label: "My progress", Action: push(func() screen.Screen {
		return progressscreen.New(h.svc.Tracker, h.user, h.exportDir())
	})}
	historyItem := components.MenuItem{Label: "Quiz history", Action: push(func() screen.Screen {
		return history.New(h.svc.Store.EventRepo(), h.user)
	})}
	if h.svc.Tracker == nil {
		progressItem.Disabled, progressItem.Note = true, h.reason(features.Progress)
	}
	items = append(items, progressItem, historyItem,
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (h *HomeScreen) reason(name string) string {
	if c, ok := h.svc.Features.Get(name); ok && c.Reason != "" {
		return c.Reason
	}
	return "not available"
}

func (h *HomeScreen) exportDir() string {
	return filepath.Join(h.svc.Config.DataDir, "exports")
}

func (h *HomeScreen) resultOptions() summary.Options {
	return summary.Options{ExportDir: h.exportDir(), Assistant: h.assistant}
}

func (h *HomeScreen) startQuiz(qs []quiz.Question, topic string) screen.Screen {
	q, err := h.svc.StartQuiz(qs, sess.Meta{User: h.user, Topic: topic})
	if err != nil {
		h.errMsg = err.Error()
		return nil
	}
	h.errMsg = ""
	return sessionscreen.New(q, h.svc, h.resultOptions())
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.svc.Tracker == nil {
		return nil
	}
	tracker, user := h.svc.Tracker, h.user
	return func() tea.Msg {
		r, err := tracker.Report(user)
		return statsLoadedMsg{report: r, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.err != nil {
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.stats, h.goal, h.loaded = msg.report.Stats, msg.report.Preferences.DailyGoalMinutes, true
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height)
	cw := components.ContentWidth(width, 60)

	sections := []string{renderBanner(cw, compact)}
	if h.loaded {
		sections = append(sections, components.Card("", h.renderStats(), cw))
	}
	sections = append(sections, components.Card("", h.menu.View(), cw))
	if h.errMsg != "" {
		sections = append(sections, theme.ErrorText.Width(cw).Render(h.errMsg))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) renderStats() string {
	s := h.stats
	return strings.Join([]string{
		theme.Selected.Render(fmt.Sprintf("✎ %d quizzes", s.QuizzesTaken)),
		theme.Chosen.Render(fmt.Sprintf("⌀ %s%%", s.AverageQuizScore.StringFixed(1))),
		theme.Correct.Render(fmt.Sprintf("★ %d day streak", s.CurrentStreak)),
		theme.Hint.Render(fmt.Sprintf("%d/%d min today", s.TodayStudyTime, h.goal)),
	}, "   ")
}

func (h *HomeScreen) Title() string {
	return "Home"
}
