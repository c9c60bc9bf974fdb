package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cadetcorps/cadet/internal/bootstrap"
	"github.com/cadetcorps/cadet/internal/event"
	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screen"
	"github.com/cadetcorps/cadet/internal/screens/home"
	"github.com/cadetcorps/cadet/internal/screens/quizsetup"
	"github.com/cadetcorps/cadet/internal/ui/layout"
)

// Options controls how the program starts.
type Options struct {
	// Prefill, when set, opens the quiz form straight away.
	Prefill *quizsetup.Prefill
}

type statusMsg layout.HeaderStatus

// AppModel is the root Bubble Tea model.
type AppModel struct {
	svc    *bootstrap.Services
	user   string
	home   *home.HomeScreen
	opts   Options
	router *router.Router
	status layout.HeaderStatus
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(svc *bootstrap.Services, user string, opts Options) AppModel {
	h := home.New(svc, user)
	if opts.Prefill != nil {
		h.WithPrefill(*opts.Prefill)
	}
	return AppModel{
		svc:    svc,
		user:   user,
		home:   h,
		opts:   opts,
		router: router.New(h),
		status: layout.HeaderStatus{User: user},
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.home.Init(), m.loadStatus()}
	if m.opts.Prefill != nil {
		setup := m.home.QuizSetup()
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: setup} })
	}
	return tea.Batch(cmds...)
}

// loadStatus reads the header counters from the stored profile.
func (m AppModel) loadStatus() tea.Cmd {
	tracker, user := m.svc.Tracker, m.user
	if tracker == nil {
		return nil
	}
	return func() tea.Msg {
		r, err := tracker.Report(user)
		if err != nil {
			return nil
		}
		return statusMsg{User: user, Quizzes: r.Stats.QuizzesTaken, Streak: r.Stats.CurrentStreak}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status = layout.HeaderStatus(msg)
		return m, nil

	case router.PopToRootMsg, router.PopScreenMsg:
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.loadStatus())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
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

	header := layout.RenderHeader(title, m.status, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
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
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program for user and records the time spent
// as a study session when it exits.
func Run(ctx context.Context, svc *bootstrap.Services, user string, opts Options) error {
	started := time.Now()
	p := tea.NewProgram(newAppModel(svc, user, opts), tea.WithContext(ctx))
	_, err := p.Run()

	if minutes := int(time.Since(started).Minutes()); minutes > 0 {
		svc.Bus.Publish(context.WithoutCancel(ctx), event.StudySession{User: user, Minutes: minutes})
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
