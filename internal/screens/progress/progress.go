package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"

	prog "github.com/cadetcorps/cadet/internal/progress"
	"github.com/cadetcorps/cadet/internal/screen"
	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// Tracker reads and changes a cadet's stored progress.
type Tracker interface {
	Report(userID string) (prog.Report, error)
	Reset(userID string, kind prog.ResetKind) error
	Export(userID string, w io.Writer) error
}

type reportLoadedMsg struct {
	report prog.Report
	err    error
}

// ProgressScreen shows a cadet's statistics and achievements.
type ProgressScreen struct {
	tracker   Tracker
	user      string
	exportDir string

	report       prog.Report
	loaded       bool
	confirmReset bool
	status       string
	failed       bool
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)
var _ screen.EscapeHandler = (*ProgressScreen)(nil)

// New creates the progress screen. Exports go to exportDir.
func New(tracker Tracker, user, exportDir string) *ProgressScreen {
	return &ProgressScreen{tracker: tracker, user: user, exportDir: exportDir}
}

func (s *ProgressScreen) Init() tea.Cmd {
	return s.load
}

func (s *ProgressScreen) load() tea.Msg {
	r, err := s.tracker.Report(s.user)
	return reportLoadedMsg{report: r, err: err}
}

func (s *ProgressScreen) Title() string {
	return "My Progress"
}

// HandlesEscape keeps Esc for cancelling the reset prompt.
func (s *ProgressScreen) HandlesEscape() bool { return s.confirmReset }

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	if s.confirmReset {
		return []layout.KeyHint{
			{Key: "P", Description: "Reset scores"},
			{Key: "C", Description: "Reset everything"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "X", Description: "Export"},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		s.loaded = true
		if msg.err != nil {
			s.status, s.failed = "Could not load progress: "+msg.err.Error(), true
			return s, nil
		}
		s.report = msg.report
		return s, nil

	case tea.KeyMsg:
		if s.confirmReset {
			return s.handleResetKey(msg.String())
		}
		switch msg.String() {
		case "r":
			s.confirmReset = true
		case "x":
			s.export()
		}
	}
	return s, nil
}

func (s *ProgressScreen) handleResetKey(key string) (screen.Screen, tea.Cmd) {
	var kind prog.ResetKind
	switch key {
	case "p":
		kind = prog.ResetPartial
	case "c":
		kind = prog.ResetComplete
	case "esc", "n":
		s.confirmReset = false
		return s, nil
	default:
		return s, nil
	}
	s.confirmReset = false
	if err := s.tracker.Reset(s.user, kind); err != nil {
		s.status, s.failed = err.Error(), true
		return s, nil
	}
	s.status, s.failed = "Progress reset ("+string(kind)+").", false
	return s, s.load
}

func (s *ProgressScreen) export() {
	path := filepath.Join(s.exportDir, s.user+"_progress.json")
	err := func() error {
		if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := s.tracker.Export(s.user, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}()
	if err != nil {
		s.status, s.failed = "Export failed: "+err.Error(), true
		return
	}
	s.status, s.failed = "Saved "+path, false
}

func (s *ProgressScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Center(theme.Hint.Render("Loading progress..."), width, height)
	}
	cw := components.ContentWidth(width, 90)
	st := s.report.Stats
	p := s.report.Progress

	stats := strings.Join([]string{
		row("Quizzes taken", fmt.Sprint(st.QuizzesTaken)),
		row("Average score", st.AverageQuizScore.StringFixed(1)+"%"),
		row("Best score", fmt.Sprintf("%.1f%%", p.QuizPerformance.Best)),
		row("Recent trend", strings.ReplaceAll(p.QuizPerformance.Trend, "_", " ")),
		row("Questions asked", fmt.Sprint(st.QuestionsAsked)),
		row("Study time", fmt.Sprintf("%d min total, %d today", st.TotalStudyTime, st.TodayStudyTime)),
		row("Streak", fmt.Sprintf("%d days (best %d)", st.CurrentStreak, st.LongestStreak)),
		row("Certificate", st.CertificateLevel),
	}, "\n")

	overall := p.OverallProgress.InexactFloat64() / 100
	stats += "\n\n" + components.NewProgressBar("Syllabus", overall, true, cw-4).View()

	sections := []string{components.Card("Statistics", stats, cw)}
	if topics := topicLines(p.TopicsCompleted); topics != "" {
		sections = append(sections, components.Card("Topics completed", topics, cw))
	}
	sections = append(sections, components.Card("Achievements", s.achievements(), cw))

	if s.confirmReset {
		sections = append(sections, theme.Incorrect.Render(
			"Reset progress? P keeps preferences and achievements, C clears everything."))
	}
	if s.status != "" {
		style := theme.Correct
		if s.failed {
			style = theme.ErrorText
		}
		sections = append(sections, style.Render(s.status))
	}
	return layout.Center(strings.Join(sections, "\n"), width, height)
}

func (s *ProgressScreen) achievements() string {
	if len(s.report.Achievements) == 0 {
		return theme.Hint.Render("None yet. Finish a quiz to earn your first badge.")
	}
	lines := make([]string, 0, len(s.report.Achievements))
	for _, a := range s.report.Achievements {
		lines = append(lines, theme.Selected.Render("★ "+a.Title)+"  "+theme.Hint.Render(a.Description))
	}
	return strings.Join(lines, "\n")
}

func row(label, value string) string {
	return theme.Label.Render(fmt.Sprintf("%-16s", label)) + theme.Body.Render(value)
}

func topicLines(completed map[string]int) string {
	topics := make([]string, 0, len(completed))
	for t := range completed {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	lines := make([]string, 0, len(topics))
	for _, t := range topics {
		lines = append(lines, fmt.Sprintf("%s  %s", theme.Body.Render(t), theme.Hint.Render(fmt.Sprintf("×%d", completed[t]))))
	}
	return strings.Join(lines, "\n")
}
