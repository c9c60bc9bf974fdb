package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	assist "github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screen"
	chatscreen "github.com/cadetcorps/cadet/internal/screens/chat"
	"github.com/cadetcorps/cadet/internal/session"
	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// Options wires the optional actions of the results screen.
type Options struct {
	// ExportDir receives exported result files. Empty disables export.
	ExportDir string
	// Assistant answers follow-up questions. Nil hides the action.
	Assistant *assist.Assistant
}

// SummaryScreen displays the results of a finished quiz.
type SummaryScreen struct {
	results *session.Results
	opts    Options
	offset  int
	status  string
	failed  bool
	now     func() time.Time
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeHandler = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(results *session.Results, opts Options) *SummaryScreen {
	return &SummaryScreen{results: results, opts: opts, now: time.Now}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Results"
}

func (s *SummaryScreen) HandlesEscape() bool { return true }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.opts.ExportDir != "" {
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Export"})
	}
	if s.opts.Assistant != nil {
		hints = append(hints, layout.KeyHint{Key: "A", Description: "Ask assistant"})
	}
	return append(hints, layout.KeyHint{Key: "Enter", Description: "Home"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "esc":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		s.offset++
	case "e":
		if s.opts.ExportDir != "" {
			s.export()
		}
	case "a":
		if a := s.opts.Assistant; a != nil {
			question := assist.ResultsQuestion(s.results)
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: chatscreen.NewWithQuestion(a, question)}
			}
		}
	}
	return s, nil
}

// export writes the results next to the profiles as
// quiz_results_<timestamp>.json.
func (s *SummaryScreen) export() {
	now := s.now()
	path := filepath.Join(s.opts.ExportDir, fmt.Sprintf("quiz_results_%s.json", now.Format("20060102_150405")))
	err := func() error {
		if err := os.MkdirAll(s.opts.ExportDir, 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := session.ExportResults(f, s.results, now); err != nil {
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

func (s *SummaryScreen) View(width, height int) string {
	r := s.results
	if r == nil {
		return ""
	}
	cw := components.ContentWidth(width, 90)

	var head strings.Builder
	headline := "Quiz complete!"
	if r.Passed {
		headline = "Quiz passed!"
	}
	head.WriteString(theme.Title.Width(cw).Render(headline))
	head.WriteString("\n\n")

	scoreStyle := theme.Incorrect
	if r.Passed {
		scoreStyle = theme.Correct
	}
	head.WriteString(lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(
		scoreStyle.Render(fmt.Sprintf("%d/%d  ·  %s%%  ·  Grade %s", r.Correct, r.Total, r.Percentage.StringFixed(1), r.Grade)),
	))
	head.WriteString("\n")
	head.WriteString(theme.Subtitle.Width(cw).Render(fmt.Sprintf("%s  ·  %s  ·  %s",
		r.Topic, r.Performance, session.FormatDuration(r.Elapsed))))

	var recs []string
	for _, rec := range r.Recommendations {
		recs = append(recs, "• "+rec)
	}
	recCard := components.Card("Recommendations", theme.Body.Render(strings.Join(recs, "\n")), cw)

	details := strings.Split(s.renderDetails(cw-4), "\n")
	fixed := head.String() + "\n\n" + recCard + "\n"
	status := ""
	if s.status != "" {
		style := theme.Correct
		if s.failed {
			style = theme.ErrorText
		}
		status = "\n" + style.Render(s.status)
	}

	budget := max(height-lipgloss.Height(fixed)-lipgloss.Height(status)-3, 3)
	maxOffset := max(len(details)-budget, 0)
	s.offset = min(s.offset, maxOffset)
	visible := details[s.offset:min(s.offset+budget, len(details))]

	detailCard := components.Card("Answers", strings.Join(visible, "\n"), cw)
	return layout.Center(fixed+"\n"+detailCard+status, width, height)
}

func (s *SummaryScreen) renderDetails(width int) string {
	var b strings.Builder
	for _, d := range s.results.Details {
		mark, style := "✓", theme.Correct
		if !d.IsCorrect {
			mark, style = "✗", theme.Incorrect
		}
		b.WriteString(style.Render(fmt.Sprintf("%s Q%d. ", mark, d.Number)))
		b.WriteString(theme.Body.Render(layout.Wrap(d.Question, width-6)))
		b.WriteString("\n")

		chosen := d.Chosen
		if chosen == "" {
			chosen = "-"
		} else {
			chosen += ") " + d.Options[d.Chosen]
		}
		b.WriteString(theme.Hint.Render("   Your answer: " + chosen))
		b.WriteString("\n")
		if !d.IsCorrect {
			b.WriteString(theme.Correct.Render("   Correct: " + d.Correct + ") " + d.Options[d.Correct]))
			b.WriteString("\n")
		}
		if d.Explanation != "" {
			b.WriteString(theme.Hint.Width(width).Render("   " + d.Explanation))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
