package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.confirmQuit {
		return layout.Center(
			theme.Title.Render("Abandon this quiz?")+"\n\n"+
				theme.Hint.Render("Your answers will be discarded and nothing is recorded."),
			width, height)
	}

	cw := components.ContentWidth(width, 90)
	q := s.quiz

	info := theme.Label.Render(fmt.Sprintf("Question %d/%d", q.Index()+1, q.Len()))
	meta := theme.Hint.Render(strings.Join(nonEmpty(q.Meta.Difficulty, q.Meta.CertificateLevel), "  ·  "))
	gap := max(cw-lipgloss.Width(info)-lipgloss.Width(meta), 1)

	var b strings.Builder
	b.WriteString(info + strings.Repeat(" ", gap) + meta)
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", float64(q.Answered())/float64(q.Len()), true, cw).View())
	b.WriteString("\n\n")
	b.WriteString(s.choice.View(cw - 4))
	b.WriteString("\n")
	b.WriteString(s.renderDots())

	if s.confirmFinish {
		left := q.Len() - q.Answered()
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf(
			"%d question(s) unanswered. Press F again to finish, any other key to keep going.", left)))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	return layout.Center(components.Card("", b.String(), cw), width, height)
}

// renderDots shows one marker per question: answered, current or open.
func (s *SessionScreen) renderDots() string {
	dots := make([]string, s.quiz.Len())
	for i := range dots {
		_, answered := s.quiz.Answer(i)
		switch {
		case i == s.quiz.Index():
			dots[i] = theme.Selected.Render("◆")
		case answered:
			dots[i] = theme.Chosen.Render("●")
		default:
			dots[i] = theme.Hint.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
