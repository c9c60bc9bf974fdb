package chat

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	assist "github.com/cadetcorps/cadet/internal/chat"
	"github.com/cadetcorps/cadet/internal/screen"
	"github.com/cadetcorps/cadet/internal/ui/components"
	"github.com/cadetcorps/cadet/internal/ui/layout"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

type answerMsg struct {
	question string
	answer   string
	err      error
}

type entry struct {
	question string
	answer   string
	failed   bool
}

// ChatScreen is a conversation with the study assistant.
type ChatScreen struct {
	assistant *assist.Assistant
	input     components.TextInput
	log       []entry
	waiting   string
	sample    int
	// opening is asked as soon as the screen starts.
	opening string
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates an empty conversation.
func New(a *assist.Assistant) *ChatScreen {
	return &ChatScreen{
		assistant: a,
		input:     components.NewTextInput("Ask about drill, map reading, first aid...", false, 500),
		sample:    -1,
	}
}

// NewWithQuestion creates a conversation that opens by asking question.
func NewWithQuestion(a *assist.Assistant, question string) *ChatScreen {
	s := New(a)
	s.opening = question
	return s
}

func (s *ChatScreen) Init() tea.Cmd {
	if s.opening == "" {
		return nil
	}
	q := s.opening
	s.opening = ""
	return s.ask(q)
}

func (s *ChatScreen) Title() string {
	return "Study Assistant"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Ask"}}
	if len(s.log) == 0 {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Sample question"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+L", Description: "Clear"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *ChatScreen) ask(question string) tea.Cmd {
	s.waiting = question
	a := s.assistant
	return func() tea.Msg {
		answer, err := a.Ask(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		s.waiting = ""
		if msg.err != nil {
			s.log = append(s.log, entry{question: msg.question, answer: errorText(msg.err), failed: true})
			return s, nil
		}
		s.log = append(s.log, entry{question: msg.question, answer: msg.answer})
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+l":
			s.assistant.Clear()
			s.log = nil
			return s, nil
		case "tab":
			if len(s.log) == 0 && len(assist.SampleQuestions) > 0 {
				s.sample = (s.sample + 1) % len(assist.SampleQuestions)
				s.input.SetValue(assist.SampleQuestions[s.sample])
			}
			return s, nil
		case "enter":
			q := strings.TrimSpace(s.input.Value())
			if q == "" || s.waiting != "" {
				return s, nil
			}
			s.input.SetValue("")
			return s, s.ask(q)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func errorText(err error) string {
	var quota *assist.QuotaExceededError
	if errors.As(err, &quota) {
		return assist.QuotaGuidance
	}
	return "Sorry, I could not answer that: " + err.Error()
}

func (s *ChatScreen) View(width, height int) string {
	cw := max(width-4, 20)
	var lines []string

	if len(s.log) == 0 && s.waiting == "" {
		lines = append(lines, theme.Label.Render("Try asking:"))
		for _, q := range assist.SampleQuestions {
			lines = append(lines, theme.Hint.Render("  • "+q))
		}
	}
	for _, e := range s.log {
		lines = append(lines, renderTurn(e, cw)...)
	}
	if s.waiting != "" {
		lines = append(lines, theme.Chosen.Render("You: ")+theme.Body.Render(s.waiting))
		lines = append(lines, theme.Hint.Render("Thinking..."))
	}

	prompt := theme.Label.Render("> ") + s.input.View()
	budget := max(height-lipgloss.Height(prompt)-1, 1)

	transcript := strings.Split(strings.Join(lines, "\n"), "\n")
	if len(transcript) > budget {
		transcript = transcript[len(transcript)-budget:]
	}

	body := lipgloss.NewStyle().
		Height(budget).
		Render(strings.Join(transcript, "\n"))
	return lipgloss.NewStyle().Padding(0, 2).Render(body + "\n" + prompt)
}

func renderTurn(e entry, width int) []string {
	answer := theme.Body
	if e.failed {
		answer = theme.ErrorText
	}
	return []string{
		theme.Chosen.Render("You: ") + layout.Wrap(e.question, width-5),
		answer.Width(width).Render(e.answer),
		"",
	}
}
