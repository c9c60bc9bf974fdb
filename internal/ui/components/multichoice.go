package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/cadetcorps/cadet/internal/quiz"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// MultiChoice shows one quiz question with its lettered options. While
// Reveal is false it only marks the chosen letter; once revealed it colours
// the correct and the wrong choice.
type MultiChoice struct {
	Question quiz.Question
	Letters  []string
	Cursor   int
	Chosen   string
	Reveal   bool
}

// NewMultiChoice creates a selector for q with the cursor on chosen, if any.
func NewMultiChoice(q quiz.Question, chosen string) MultiChoice {
	m := MultiChoice{Question: q, Letters: q.Keys(), Chosen: chosen}
	for i, l := range m.Letters {
		if l == chosen {
			m.Cursor = i
		}
	}
	return m
}

// PickedMsg is returned when the cadet chooses an option.
type PickedMsg struct {
	Letter string
}

// Update moves the cursor and emits PickedMsg on enter or a letter key.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.Reveal {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.Letters)-1 {
			m.Cursor++
		}
		return m, nil
	case "enter", "space":
		if len(m.Letters) == 0 {
			return m, nil
		}
		return m.pick(m.Letters[m.Cursor])
	}

	letter := strings.ToUpper(key)
	if n := len(key); n == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(m.Letters) {
			letter = m.Letters[i]
		}
	}
	for i, l := range m.Letters {
		if l == letter {
			m.Cursor = i
			return m.pick(l)
		}
	}
	return m, nil
}

func (m MultiChoice) pick(letter string) (MultiChoice, tea.Cmd) {
	m.Chosen = letter
	return m, func() tea.Msg { return PickedMsg{Letter: letter} }
}

// View renders the question and its options wrapped to width.
func (m MultiChoice) View(width int) string {
	var sb strings.Builder
	sb.WriteString(theme.Body.Bold(true).Width(max(width, 20)).Render(m.Question.Text))
	sb.WriteString("\n\n")

	for i, l := range m.Letters {
		prefix := "  "
		if i == m.Cursor && !m.Reveal {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, l, m.Question.Options[l])

		style := theme.Unselected
		switch {
		case m.Reveal && l == m.Question.Answer:
			style = theme.Correct
		case m.Reveal && l == m.Chosen:
			style = theme.Incorrect
		case m.Reveal:
			style = theme.Hint
		case l == m.Chosen:
			style = theme.Chosen
		case i == m.Cursor:
			style = theme.Selected
		}
		if l == m.Chosen {
			line += "  ✓"
		}
		sb.WriteString(style.Render(line) + "\n")
	}
	return sb.String()
}
