package components

import (
	"charm.land/lipgloss/v2"

	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// ContentWidth returns the inner width shared by stacked cards so they
// line up, capped at max.
func ContentWidth(frameWidth, limit int) int {
	return min(max(frameWidth-6, 20), limit)
}

// Frame wraps content in a double border centred in width x height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Border).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a rounded border at content width cw.
func Card(title, content string, cw int) string {
	body := content
	if title != "" {
		body = theme.Label.Render(title) + "\n\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Padding(0, 1).
		Render(body)
}

// Selector cycles through a fixed list of options with left/right.
type Selector struct {
	Label   string
	Options []string
	Index   int
}

// Next and Prev wrap around.
func (s *Selector) Next() { s.Index = (s.Index + 1) % len(s.Options) }

func (s *Selector) Prev() { s.Index = (s.Index - 1 + len(s.Options)) % len(s.Options) }

func (s Selector) Value() string { return s.Options[s.Index] }

// Select moves to the option equal to v, if present.
func (s *Selector) Select(v string) {
	for i, o := range s.Options {
		if o == v {
			s.Index = i
			return
		}
	}
}

func (s Selector) View(focused bool) string {
	style := theme.Unselected
	if focused {
		style = theme.Selected
	}
	return style.Render("◂ " + s.Value() + " ▸")
}
