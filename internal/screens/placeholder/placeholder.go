package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cadetcorps/cadet/internal/router"
	"github.com/cadetcorps/cadet/internal/screen"
	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// PlaceholderScreen stands in for a feature that is switched off or cannot
// run, and says why.
type PlaceholderScreen struct {
	title  string
	reason string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a new PlaceholderScreen with the given title and reason.
func New(title, reason string) *PlaceholderScreen {
	return &PlaceholderScreen{title: title, reason: reason}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return p, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	reason := p.reason
	if reason == "" {
		reason = "not available"
	}
	body := theme.Title.Render("╌╌ "+p.title+" unavailable ╌╌") + "\n\n" +
		theme.Body.Render(reason) + "\n\n" +
		theme.Hint.Render("Press Enter to go back")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
