package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/cadetcorps/cadet/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
	// Note is shown next to disabled items, e.g. why they are unavailable.
	Note string
}

// Menu is a vertical navigation menu. Disabled items are skipped.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{Items: items, Selected: selected}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}
	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var sb strings.Builder
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			line := "    " + theme.Disabled.Render(item.Label)
			if item.Note != "" {
				line += "  " + theme.Hint.Render(item.Note)
			}
			sb.WriteString(line)
		case i == m.Selected:
			sb.WriteString(theme.Selected.Render("  ▸ " + item.Label))
		default:
			sb.WriteString(theme.Unselected.Render("    " + item.Label))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
