package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette drawn from the NCC flag: red, navy and sky blue, with olive drill
// green for the chrome.
var (
	Primary   = lipgloss.Color("#D62828") // Army red
	Secondary = lipgloss.Color("#4EA8DE") // Air force blue
	Accent    = lipgloss.Color("#F4A261") // Saffron
	Highlight = lipgloss.Color("#FFD166") // Brass
	Success   = lipgloss.Color("#52B788") // Green
	Error     = lipgloss.Color("#EF476F") // Rose
	Text      = lipgloss.Color("#F1F5F9") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0B1D3A") // Navy
	BgCard    = lipgloss.Color("#1B2A41") // Deep slate
	Border    = lipgloss.Color("#556B2F") // Olive drab
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Highlight).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Highlight).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Disabled = lipgloss.NewStyle().
			Foreground(TextDim).
			Strikethrough(true)

	Chosen = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Components
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
