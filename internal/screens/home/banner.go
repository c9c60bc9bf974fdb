package home

import (
	"charm.land/lipgloss/v2"

	"github.com/cadetcorps/cadet/internal/ui/theme"
)

const bannerArt = `  ██████╗ █████╗ ██████╗ ███████╗████████╗
 ██╔════╝██╔══██╗██╔══██╗██╔════╝╚══██╔══╝
 ██║     ███████║██║  ██║█████╗     ██║
 ██║     ██╔══██║██║  ██║██╔══╝     ██║
 ╚██████╗██║  ██║██████╔╝███████╗   ██║
  ╚═════╝╚═╝  ╚═╝╚═════╝ ╚══════╝   ╚═╝`

const bannerCompact = "C · A · D · E · T"

// renderBanner returns the title block, or a one-line fallback when the
// screen is compact.
func renderBanner(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	art := bannerArt
	if compact || cw < 44 {
		art = bannerCompact
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(art)) +
		"\n" + theme.Subtitle.Width(cw).Render("NCC study companion · Unity and Discipline")
}
