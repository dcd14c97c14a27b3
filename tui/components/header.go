package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/tui/styles"
)

// RenderHeader renders the top bar with the app name, hub URL and how many
// entities are healthy.
func RenderHeader(theme styles.Theme, hubURL string, healthy, total, width int, ver string) string {
	bg := lipgloss.NewStyle().Background(theme.Base01)

	left := lipgloss.NewStyle().
		Foreground(theme.Base0D).
		Background(theme.Base01).
		Bold(true).
		Render("hometray")

	center := lipgloss.NewStyle().
		Foreground(theme.Base05).
		Background(theme.Base01).
		Render(hubURL)

	statusColor := theme.Base0B
	if healthy < total {
		statusColor = theme.Base0A
	}
	if total > 0 && healthy == 0 {
		statusColor = theme.Base08
	}
	right := lipgloss.NewStyle().
		Foreground(statusColor).
		Background(theme.Base01).
		Render(fmt.Sprintf("%d/%d ok", healthy, total))

	versionSeg := lipgloss.NewStyle().
		Foreground(theme.Base04).
		Background(theme.Base01).
		Render("v" + ver)

	sep := bg.Render("  |  ")
	content := bg.Render(" ") + left + sep + center + sep + right + sep + versionSeg + bg.Render(" ")

	return bg.Width(width).Render(content)
}
