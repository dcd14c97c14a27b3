package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/tui/styles"
)

// RenderStatusBar renders the two-line footer: poll info plus the last
// action message, then the key bindings.
func RenderStatusBar(theme styles.Theme, interval time.Duration, lastPoll time.Time, message string, isErr bool, width int) string {
	bg := theme.Base01
	bgStyle := lipgloss.NewStyle().Background(bg)
	sep := lipgloss.NewStyle().Foreground(theme.Base03).Background(bg).Render(" | ")

	pollSeg := lipgloss.NewStyle().Foreground(theme.Base05).Background(bg).Render(fmt.Sprintf("every %s", interval))
	lastStr := "never"
	if !lastPoll.IsZero() {
		lastStr = lastPoll.Format("15:04:05")
	}
	lastSeg := lipgloss.NewStyle().Foreground(theme.Base05).Background(bg).Render(fmt.Sprintf("last: %s", lastStr))

	top := bgStyle.Render(" ") + pollSeg + sep + lastSeg
	if message != "" {
		msgColor := theme.Base0B
		if isErr {
			msgColor = theme.Base08
		}
		top += sep + lipgloss.NewStyle().Foreground(msgColor).Background(bg).Render(message)
	}
	top = fill(bgStyle, top, width)

	keyStyle := lipgloss.NewStyle().Foreground(theme.Base0D).Background(bg).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.Base04).Background(bg)
	spacer := bgStyle.Render("  ")

	keys := bgStyle.Render(" ") +
		keyStyle.Render("t") + descStyle.Render(":toggle") + spacer +
		keyStyle.Render("r") + descStyle.Render(":refresh") + spacer +
		keyStyle.Render("i") + descStyle.Render(":details") + spacer +
		keyStyle.Render("?") + descStyle.Render(":help") + spacer +
		keyStyle.Render("q") + descStyle.Render(":quit")
	keys = fill(bgStyle, keys, width)

	return lipgloss.JoinVertical(lipgloss.Left, top, keys)
}

func fill(bg lipgloss.Style, s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		s += bg.Render(strings.Repeat(" ", width-w))
	}
	return s
}
