package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/rgb"
)

const (
	stripBlock = '█'
	stripError = '×'
)

// StateStrip renders the newest width samples as one colored cell each,
// right-aligned. Failed polls are drawn as a cross in errColor.
func StateStrip(samples []engine.StateSample, width int, errColor lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(samples)))
	for _, s := range samples {
		if s.Err {
			sb.WriteString(lipgloss.NewStyle().Foreground(errColor).Render(string(stripError)))
			continue
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(Hex(s.Color)).Render(string(stripBlock)))
	}
	return sb.String()
}

// Swatch renders width cells filled with c.
func Swatch(c rgb.Color, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(Hex(c)).Render(strings.Repeat(" ", width))
}

// Hex converts c to a lipgloss color.
func Hex(c rgb.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
