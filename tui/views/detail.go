package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/tui/components"
	"github.com/tonhe/hometray/tui/keys"
	"github.com/tonhe/hometray/tui/styles"
)

// DetailView shows everything known about one entity.
type DetailView struct {
	theme  styles.Theme
	sty    *styles.Styles
	snap   *engine.EntitySnapshot
	width  int
	height int
}

// NewDetailView creates a new DetailView with the given theme.
func NewDetailView(theme styles.Theme) DetailView {
	return DetailView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetSnapshot updates the entity shown.
func (v *DetailView) SetSnapshot(s engine.EntitySnapshot) {
	v.snap = &s
}

// EntityID returns the entity shown, if any.
func (v DetailView) EntityID() string {
	if v.snap == nil {
		return ""
	}
	return v.snap.EntityID
}

// SetSize updates the available dimensions for the view.
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles key messages for the detail view. The third return value
// indicates whether the user wants to go back (Esc pressed).
func (v DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.DefaultKeyMap.Escape) || key.Matches(msg, keys.DefaultKeyMap.Detail) {
			return v, nil, true
		}
	}
	return v, nil, false
}

// View renders the detail panel.
func (v DetailView) View() string {
	if v.snap == nil {
		msg := lipgloss.NewStyle().
			Foreground(v.theme.Base04).
			Render("No entity selected")
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
	}

	s := v.snap
	labelStyle := lipgloss.NewStyle().Foreground(v.theme.Base04).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)
	highlight := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)

	row := func(label, value string) string {
		return fmt.Sprintf("  %s%s", labelStyle.Render(label), value)
	}

	nativeStr := "no"
	if s.Display.NativeColor {
		nativeStr = "yes"
	}
	lastErr := valueStyle.Render("none")
	if s.LastError != nil {
		lastErr = v.sty.StateError.Render(s.LastError.Error())
	}

	stripWidth := v.width - 20
	if stripWidth < 10 {
		stripWidth = 10
	}

	rows := []string{
		"",
		row("Entity:", highlight.Render(s.EntityID)),
		row("Name:", valueStyle.Render(s.Display.Tooltip)),
		row("State:", v.sty.State(s.Display.StateLabel).Render(s.Display.StateLabel)),
		row("Icon id:", valueStyle.Render(s.Display.IconID)),
		row("Icon file:", valueStyle.Render(s.IconPath)),
		row("Color:", components.Swatch(s.Display.Color, 2)+" "+valueStyle.Render(s.Display.Color.Hex())),
		row("Native color:", valueStyle.Render(nativeStr)),
		row("Polls:", valueStyle.Render(fmt.Sprintf("%d (%d failed)", s.PollCount, s.ErrorCount))),
		row("In state for:", valueStyle.Render(formatSince(s.Since))),
		row("Last poll:", valueStyle.Render(formatAgo(s.LastPoll))),
		row("Last error:", lastErr),
		"",
		row("History:", components.StateStrip(s.History, stripWidth, v.theme.Base08)),
		"",
	}

	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	rows = append(rows, lipgloss.NewStyle().Foreground(v.theme.Base04).
		Render(fmt.Sprintf("  %s to go back", keyStyle.Render("[esc]"))))
	return strings.Join(rows, "\n")
}
