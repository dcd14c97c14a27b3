package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/tui/keys"
	"github.com/tonhe/hometray/tui/styles"
)

// helpSection groups the bindings active on one screen.
type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections(km keys.KeyMap) []helpSection {
	return []helpSection{
		{"Entities", []key.Binding{km.Up, km.Down, km.Toggle, km.Refresh, km.Detail, km.Quit}},
		{"Details", []key.Binding{km.Toggle, km.Refresh, km.Escape, km.Detail}},
		{"General", []key.Binding{km.Help}},
	}
}

// HelpView is the keyboard shortcut overlay, built from the active key map.
type HelpView struct {
	theme   styles.Theme
	sty     *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int
	visible bool
}

func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{
		theme: theme,
		sty:   styles.NewStyles(theme),
		keys:  keys.DefaultKeyMap,
	}
}

func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

func (v HelpView) IsVisible() bool {
	return v.visible
}

func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders the overlay centered in the available area.
func (v HelpView) View() string {
	width := min(max(v.width/2, 38), 56)

	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)

	var b strings.Builder
	for i, sec := range helpSections(v.keys) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.sty.Section.Render(sec.title))
		b.WriteString("\n")
		for _, kb := range sec.bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(padRight(h.Key, 12)), descStyle.Render(h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(v.theme.Base04).Render("[?] close"))

	body := v.sty.ModalBorder.Width(width - 6).Render(b.String())
	modal := lipgloss.JoinVertical(lipgloss.Left, v.sty.ModalTitle.Render(" Keyboard Shortcuts "), body)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, modal)
}
