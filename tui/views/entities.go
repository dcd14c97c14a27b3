package views

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/tui/components"
	"github.com/tonhe/hometray/tui/keys"
	"github.com/tonhe/hometray/tui/styles"
)

// Column width constants (minimum widths).
const (
	colSwatch   = 4
	colEntity   = 28
	colState    = 13
	colIcon     = 24
	colLastPoll = 10
	colErrors   = 8
	colStripMin = 10
)

// EntitiesView is the main table: one row per watched entity.
type EntitiesView struct {
	theme  styles.Theme
	sty    *styles.Styles
	rows   []engine.EntitySnapshot
	cursor int
	width  int
	height int
	offset int // scroll offset for vertical scrolling
}

// NewEntitiesView creates a new EntitiesView with the given theme.
func NewEntitiesView(theme styles.Theme) EntitiesView {
	return EntitiesView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// Update handles cursor navigation.
func (v EntitiesView) Update(msg tea.Msg) (EntitiesView, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.cursor > 0 {
				v.cursor--
				v.ensureVisible()
			}
		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.cursor < len(v.rows)-1 {
				v.cursor++
				v.ensureVisible()
			}
		}
	}
	return v, nil
}

// SetSnapshots replaces the table rows and clamps the cursor.
func (v *EntitiesView) SetSnapshots(rows []engine.EntitySnapshot) {
	v.rows = rows
	if v.cursor >= len(rows) && len(rows) > 0 {
		v.cursor = len(rows) - 1
	}
	v.ensureVisible()
}

// Selected returns the entity under the cursor.
func (v EntitiesView) Selected() (engine.EntitySnapshot, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return engine.EntitySnapshot{}, false
	}
	return v.rows[v.cursor], true
}

// SetSize updates the available dimensions for the view.
func (v *EntitiesView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.ensureVisible()
}

// View renders the table.
func (v EntitiesView) View() string {
	if len(v.rows) == 0 {
		return v.renderEmpty()
	}
	return v.renderTable()
}

// ensureVisible adjusts the scroll offset so the cursor row is visible.
func (v *EntitiesView) ensureVisible() {
	visible := v.height - 1 // header row
	if visible < 1 {
		visible = 1
	}
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
}

// stripWidth gives the history strip all remaining width.
func (v EntitiesView) stripWidth() int {
	fixed := colSwatch + colEntity + colState + colIcon + colLastPoll + colErrors
	w := v.width - fixed
	if w < colStripMin {
		w = colStripMin
	}
	return w
}

func (v EntitiesView) renderTable() string {
	wStrip := v.stripWidth()
	h := v.sty.TableHeader

	lines := []string{
		h.Render(padRight("", colSwatch)) +
			h.Render(padRight("Entity", colEntity)) +
			h.Render(padRight("State", colState)) +
			h.Render(padRight("Icon", colIcon)) +
			h.Render(padRight("Polled", colLastPoll)) +
			h.Render(padLeft("Errors", colErrors-1)) + " " +
			h.Render(padRight("History", wStrip)),
	}

	visible := v.height - 1
	if visible < 1 {
		visible = 1
	}
	end := v.offset + visible
	if end > len(v.rows) {
		end = len(v.rows)
	}
	for i := v.offset; i < end; i++ {
		lines = append(lines, v.renderRow(v.rows[i], wStrip, i == v.cursor))
	}
	return strings.Join(lines, "\n")
}

func (v EntitiesView) renderRow(s engine.EntitySnapshot, wStrip int, selected bool) string {
	rowStyle := v.sty.TableRow
	if selected {
		rowStyle = v.sty.TableRowSel
	}
	withBg := func(st lipgloss.Style) lipgloss.Style {
		if selected {
			return st.Background(v.theme.Base02)
		}
		return st
	}

	swatch := rowStyle.Render(" ") + components.Swatch(s.Display.Color, 2) + rowStyle.Render(" ")
	if !s.HasDisplay {
		swatch = rowStyle.Render(padRight("", colSwatch))
	}

	name := s.EntityID
	if s.Display.Tooltip != "" && s.Display.Tooltip != s.EntityID {
		name = s.Display.Tooltip
	}
	entity := rowStyle.Render(padRight(truncate(name, colEntity-1), colEntity))

	label := "-"
	if s.HasDisplay {
		label = s.Display.StateLabel
	}
	stateStyle := v.sty.State(label)
	if s.LastError != nil {
		stateStyle = v.sty.StateError
		label += "!"
	}
	state := withBg(stateStyle).Render(padRight(truncate(label, colState-1), colState))

	icon := rowStyle.Render(padRight(truncate(filepath.Base(s.IconPath), colIcon-1), colIcon))
	if s.IconPath == "" {
		icon = withBg(v.sty.TableCellDim).Render(padRight("-", colIcon))
	}

	polled := withBg(v.sty.TableCellDim).Render(padRight(formatAgo(s.LastPoll), colLastPoll))

	errStyle := v.sty.TableCellDim
	if s.ErrorCount > 0 {
		errStyle = v.sty.StateError
	}
	errs := withBg(errStyle).Render(padLeft(fmt.Sprintf("%d", s.ErrorCount), colErrors-1)) + rowStyle.Render(" ")

	strip := components.StateStrip(s.History, wStrip, v.theme.Base08)

	return swatch + entity + state + icon + polled + errs + strip
}

// renderEmpty renders a centered message when nothing is watched.
func (v EntitiesView) renderEmpty() string {
	msgStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center)
	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	msg := lipgloss.JoinVertical(lipgloss.Center,
		"",
		msgStyle.Render("No entities configured"),
		"",
		msgStyle.Render(fmt.Sprintf("Run %s or edit the config file", keyStyle.Render("hometray setup"))),
		"",
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
}

func formatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t).Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return t.Format("15:04")
	}
}

// formatSince renders a duration since t, e.g. "3m12s".
func formatSince(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return time.Since(t).Truncate(time.Second).String()
}

// padRight pads s with spaces on the right to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads s with spaces on the left to the given width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// truncate shortens s to maxLen characters, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
