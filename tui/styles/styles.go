package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds the themed lipgloss styles of the watch view.
type Styles struct {
	// Header / Footer
	Header     lipgloss.Style
	HeaderApp  lipgloss.Style
	Footer     lipgloss.Style
	FooterKey  lipgloss.Style
	FooterDesc lipgloss.Style

	// Table
	TableHeader  lipgloss.Style
	TableRow     lipgloss.Style
	TableRowSel  lipgloss.Style
	TableCellDim lipgloss.Style

	// Entity state
	StateOn      lipgloss.Style
	StateOff     lipgloss.Style
	StateUnknown lipgloss.Style
	StateError   lipgloss.Style

	// Modal / overlay
	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style
	Section     lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(theme Theme) *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base01),
		HeaderApp: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Base04).
			Background(theme.Base01),
		FooterKey: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01).
			Bold(true),
		FooterDesc: lipgloss.NewStyle().
			Foreground(theme.Base04).
			Background(theme.Base01),

		TableHeader: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		TableRow: lipgloss.NewStyle().
			Foreground(theme.Base05),
		TableRowSel: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base02),
		TableCellDim: lipgloss.NewStyle().
			Foreground(theme.Base03),

		StateOn: lipgloss.NewStyle().
			Foreground(theme.Base0B),
		StateOff: lipgloss.NewStyle().
			Foreground(theme.Base04),
		StateUnknown: lipgloss.NewStyle().
			Foreground(theme.Base0A),
		StateError: lipgloss.NewStyle().
			Foreground(theme.Base08),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		Section: lipgloss.NewStyle().
			Foreground(theme.Base0E).
			Bold(true),
	}
}

// State picks the style for an entity state label.
func (s *Styles) State(label string) lipgloss.Style {
	switch label {
	case "on":
		return s.StateOn
	case "off":
		return s.StateOff
	default:
		return s.StateUnknown
	}
}
