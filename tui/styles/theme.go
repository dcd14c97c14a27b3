package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeName is used when the config names no theme or an unknown one.
const DefaultThemeName = "solarized-dark"

// Theme is a Base16 palette. The watch view only reads the roles below:
// 00-02 panel backgrounds, 03-05 text from dim to bright, 08 errors and
// "off", 0A "on", 0B healthy, 0D accents.
type Theme struct {
	Name   string
	Base00 lipgloss.Color
	Base01 lipgloss.Color
	Base02 lipgloss.Color
	Base03 lipgloss.Color
	Base04 lipgloss.Color
	Base05 lipgloss.Color
	Base06 lipgloss.Color
	Base07 lipgloss.Color
	Base08 lipgloss.Color
	Base09 lipgloss.Color
	Base0A lipgloss.Color
	Base0B lipgloss.Color
	Base0C lipgloss.Color
	Base0D lipgloss.Color
	Base0E lipgloss.Color
	Base0F lipgloss.Color
}

// Lookup returns the theme registered under slug.
func Lookup(slug string) (Theme, bool) {
	t, ok := Themes[slug]
	return t, ok
}

// Resolve returns the theme for slug, or the default theme.
func Resolve(slug string) Theme {
	if t, ok := Themes[slug]; ok {
		return t
	}
	return Themes[DefaultThemeName]
}

// Names returns every theme slug, sorted.
func Names() []string {
	names := make([]string, 0, len(Themes))
	for slug := range Themes {
		names = append(names, slug)
	}
	slices.Sort(names)
	return names
}
