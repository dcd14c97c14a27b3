package icons

import (
	"regexp"

	"github.com/tonhe/hometray/internal/rgb"
)

var fillPattern = regexp.MustCompile(`fill="#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})"`)

// Recolor repaints every fill="#rgb" and fill="#rrggbb" attribute in markup
// to c. Other attributes, and fills that are not hex colors, are untouched.
func Recolor(markup []byte, c rgb.Color) []byte {
	return fillPattern.ReplaceAllLiteral(markup, []byte(`fill="`+c.Hex()+`"`))
}
