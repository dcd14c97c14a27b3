// Package rgb holds the 8-bit color triple shared by the hub client, the icon
// renderer and the configuration.
package rgb

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is returned when a value cannot be read as an 8-bit RGB triple.
var ErrInvalid = errors.New("invalid rgb color")

// Color is an ordered (red, green, blue) triple. Equality is exact.
type Color [3]uint8

// Hex returns the color as #rrggbb in lower-case.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// Ints returns the channels as plain ints, the shape the hub expects in
// service calls.
func (c Color) Ints() []int {
	return []int{int(c[0]), int(c[1]), int(c[2])}
}

// FromInts builds a Color from exactly three values in 0-255.
func FromInts(v []int) (Color, error) {
	if len(v) != 3 {
		return Color{}, fmt.Errorf("%w: want 3 channels, got %d", ErrInvalid, len(v))
	}
	var c Color
	for i, n := range v {
		if n < 0 || n > 255 {
			return Color{}, fmt.Errorf("%w: channel %d out of range: %d", ErrInvalid, i, n)
		}
		c[i] = uint8(n)
	}
	return c, nil
}

// FromFloats builds a Color from decoded JSON numbers. Fractional values are
// rejected rather than rounded.
func FromFloats(v []float64) (Color, error) {
	ints := make([]int, len(v))
	for i, f := range v {
		if f != math.Trunc(f) {
			return Color{}, fmt.Errorf("%w: channel %d is not an integer: %v", ErrInvalid, i, f)
		}
		ints[i] = int(f)
	}
	return FromInts(ints)
}
