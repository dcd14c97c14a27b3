package icons

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrMalformed wraps markup the rasterizer could not parse.
var ErrMalformed = errors.New("malformed svg")

// Rasterizer draws SVG markup into a size x size image.
type Rasterizer interface {
	Rasterize(markup []byte, size int) (image.Image, error)
}

// OKSVG rasterizes with srwiley/oksvg. The icon's viewBox is scaled to fill
// the square target.
type OKSVG struct{}

func (OKSVG) Rasterize(markup []byte, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", size)
	}
	if !bytes.Contains(markup, []byte("<svg")) {
		return nil, fmt.Errorf("%w: no <svg> element", ErrMalformed)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return img, nil
}
