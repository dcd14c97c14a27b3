package icons

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"runtime"

	ico "github.com/sergeymakinen/go-ico"
)

// Format is the byte encoding handed to the tray backend.
type Format int

const (
	FormatPNG Format = iota
	FormatICO
)

func (f Format) String() string {
	switch f {
	case FormatICO:
		return "ico"
	default:
		return "png"
	}
}

// NativeFormat is what the host tray accepts: ICO on Windows, PNG elsewhere.
func NativeFormat() Format {
	if runtime.GOOS == "windows" {
		return FormatICO
	}
	return FormatPNG
}

// Encode serializes img in the requested format.
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatICO:
		if err := ico.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode ico: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown icon format %d", f)
	}
	return buf.Bytes(), nil
}
