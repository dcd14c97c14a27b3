package icons

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonhe/hometray/internal/rgb"
)

func TestOKSVGRasterize(t *testing.T) {
	markup := Recolor([]byte(plainSVG), rgb.Color{0, 255, 0})
	img, err := OKSVG{}.Rasterize(markup, 22)
	require.NoError(t, err)
	assert.Equal(t, 22, img.Bounds().Dx())
	assert.Equal(t, 22, img.Bounds().Dy())

	r, g, b, a := img.At(11, 11).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(255), g>>8)
	assert.Equal(t, uint32(0), b>>8)
	assert.Equal(t, uint32(255), a>>8)
}

func TestOKSVGRejectsMalformed(t *testing.T) {
	_, err := OKSVG{}.Rasterize([]byte(`<svg><path d="M0 0"`), 16)
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = OKSVG{}.Rasterize([]byte(`not an icon`), 16)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestOKSVGRejectsBadSize(t *testing.T) {
	_, err := OKSVG{}.Rasterize([]byte(plainSVG), 0)
	assert.Error(t, err)
}

func TestEncodePNG(t *testing.T) {
	img, err := OKSVG{}.Rasterize([]byte(plainSVG), 16)
	require.NoError(t, err)

	data, err := Encode(img, FormatPNG)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, decoded.Bounds().Dx())
}

func TestEncodeICO(t *testing.T) {
	img, err := OKSVG{}.Rasterize([]byte(plainSVG), 16)
	require.NoError(t, err)

	data, err := Encode(img, FormatICO)
	require.NoError(t, err)
	// ICONDIR header: reserved 0, type 1.
	require.GreaterOrEqual(t, len(data), 6)
	assert.Equal(t, []byte{0, 0, 1, 0}, data[:4])
}
