package rgb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	assert.Equal(t, "#00ff00", Color{0, 255, 0}.Hex())
	assert.Equal(t, "#fdd51b", Color{253, 213, 27}.Hex())
	assert.Equal(t, "#0a141e", Color{10, 20, 30}.Hex())
}

func TestFromInts(t *testing.T) {
	c, err := FromInts([]int{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, Color{10, 20, 30}, c)

	_, err = FromInts([]int{1, 2})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = FromInts([]int{1, 2, 256})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = FromInts([]int{-1, 2, 3})
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestFromFloats(t *testing.T) {
	c, err := FromFloats([]float64{255, 0, 128})
	require.NoError(t, err)
	assert.Equal(t, Color{255, 0, 128}, c)

	_, err = FromFloats([]float64{1.5, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalid))
}
