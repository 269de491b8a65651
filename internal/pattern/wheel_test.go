package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

func TestColorWheelSegments(t *testing.T) {
	for _, bright := range []int{0, 1, 14, 63, 100, 255} {
		for off := 0; off < WheelSteps; off++ {
			c, err := ColorWheel(off, bright)
			require.NoError(t, err)
			r, g, b := int(c.R()), int(c.G()), int(c.B())
			switch {
			case off < 15:
				assert.Equal(t, bright, r+g, "offset %d", off)
				assert.Zero(t, b, "offset %d", off)
			case off < 30:
				assert.Equal(t, bright, r+b, "offset %d", off)
				assert.Zero(t, g, "offset %d", off)
			default:
				assert.Equal(t, bright, g+b, "offset %d", off)
				assert.Zero(t, r, "offset %d", off)
			}
			assert.Zero(t, uint32(c)&model.PAD_MASK, "padding must be clear")
		}
	}
}

func TestColorWheelBoundaries(t *testing.T) {
	c, err := ColorWheel(15, 63)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), c.B())
	assert.Equal(t, uint8(63), c.R())

	c, err = ColorWheel(30, 63)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), c.G())
	assert.Equal(t, uint8(63), c.B())

	c, err = ColorWheel(14, 63)
	require.NoError(t, err)
	assert.Equal(t, model.RGB(63, 0, 0), c)
}

func TestColorWheelWrapsToGreen(t *testing.T) {
	first, err := ColorWheel(0, 63)
	require.NoError(t, err)
	last, err := ColorWheel(44, 63)
	require.NoError(t, err)
	assert.Equal(t, model.RGB(0, 63, 0), first)
	assert.Equal(t, model.RGB(0, 63, 0), last)
}

func TestColorWheelTruncates(t *testing.T) {
	// 1*63/14 = 4.5 → 4
	c, err := ColorWheel(1, 63)
	require.NoError(t, err)
	assert.Equal(t, model.RGB(4, 59, 0), c)
}

func TestColorWheelRejects(t *testing.T) {
	for _, off := range []int{-1, 45, 100} {
		_, err := ColorWheel(off, 63)
		assert.ErrorIs(t, err, model.ErrConfig, "offset %d", off)
	}
	_, err := ColorWheel(0, 256)
	assert.ErrorIs(t, err, model.ErrConfig)
}
