package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

func TestRainbowTiles(t *testing.T) {
	p, err := Rainbow(63, 90)
	require.NoError(t, err)
	require.Len(t, p, 90)
	assert.Equal(t, p[:45], p[45:])

	short, err := Rainbow(63, 10)
	require.NoError(t, err)
	assert.Equal(t, p[:10], short)

	_, err = Rainbow(63, 0)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestRotateFullCycle(t *testing.T) {
	p, err := Wheel(63)
	require.NoError(t, err)
	r := p
	for i := 0; i < len(p); i++ {
		r = r.Rotate(1)
		if i < len(p)-1 {
			assert.NotEqual(t, p, r, "rotation %d", i+1)
		}
	}
	assert.Equal(t, p, r)
	assert.Equal(t, p.Rotate(3), p.Rotate(3+len(p)))
	assert.Equal(t, p.Rotate(-1), p.Rotate(len(p)-1))
}

func TestRotateLeft(t *testing.T) {
	p := Palette{1, 2, 3, 4}
	assert.Equal(t, Palette{2, 3, 4, 1}, p.Rotate(1))
	assert.Equal(t, Palette{1, 2, 3, 4}, p, "rotate must not alter the receiver")
}

func TestBoostArithmetic(t *testing.T) {
	// In range: 63<<2 = 252, then the 0x33 floor OR'ed in.
	assert.Equal(t, model.RGB(0xff, 0x33, 0x33), Boost(model.RGB(63, 0, 0)))
	assert.Equal(t, model.RGB(0x37, 0x3b, 0x33), Boost(model.RGB(1, 2, 0)))
	// Out of range: red 0x80 carries a bit into green, green 0xc0 loses its
	// top bits off the word.
	got := Boost(model.RGB(0x80, 0xc0, 0))
	assert.Equal(t, uint8(0x33), got.R())
	assert.Equal(t, uint8(0x33|0x02), got.G())
}
