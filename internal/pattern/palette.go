package pattern

import (
	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// Palette is a cyclic run of colours.
type Palette []model.ColorWord

// Wheel returns one of each wheel colour at the given brightness.
func Wheel(brightness int) (Palette, error) {
	p := make(Palette, WheelSteps)
	for i := range p {
		c, err := ColorWheel(i, brightness)
		if err != nil {
			return nil, err
		}
		p[i] = c
	}
	return p, nil
}

// Rainbow repeats the wheel until it covers length positions.
func Rainbow(brightness, length int) (Palette, error) {
	if length <= 0 {
		return nil, model.Configf("palette length %d", length)
	}
	w, err := Wheel(brightness)
	if err != nil {
		return nil, err
	}
	return w.Tile(length), nil
}

// Tile concatenates copies of p, cut to exactly n entries.
func (p Palette) Tile(n int) Palette {
	out := make(Palette, n)
	if len(p) == 0 {
		return out
	}
	for i := range out {
		out[i] = p[i%len(p)]
	}
	return out
}

// Rotate returns p shifted n positions to the left.
func (p Palette) Rotate(n int) Palette {
	l := len(p)
	out := make(Palette, l)
	if l == 0 {
		return out
	}
	n %= l
	if n < 0 {
		n += l
	}
	copy(out, p[n:])
	copy(out[l-n:], p[:n])
	return out
}

// Pedestal is the per-channel floor of boosted colours.
const Pedestal model.ColorWord = 0x33333300

// Boost brightens c the way the overlay sweep does: the word is shifted left
// two bits and the pedestal OR'ed in. There is no clamping: channels above
// 63 carry into the next channel up and the top bits of green fall off the
// word, which shifts the hue of bright palettes.
func Boost(c model.ColorWord) model.ColorWord {
	return c<<2 | Pedestal
}

// Boosted applies Boost to every entry.
func (p Palette) Boosted() Palette {
	out := make(Palette, len(p))
	for i, c := range p {
		out[i] = Boost(c)
	}
	return out
}
