package pattern

import (
	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// Generator is a finite, restartable sequence of frames.
type Generator interface {
	// Step writes the next frame into frame and reports false once the
	// sequence is exhausted, leaving frame untouched.
	Step(frame []model.ColorWord) bool
	// Reset rewinds to the first frame.
	Reset()
}

func fill(frame []model.ColorWord, c model.ColorWord) {
	for i := range frame {
		frame[i] = c
	}
}

// bounce maps step n of a back-and-forth run over length positions.
func bounce(n, length int) int {
	if n < length {
		return n
	}
	return 2*length - 1 - n
}

// Sweep lights one position per frame, all others off, from the first
// position to the last or the other way round.
type Sweep struct {
	Color   model.ColorWord
	Reverse bool

	step int
}

func (s *Sweep) Step(frame []model.ColorWord) bool {
	n := len(frame)
	if s.step >= n {
		return false
	}
	on := s.step
	if s.Reverse {
		on = n - 1 - s.step
	}
	fill(frame, 0)
	frame[on] = s.Color
	s.step++
	return true
}

func (s *Sweep) Reset() { s.step = 0 }

// Rotation shows the palette and moves it one position left every frame.
// It runs length*Times frames.
type Rotation struct {
	Palette Palette
	Times   int

	step int
}

func (r *Rotation) Step(frame []model.ColorWord) bool {
	if len(r.Palette) == 0 || r.step >= len(frame)*r.Times {
		return false
	}
	l := len(r.Palette)
	for i := range frame {
		frame[i] = r.Palette[(i+r.step)%l]
	}
	r.step++
	return true
}

func (r *Rotation) Reset() { r.step = 0 }

// Chaser lights a single position with the palette colour of that position,
// sweeping to the end and back, Times round trips.
type Chaser struct {
	Palette Palette
	Times   int

	step int
}

func (c *Chaser) Step(frame []model.ColorWord) bool {
	n := len(frame)
	if len(c.Palette) == 0 || c.step >= 2*n*c.Times {
		return false
	}
	on := bounce(c.step%(2*n), n)
	fill(frame, 0)
	frame[on] = c.Palette[on%len(c.Palette)]
	c.step++
	return true
}

func (c *Chaser) Reset() { c.step = 0 }

// Overlay keeps every position lit with the dim palette and boosts one
// moving position, sweeping to the end and back, Times round trips. A new
// Palette takes effect after Reset.
type Overlay struct {
	Palette Palette
	Times   int

	bright Palette
	step   int
}

func (o *Overlay) Step(frame []model.ColorWord) bool {
	n := len(frame)
	if len(o.Palette) == 0 || o.step >= 2*n*o.Times {
		return false
	}
	if len(o.bright) != len(o.Palette) {
		o.bright = o.Palette.Boosted()
	}
	on := bounce(o.step%(2*n), n)
	l := len(o.Palette)
	for j := range frame {
		if j == on {
			frame[j] = o.bright[j%l]
		} else {
			frame[j] = o.Palette[j%l]
		}
	}
	o.step++
	return true
}

func (o *Overlay) Reset() { o.step, o.bright = 0, nil }

// Solid repeats one colour for Count frames.
type Solid struct {
	Color model.ColorWord
	Count int

	step int
}

func (s *Solid) Step(frame []model.ColorWord) bool {
	if s.step >= s.Count {
		return false
	}
	fill(frame, s.Color)
	s.step++
	return true
}

func (s *Solid) Reset() { s.step = 0 }

// Blank is a single all-off frame.
func Blank() Generator { return &Solid{Count: 1} }

// Chain plays generators one after another.
type Chain struct {
	Parts []Generator

	cur int
}

func (c *Chain) Step(frame []model.ColorWord) bool {
	for c.cur < len(c.Parts) {
		if c.Parts[c.cur].Step(frame) {
			return true
		}
		c.cur++
	}
	return false
}

func (c *Chain) Reset() {
	for _, p := range c.Parts {
		p.Reset()
	}
	c.cur = 0
}

// ChaserColors are the seven colours of the back-and-forth chase.
var ChaserColors = []model.ColorWord{
	0x003f0000, 0x3f3f0000, 0x3f000000, 0x3f003f00, 0x00003f00, 0x003f3f00, 0x3f3f3f00,
}

// BackAndForth sweeps each colour forward then in reverse.
func BackAndForth(colors ...model.ColorWord) *Chain {
	c := &Chain{}
	for _, col := range colors {
		c.Parts = append(c.Parts, &Sweep{Color: col}, &Sweep{Color: col, Reverse: true})
	}
	return c
}

// Ramp is every bus value from 0 to 255, in order.
func Ramp() []model.BusWord {
	out := make([]model.BusWord, 256)
	for i := range out {
		out[i] = model.BusWord(i)
	}
	return out
}
