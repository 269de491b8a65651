// Package strip simulates a chain of WS2812-style pixels listening to a
// pulse encoder's data pin. It measures each high pulse, turns it back into
// a bit and latches the received words once the line has been low for the
// reset time, the same way the physical strip decides a frame is complete.
package strip

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pio"
)

// DefaultLatch is the minimum low time the strip treats as a reset.
const DefaultLatch = 50 * time.Microsecond

// OneThreshold is the pulse width, in sequencer cycles, from which a pulse
// counts as a 1 bit. A 0 is high for 2 cycles, a 1 for 4.
const OneThreshold = 3

// Report describes what one latch saw.
type Report struct {
	Frame int
	// Pixels is the number of complete words received.
	Pixels int
	// Overflow counts words that ran past the end of the strip.
	Overflow int
	// TrailingBits is a partial word left when the line went quiet.
	TrailingBits int
}

// Short is true when fewer words than pixels arrived before the latch.
func (r Report) Short(length int) bool { return r.Pixels < length }

// Strip decodes the pulse train on pin 0 of the levels it observes.
type Strip struct {
	// OnLatch runs on the observing goroutine with a copy of the frame.
	OnLatch func(frame []model.ColorWord, r Report)

	reset  uint64
	mu     sync.Mutex
	shift  []model.ColorWord
	shown  []model.ColorWord
	frames int

	high     bool
	highRun  int
	lowRun   uint64
	acc      uint32
	bits     int
	pos      int
	overflow int
}

// New builds a strip of length pixels whose reset time is latch at the
// sequencer frequency f.
func New(length int, f physic.Frequency, latch time.Duration) (*Strip, error) {
	if length <= 0 {
		return nil, model.Configf("strip length %d", length)
	}
	n := pio.CyclesIn(latch, f)
	if n == 0 {
		return nil, model.Configf("latch %s at %s", latch, f)
	}
	return &Strip{
		reset: n,
		shift: make([]model.ColorWord, length),
		shown: make([]model.ColorWord, length),
	}, nil
}

func (s *Strip) Len() int { return len(s.shown) }

// ResetCycles is the low run that latches a frame.
func (s *Strip) ResetCycles() uint64 { return s.reset }

// Observe consumes one cycle of levels. It has the pio.Probe signature.
func (s *Strip) Observe(_ uint64, l pio.Levels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.Get(0) {
		if !s.high {
			s.high = true
			s.highRun = 0
		}
		s.highRun++
		s.lowRun = 0
		return
	}
	if s.high {
		s.high = false
		s.push(s.highRun >= OneThreshold)
	}
	s.lowRun++
	if s.lowRun == s.reset {
		s.latch()
	}
}

func (s *Strip) push(one bool) {
	s.acc <<= 1
	if one {
		s.acc |= 1
	}
	s.bits++
	if s.bits < model.PayloadBits {
		return
	}
	if s.pos < len(s.shift) {
		s.shift[s.pos] = model.ColorWord(s.acc << (model.WordBits - model.PayloadBits))
	} else {
		s.overflow++
	}
	s.pos++
	s.acc, s.bits = 0, 0
}

func (s *Strip) latch() {
	if s.pos == 0 && s.bits == 0 {
		return
	}
	n := s.pos
	if n > len(s.shift) {
		n = len(s.shift)
	}
	// Pixels that were not rewritten keep their colour.
	copy(s.shown[:n], s.shift[:n])
	s.frames++
	r := Report{Frame: s.frames, Pixels: n, Overflow: s.overflow, TrailingBits: s.bits}
	s.pos, s.bits, s.acc, s.overflow = 0, 0, 0, 0
	if s.OnLatch != nil {
		s.OnLatch(append([]model.ColorWord(nil), s.shown...), r)
	}
}

// Frame returns a copy of what the strip currently displays.
func (s *Strip) Frame() []model.ColorWord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ColorWord(nil), s.shown...)
}

// Frames is the number of latches so far.
func (s *Strip) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
