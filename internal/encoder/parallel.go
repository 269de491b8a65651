package encoder

import (
	"strings"

	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pio"
)

// Variant selects the bus timing.
type Variant int

const (
	// Concurrent raises the clock in the cycle the data lines change.
	Concurrent Variant = iota
	// DataSettled changes the data lines a cycle before the clock rises and
	// holds the clock high for two cycles, a 50% duty cycle when fed.
	DataSettled
)

func (v Variant) String() string {
	if v == DataSettled {
		return "settled"
	}
	return "concurrent"
}

// ParseVariant accepts the names String returns.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "", "concurrent":
		return Concurrent, nil
	case "settled", "data-settled", "delayed":
		return DataSettled, nil
	}
	return Concurrent, model.Configf("unknown bus variant %q", s)
}

// BusState is a step of the parallel program.
type BusState int

const (
	BusWait BusState = iota
	BusDataUpdate
	BusClockHigh
)

func (s BusState) String() string {
	switch s {
	case BusWait:
		return "wait"
	case BusDataUpdate:
		return "data-update"
	case BusClockHigh:
		return "clock-high"
	}
	return "unknown"
}

// ClockPin is the bank index of the clock line; data lines are 0..7.
const ClockPin = model.BusWidth

// Parallel drives eight data lines and a clock from 8-bit words.
type Parallel struct {
	src     pio.Source[model.BusWord]
	variant Variant

	state   BusState
	left    int
	word    model.BusWord
	starved bool
	out     pio.Levels
}

func NewParallel(src pio.Source[model.BusWord], v Variant) *Parallel {
	return &Parallel{src: src, variant: v, state: BusWait, left: 1, starved: true}
}

func (p *Parallel) Width() int { return model.BusWidth + 1 }

func (p *Parallel) State() BusState { return p.state }

func (p *Parallel) Variant() Variant { return p.variant }

// Idle is true once a wait cycle found the channel empty, so the clock is
// already back low.
func (p *Parallel) Idle() bool { return p.state == BusWait && p.starved }

func (p *Parallel) hold(s BusState) int {
	if s == BusClockHigh && p.variant == DataSettled {
		return 2
	}
	return 1
}

func (p *Parallel) enter(s BusState) {
	p.state = s
	p.left = p.hold(s)
}

// drive puts the pending word on the data lines, LSB on line 0.
func (p *Parallel) drive() {
	for i := 0; i < model.BusWidth; i++ {
		p.out = p.out.With(i, gpio.Level(p.word.Bit(i)))
	}
}

func (p *Parallel) Cycle() pio.Levels {
	switch p.state {
	case BusWait:
		p.out = p.out.With(ClockPin, gpio.Low)
		w, ok := p.src.TryPull()
		p.starved = !ok
		if !ok {
			return p.out
		}
		p.word = w
		if p.variant == DataSettled {
			p.enter(BusDataUpdate)
		} else {
			p.enter(BusClockHigh)
		}
	case BusDataUpdate:
		p.drive()
		p.out = p.out.With(ClockPin, gpio.Low)
		p.enter(BusClockHigh)
	case BusClockHigh:
		if p.variant == Concurrent {
			p.drive()
		}
		p.out = p.out.With(ClockPin, gpio.High)
		p.left--
		if p.left <= 0 {
			p.enter(BusWait)
		}
	}
	return p.out
}

func levelOf(b bool) gpio.Level { return gpio.Level(b) }
