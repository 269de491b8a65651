package pio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// MaxPins is how many outputs one machine can drive.
const MaxPins = 32

// Levels is one cycle's worth of output, bit i for pin i of the bank.
type Levels uint32

func (l Levels) Get(i int) gpio.Level {
	return gpio.Level(l&(1<<uint(i)) != 0)
}

func (l Levels) With(i int, v gpio.Level) Levels {
	if v {
		return l | 1<<uint(i)
	}
	return l &^ (1 << uint(i))
}

// Bank is an ordered group of output pins. Apply only touches pins whose
// level changed since the last call.
type Bank struct {
	pins   []gpio.PinOut
	last   Levels
	primed bool
}

func NewBank(pins ...gpio.PinOut) (*Bank, error) {
	if len(pins) == 0 || len(pins) > MaxPins {
		return nil, fmt.Errorf("bank needs 1..%d pins, got %d", MaxPins, len(pins))
	}
	for i, p := range pins {
		if p == nil {
			return nil, fmt.Errorf("bank pin %d is nil", i)
		}
	}
	return &Bank{pins: pins}, nil
}

func (b *Bank) Len() int { return len(b.pins) }

// Pin returns the i-th pin of the bank.
func (b *Bank) Pin(i int) gpio.PinOut { return b.pins[i] }

// Reset drives every pin low, the init state of all outputs.
func (b *Bank) Reset() error {
	b.primed = false
	return b.Apply(0)
}

func (b *Bank) Apply(l Levels) error {
	for i, p := range b.pins {
		v := l.Get(i)
		if b.primed && b.last.Get(i) == v {
			continue
		}
		if err := p.Out(v); err != nil {
			return fmt.Errorf("pin %s: %w", p.Name(), err)
		}
	}
	b.last = l
	b.primed = true
	return nil
}

// Last is what the bank currently drives.
func (b *Bank) Last() Levels { return b.last }
