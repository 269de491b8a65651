// Package encoder holds the two sequencer micro-programs: the single-wire
// pulse-width protocol for addressable strips and the clocked 8-bit parallel
// bus. Both are explicit state machines advanced one cycle at a time by a
// pio.Machine or a pio.Sim.
package encoder

import (
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pio"
)

// PulseState is a step of the pulse-width program.
type PulseState int

const (
	PulseWait PulseState = iota
	PulseLeadHigh
	PulseData
	PulseTrailLow
)

func (s PulseState) String() string {
	switch s {
	case PulseWait:
		return "wait"
	case PulseLeadHigh:
		return "lead-high"
	case PulseData:
		return "data"
	case PulseTrailLow:
		return "trail-low"
	}
	return "unknown"
}

// Cycles spent in each state for every bit. Wait plus TrailLow form the
// two-cycle low tail of a bit.
var pulseCycles = [...]int{
	PulseWait:     1,
	PulseLeadHigh: 2,
	PulseData:     2,
	PulseTrailLow: 1,
}

const (
	// CyclesPerBit is the length of one bit period in sequencer cycles.
	CyclesPerBit = 6
	// BitRate is the strip's expected bit rate.
	BitRate = 800 * physic.KiloHertz
	// PulseFreq is the sequencer clock giving BitRate.
	PulseFreq = CyclesPerBit * BitRate
)

// Pulse drives one pin: high for a third of the period for a 0 bit, two
// thirds for a 1 bit. Payload bits leave MSB first, PayloadBits per word.
type Pulse struct {
	src pio.Source[model.ColorWord]

	state PulseState
	left  int
	osr   uint32
	count int
	bit   bool
	out   pio.Levels
}

func NewPulse(src pio.Source[model.ColorWord]) *Pulse {
	return &Pulse{src: src, state: PulseWait, left: pulseCycles[PulseWait]}
}

func (p *Pulse) Width() int { return 1 }

func (p *Pulse) State() PulseState { return p.state }

func (p *Pulse) Idle() bool { return p.state == PulseWait && p.count == 0 }

func (p *Pulse) enter(s PulseState) {
	p.state = s
	p.left = pulseCycles[s]
}

// step burns one cycle of the current state and reports whether it is done.
func (p *Pulse) step() bool {
	p.left--
	return p.left <= 0
}

func (p *Pulse) shift() bool {
	b := p.osr>>(model.WordBits-1) == 1
	p.osr <<= 1
	p.count--
	return b
}

func (p *Pulse) Cycle() pio.Levels {
	switch p.state {
	case PulseWait:
		// Autopull: refill the shift register only once it is exhausted,
		// otherwise stall here with the line low.
		if p.count == 0 {
			w, ok := p.src.TryPull()
			if !ok {
				p.out = 0
				return p.out
			}
			p.osr = w.Payload()
			p.count = model.PayloadBits
		}
		p.out = 0
		p.enter(PulseLeadHigh)
	case PulseLeadHigh:
		p.out = p.out.With(0, true)
		if p.step() {
			p.bit = p.shift()
			p.enter(PulseData)
		}
	case PulseData:
		p.out = p.out.With(0, levelOf(p.bit))
		if p.step() {
			p.enter(PulseTrailLow)
		}
	case PulseTrailLow:
		p.out = 0
		if p.step() {
			p.enter(PulseWait)
		}
	}
	return p.out
}
