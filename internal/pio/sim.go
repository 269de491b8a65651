package pio

// Encoder is a fixed micro-program. Each Cycle executes exactly one
// sequencer cycle and returns the levels of its pins afterwards.
type Encoder interface {
	Cycle() Levels
	// Idle reports the encoder parked in its wait state with nothing left to
	// shift.
	Idle() bool
	// Width is the number of pins the encoder drives.
	Width() int
}

// Probe observes every cycle; cycle counts from 1.
type Probe func(cycle uint64, l Levels)

// Sim advances an encoder one cycle per Tick. It is the test harness clock
// and the core of Machine.
type Sim struct {
	Enc   Encoder
	Pins  *Bank
	Probe Probe

	cycle uint64
}

func (s *Sim) Tick() (Levels, error) {
	l := s.Enc.Cycle()
	s.cycle++
	if s.Pins != nil {
		if err := s.Pins.Apply(l); err != nil {
			return l, err
		}
	}
	if s.Probe != nil {
		s.Probe(s.cycle, l)
	}
	return l, nil
}

// Run ticks n times and returns the trace.
func (s *Sim) Run(n int) ([]Levels, error) {
	out := make([]Levels, 0, n)
	for i := 0; i < n; i++ {
		l, err := s.Tick()
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Cycle is the number of completed cycles.
func (s *Sim) Cycle() uint64 { return s.cycle }
