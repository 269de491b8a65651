package pio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/physic"
)

// ErrDisabled is returned by calls that need a running machine.
var ErrDisabled = errors.New("state machine disabled")

// Config is what Start needs besides the encoder.
type Config struct {
	Clock Clock
	// Pins is optional; without it the machine only reports levels to Probe.
	Pins *Bank
	// Probe runs on the machine goroutine after every cycle.
	Probe Probe
	// Freq is the nominal cycle rate, used to convert durations to cycles.
	Freq physic.Frequency
}

// Machine is a running sequencer. It is owned by whoever called Start and
// stops only through Disable or the parent context.
type Machine struct {
	sim  Sim
	freq physic.Frequency

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error

	cycles    atomic.Uint64
	idleStamp atomic.Uint64
}

// Start drives the pins low and launches the free-running sequencer.
func Start(ctx context.Context, enc Encoder, cfg Config) (*Machine, error) {
	if enc == nil {
		return nil, errors.New("nil encoder")
	}
	if cfg.Clock == nil {
		cfg.Clock = FreeRun{}
	}
	if cfg.Pins != nil {
		if cfg.Pins.Len() < enc.Width() {
			return nil, errors.New("not enough pins for encoder")
		}
		if err := cfg.Pins.Reset(); err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Machine{
		sim:    Sim{Enc: enc, Pins: cfg.Pins, Probe: cfg.Probe},
		freq:   cfg.Freq,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go m.run(ctx, cfg.Clock)
	return m, nil
}

func (m *Machine) run(ctx context.Context, clk Clock) {
	defer close(m.done)
	for {
		if err := clk.Wait(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				m.err = err
			}
			return
		}
		if _, err := m.sim.Tick(); err != nil {
			m.err = err
			return
		}
		n := m.cycles.Add(1)
		if m.sim.Enc.Idle() {
			m.idleStamp.Store(n)
		}
	}
}

// Disable stops the sequencer and waits for it. The pins keep whatever the
// last executed cycle drove; blank the outputs first for a clean stop.
func (m *Machine) Disable() error {
	m.once.Do(m.cancel)
	<-m.done
	return m.err
}

func (m *Machine) Done() <-chan struct{} { return m.done }

func (m *Machine) Cycles() uint64 { return m.cycles.Load() }

func (m *Machine) Freq() physic.Frequency { return m.freq }

// idleAfter reports whether the encoder was seen idle after cycle c.
func (m *Machine) idleAfter(c uint64) bool {
	return m.idleStamp.Load() > c
}

// WaitCycles blocks until at least n more cycles have run.
func (m *Machine) WaitCycles(ctx context.Context, n uint64, poll time.Duration) error {
	target := m.Cycles() + n
	return m.pollUntil(ctx, poll, func() bool { return m.Cycles() >= target })
}

func (m *Machine) pollUntil(ctx context.Context, poll time.Duration, cond func() bool) error {
	if poll <= 0 {
		poll = DefaultPoll
	}
	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			if cond() {
				return nil
			}
			return ErrDisabled
		case <-time.After(poll):
		}
	}
	return nil
}
