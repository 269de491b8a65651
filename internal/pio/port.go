package pio

import (
	"context"
	"time"
)

// DefaultPoll is how often Drain samples the FIFO level.
const DefaultPoll = 20 * time.Microsecond

// Port is the producer's side of a running machine: a FIFO that blocks
// while full and a drain that waits for the wire to go quiet.
type Port[W any] struct {
	FIFO *FIFO[W]
	M    *Machine
	Poll time.Duration
}

func NewPort[W any](f *FIFO[W], m *Machine) *Port[W] {
	return &Port[W]{FIFO: f, M: m, Poll: DefaultPoll}
}

// Put blocks until the FIFO has capacity.
func (p *Port[W]) Put(ctx context.Context, w W) error {
	return p.FIFO.put(ctx, p.M.Done(), w)
}

// Drain blocks until the FIFO is empty and the encoder has shifted out the
// last word it pulled.
func (p *Port[W]) Drain(ctx context.Context) error {
	if err := p.M.pollUntil(ctx, p.Poll, func() bool { return p.FIFO.Level() == 0 }); err != nil {
		return err
	}
	c := p.M.Cycles()
	return p.M.pollUntil(ctx, p.Poll, func() bool { return p.M.idleAfter(c) })
}

// Level reports the FIFO occupancy.
func (p *Port[W]) Level() int { return p.FIFO.Level() }

// CycleSleeper sleeps in machine time: a duration is converted to cycles at
// the machine's nominal frequency and the sleeper returns once that many
// cycles have executed. Against a simulated strip this yields exact gaps.
type CycleSleeper struct {
	M    *Machine
	Poll time.Duration
}

func (s CycleSleeper) Sleep(ctx context.Context, d time.Duration) error {
	n := CyclesIn(d, s.M.Freq())
	if n == 0 {
		return nil
	}
	return s.M.WaitCycles(ctx, n, s.Poll)
}
