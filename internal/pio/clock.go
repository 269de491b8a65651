package pio

import (
	"context"
	"math"
	"math/bits"
	"runtime"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// Clock paces a machine; one Wait is one sequencer cycle.
type Clock interface {
	Wait(ctx context.Context) error
}

// Ticker is a wall-clock Clock. The Go runtime cannot keep up with MHz
// rates, so on a host it degrades to "as fast as the ticker fires".
type Ticker struct {
	t *time.Ticker
}

func NewTicker(f physic.Frequency) (*Ticker, error) {
	if f <= 0 {
		return nil, model.Configf("clock frequency %s", f)
	}
	p := f.Period()
	if p <= 0 {
		p = time.Nanosecond
	}
	return &Ticker{t: time.NewTicker(p)}, nil
}

func (t *Ticker) Wait(ctx context.Context) error {
	select {
	case <-t.t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Ticker) Stop() { t.t.Stop() }

// FreeRun never waits. Simulated time is then measured in cycles only.
type FreeRun struct{}

func (FreeRun) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runtime.Gosched()
	return nil
}

// CyclesIn converts a duration to whole sequencer cycles at f, rounding up.
func CyclesIn(d time.Duration, f physic.Frequency) uint64 {
	if d <= 0 || f <= 0 {
		return 0
	}
	hz := uint64(f / physic.Hertz)
	if hz == 0 {
		return uint64(math.Ceil(d.Seconds() * float64(f) / float64(physic.Hertz)))
	}
	den := uint64(time.Second)
	hi, lo := bits.Mul64(uint64(d), hz)
	lo, carry := bits.Add64(lo, den-1, 0)
	hi += carry
	if hi >= den {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, den)
	return q
}
