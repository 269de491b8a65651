package pio

import (
	"context"
	"sync/atomic"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// DefaultDepth matches the joined TX FIFO of the reference hardware.
const DefaultDepth = 8

// Source is the encoder's view of a channel. TryPull never blocks; an
// encoder that gets nothing stays in its wait state.
type Source[W any] interface {
	TryPull() (W, bool)
}

// FIFO is the bounded queue between a producer and an encoder. Words come
// out strictly in the order they went in.
type FIFO[W any] struct {
	ch     chan W
	pushed atomic.Uint64
	pulled atomic.Uint64
}

func NewFIFO[W any](depth int) (*FIFO[W], error) {
	if depth <= 0 {
		return nil, model.Configf("fifo depth %d", depth)
	}
	return &FIFO[W]{ch: make(chan W, depth)}, nil
}

// Put blocks until there is room for w or ctx is done.
func (f *FIFO[W]) Put(ctx context.Context, w W) error {
	return f.put(ctx, nil, w)
}

func (f *FIFO[W]) put(ctx context.Context, stop <-chan struct{}, w W) error {
	// A stopped consumer must win over free space.
	select {
	case <-stop:
		return ErrDisabled
	default:
	}
	select {
	case f.ch <- w:
		f.pushed.Add(1)
		return nil
	case <-stop:
		return ErrDisabled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPut enqueues w only if there is room.
func (f *FIFO[W]) TryPut(w W) bool {
	select {
	case f.ch <- w:
		f.pushed.Add(1)
		return true
	default:
		return false
	}
}

func (f *FIFO[W]) TryPull() (W, bool) {
	select {
	case w := <-f.ch:
		f.pulled.Add(1)
		return w, true
	default:
		var zero W
		return zero, false
	}
}

// Level is the number of words waiting, the same figure the hardware exposes
// as its TX level.
func (f *FIFO[W]) Level() int { return len(f.ch) }

func (f *FIFO[W]) Depth() int { return cap(f.ch) }

// Stats returns how many words went in and came out so far.
func (f *FIFO[W]) Stats() (pushed, pulled uint64) {
	return f.pushed.Load(), f.pulled.Load()
}
