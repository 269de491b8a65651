// Package producer is the software side of the pipeline: it pulls frames
// from a generator and feeds them to a channel without ever breaking the
// strip's framing.
package producer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pattern"
)

// MinLatch is the shortest reset gap the strip accepts.
const MinLatch = 50 * time.Microsecond

// Channel is anything words can be streamed into. Put blocks until the
// channel has capacity; Drain blocks until everything put so far is on the
// wire.
type Channel[W any] interface {
	Put(ctx context.Context, w W) error
	Drain(ctx context.Context) error
}

// Sleeper waits out a duration. Hardware targets sleep on the wall clock;
// simulations count sequencer cycles.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// WallSleeper sleeps in real time.
type WallSleeper struct{}

func (WallSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frames streams whole frames of exactly Length words. After the last word
// of a frame it drains the channel and holds the line low for Latch, which
// is the only place frame boundaries exist.
type Frames struct {
	Ch     Channel[model.ColorWord]
	Length int
	// Latch defaults to MinLatch.
	Latch time.Duration
	// Pace is an extra pause after each frame; it only sets animation speed.
	Pace  time.Duration
	Sleep Sleeper
	// Tap sees every frame after it has been latched.
	Tap func(frame []model.ColorWord)

	sent    uint64
	partial bool
}

func (f *Frames) check() error {
	if f.Ch == nil {
		return model.Configf("frame producer has no channel")
	}
	if f.Length <= 0 {
		return model.Configf("strip length %d", f.Length)
	}
	if f.Latch < 0 || (f.Latch > 0 && f.Latch < MinLatch) {
		return model.Configf("latch %s shorter than %s", f.Latch, MinLatch)
	}
	if f.Pace < 0 {
		return model.Configf("frame pace %s", f.Pace)
	}
	return nil
}

func (f *Frames) sleeper() Sleeper {
	if f.Sleep == nil {
		return WallSleeper{}
	}
	return f.Sleep
}

func (f *Frames) latch() time.Duration {
	if f.Latch == 0 {
		return MinLatch
	}
	return f.Latch
}

// Send writes one frame and waits out the latch gap.
func (f *Frames) Send(ctx context.Context, frame []model.ColorWord) error {
	if err := f.check(); err != nil {
		return err
	}
	if len(frame) != f.Length {
		return model.Configf("frame has %d words, strip has %d", len(frame), f.Length)
	}
	s := f.sleeper()
	if f.partial {
		// Latch the leftover words on their own so this frame starts at
		// the first pixel.
		if err := f.flush(ctx, s); err != nil {
			return err
		}
		log.Debug().Msg("flushed interrupted frame")
	}
	f.partial = true
	for _, w := range frame {
		if err := f.Ch.Put(ctx, w); err != nil {
			return err
		}
	}
	if err := f.flush(ctx, s); err != nil {
		return err
	}
	f.sent++
	if f.Tap != nil {
		f.Tap(frame)
	}
	if f.Pace > 0 {
		return s.Sleep(ctx, f.Pace)
	}
	return nil
}

// flush drains the channel and holds the line low for the latch gap. The
// partial mark is only cleared once the gap has been waited out.
func (f *Frames) flush(ctx context.Context, s Sleeper) error {
	if err := f.Ch.Drain(ctx); err != nil {
		return err
	}
	if err := s.Sleep(ctx, f.latch()); err != nil {
		return err
	}
	f.partial = false
	return nil
}

// Stream plays g from its current position to the end and returns how many
// frames went out.
func (f *Frames) Stream(ctx context.Context, g pattern.Generator) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	frame := make([]model.ColorWord, f.Length)
	n := 0
	for g.Step(frame) {
		if err := f.Send(ctx, frame); err != nil {
			return n, err
		}
		n++
	}
	log.Debug().Int("frames", n).Int("length", f.Length).Msg("stream done")
	return n, nil
}

// Blank sends an all-off frame. Do this before disabling the sequencer to
// leave the strip dark.
func (f *Frames) Blank(ctx context.Context) error {
	_, err := f.Stream(ctx, pattern.Blank())
	return err
}

// Sent is the number of frames latched so far.
func (f *Frames) Sent() uint64 { return f.sent }

// Bus feeds single bytes to the parallel encoder. Every word is its own
// transfer; Pace only slows things down enough to watch.
type Bus struct {
	Ch    Channel[model.BusWord]
	Pace  time.Duration
	Sleep Sleeper
}

func (b *Bus) Send(ctx context.Context, words ...model.BusWord) error {
	if b.Ch == nil {
		return model.Configf("bus producer has no channel")
	}
	if b.Pace < 0 {
		return model.Configf("bus pace %s", b.Pace)
	}
	s := b.Sleep
	if s == nil {
		s = WallSleeper{}
	}
	for _, w := range words {
		if err := b.Ch.Put(ctx, w); err != nil {
			return err
		}
		if b.Pace > 0 {
			if err := s.Sleep(ctx, b.Pace); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush waits until every byte has been clocked out.
func (b *Bus) Flush(ctx context.Context) error {
	if b.Ch == nil {
		return model.Configf("bus producer has no channel")
	}
	return b.Ch.Drain(ctx)
}
