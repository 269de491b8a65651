// Package show plays programs of pattern clips through a frame producer.
package show

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pattern"
	"github.com/coreman2200/arcaluminis-pio/internal/producer"
)

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Hooks are optional callbacks fired from the playing goroutine.
type Hooks struct {
	OnClip func(i int, c Clip)
	OnDone func(frames int)
}

type Player struct {
	// Brightness is used for clips that leave it unset.
	Brightness int

	mu    sync.Mutex
	state State
	idx   int
	reg   *pattern.Registry
	hooks Hooks
	prog  Program
}

// NewPlayer builds a player over reg; a nil reg uses pattern.Default().
func NewPlayer(reg *pattern.Registry, h Hooks) *Player {
	if reg == nil {
		reg = pattern.Default()
	}
	return &Player{reg: reg, hooks: h, Brightness: 63}
}

// Load replaces the current program after checking every clip names a
// known pattern and a valid colour.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return model.Configf("program %q has no clips", prog.Name)
	}
	for i, c := range prog.Clips {
		if _, ok := p.reg.Get(c.Pattern); !ok {
			return model.Configf("clip %d: unknown pattern %q", i, c.Pattern)
		}
		if _, err := ParseColor(c.Color); err != nil {
			return err
		}
		if c.Pace < 0 {
			return model.Configf("clip %d: pace %s", i, c.Pace)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running {
		return errors.New("player is running")
	}
	p.prog = prog
	p.idx = 0
	return nil
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Clip is the index of the clip being played.
func (p *Player) Clip() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}

func (p *Player) params(c Clip, length int) (pattern.Params, error) {
	col, err := ParseColor(c.Color)
	if err != nil {
		return pattern.Params{}, err
	}
	b := c.Brightness
	if b == 0 {
		b = p.Brightness
	}
	return pattern.Params{
		Length:     length,
		Brightness: b,
		Color:      col,
		Reverse:    c.Reverse,
		Times:      c.Times,
	}, nil
}

// Run plays the loaded program through f until it ends or ctx is done. A
// looping program only ends with ctx. The frame pace of each clip replaces
// f.Pace while the clip plays.
func (p *Player) Run(ctx context.Context, f *producer.Frames) (int, error) {
	p.mu.Lock()
	if len(p.prog.Clips) == 0 {
		p.mu.Unlock()
		return 0, model.Configf("no program loaded")
	}
	if p.state == Running {
		p.mu.Unlock()
		return 0, errors.New("player is running")
	}
	p.state = Running
	prog := p.prog
	p.mu.Unlock()

	pace := f.Pace
	defer func() {
		f.Pace = pace
		p.mu.Lock()
		p.state = Idle
		p.mu.Unlock()
	}()

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		for i, c := range prog.Clips {
			p.mu.Lock()
			p.idx = i
			p.mu.Unlock()
			if p.hooks.OnClip != nil {
				p.hooks.OnClip(i, c)
			}
			prm, err := p.params(c, f.Length)
			if err != nil {
				return total, err
			}
			g, err := p.reg.Build(c.Pattern, prm)
			if err != nil {
				return total, err
			}
			f.Pace = c.Pace
			n, err := f.Stream(ctx, g)
			total += n
			if err != nil {
				return total, err
			}
			log.Debug().Str("program", prog.Name).Str("clip", c.Name).Str("pattern", c.Pattern).Int("frames", n).Msg("clip done")
		}
		if !prog.Loop {
			break
		}
	}
	if p.hooks.OnDone != nil {
		p.hooks.OnDone(total)
	}
	return total, nil
}
