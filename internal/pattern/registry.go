package pattern

import (
	"sort"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// Params carries everything a generator may be built from.
type Params struct {
	Length     int
	Brightness int
	Color      model.ColorWord
	Reverse    bool
	Times      int
}

func (p Params) times() int {
	if p.Times <= 0 {
		return 1
	}
	return p.Times
}

// Factory builds a fresh generator.
type Factory func(p Params) (Generator, error)

type Registry struct{ m map[string]Factory }

func NewRegistry() *Registry { return &Registry{m: map[string]Factory{}} }

func (r *Registry) Register(name string, f Factory) {
	if f == nil {
		return
	}
	r.m[name] = f
}

func (r *Registry) Get(name string) (Factory, bool) { f, ok := r.m[name]; return f, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build looks name up and constructs it.
func (r *Registry) Build(name string, p Params) (Generator, error) {
	f, ok := r.m[name]
	if !ok {
		return nil, model.Configf("unknown pattern %q", name)
	}
	return f(p)
}

// Default registers the built-in generators.
func Default() *Registry {
	r := NewRegistry()
	r.Register("sweep", func(p Params) (Generator, error) {
		return &Sweep{Color: p.Color, Reverse: p.Reverse}, nil
	})
	r.Register("chasers", func(p Params) (Generator, error) {
		cols := ChaserColors
		if p.Color != 0 {
			cols = []model.ColorWord{p.Color}
		}
		return BackAndForth(cols...), nil
	})
	r.Register("rotation", func(p Params) (Generator, error) {
		pal, err := Rainbow(p.Brightness, p.Length)
		if err != nil {
			return nil, err
		}
		return &Rotation{Palette: pal, Times: p.times()}, nil
	})
	r.Register("chaser", func(p Params) (Generator, error) {
		pal, err := Rainbow(p.Brightness, p.Length)
		if err != nil {
			return nil, err
		}
		return &Chaser{Palette: pal, Times: p.times()}, nil
	})
	r.Register("overlay", func(p Params) (Generator, error) {
		pal, err := Rainbow(p.Brightness, p.Length)
		if err != nil {
			return nil, err
		}
		return &Overlay{Palette: pal, Times: p.times()}, nil
	})
	r.Register("solid", func(p Params) (Generator, error) {
		return &Solid{Color: p.Color, Count: p.times()}, nil
	})
	r.Register("blank", func(Params) (Generator, error) {
		return Blank(), nil
	})
	return r
}
