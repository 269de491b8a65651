package show

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// Clip is one segment of a show: a pattern name, its parameters and the
// pause between its frames.
type Clip struct {
	Name       string        `yaml:"name,omitempty"`
	Pattern    string        `yaml:"pattern"`
	Color      string        `yaml:"color,omitempty"` // "#rrggbb"
	Brightness int           `yaml:"brightness,omitempty"`
	Reverse    bool          `yaml:"reverse,omitempty"`
	Times      int           `yaml:"times,omitempty"`
	Pace       time.Duration `yaml:"pace,omitempty"`
}

// Program is an ordered list of clips, optionally looping.
type Program struct {
	Name  string `yaml:"name"`
	Loop  bool   `yaml:"loop,omitempty"`
	Clips []Clip `yaml:"clips"`
}

// Demo chases the rainbow ten times and then turns the strip off.
func Demo() Program {
	return Program{
		Name: "demo",
		Clips: []Clip{
			{Name: "rainbow", Pattern: "chaser", Times: 10, Pace: 500 * time.Microsecond},
			{Name: "off", Pattern: "blank"},
		},
	}
}

func ParseProgram(b []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Program{}, err
	}
	return p, nil
}

func LoadProgram(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	return ParseProgram(b)
}

// ParseColor reads "#rrggbb" (the hash is optional). Empty means off.
func ParseColor(s string) (model.ColorWord, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0, nil
	}
	if len(s) != 6 {
		return 0, model.Configf("color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, model.Configf("color %q", s)
	}
	return model.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
