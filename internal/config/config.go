package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

type Pulse struct {
	Pin         string        `yaml:"pin"`  // e.g. GPIO12
	Freq        string        `yaml:"freq"` // e.g. 4.8MHz
	StripLength int           `yaml:"strip_length"`
	FIFODepth   int           `yaml:"fifo_depth"`
	Latch       time.Duration `yaml:"latch"`
	Brightness  int           `yaml:"brightness"`
}

type Parallel struct {
	DataPins  []string      `yaml:"data_pins"` // 8 pins, LSB first
	ClockPin  string        `yaml:"clock_pin"`
	Freq      string        `yaml:"freq"`
	FIFODepth int           `yaml:"fifo_depth"`
	Variant   string        `yaml:"variant"` // "concurrent" | "settled"
	Pace      time.Duration `yaml:"pace"`
}

// SPI configures the nrzled fallback channel.
type SPI struct {
	Dev  string `yaml:"dev"`  // "" picks the first port
	Freq string `yaml:"freq"` // e.g. 2.4MHz
}

type Config struct {
	Driver   string   `yaml:"driver"` // "sim" | "gpio" | "spi" | "console"
	Pulse    Pulse    `yaml:"pulse"`
	Parallel Parallel `yaml:"parallel"`
	SPI      SPI      `yaml:"spi,omitempty"`
	Monitor  string   `yaml:"monitor"` // listen address, empty disables
	Program  string   `yaml:"program"` // show program file
}

// Default mirrors the reference wiring: strip data on GPIO12, bus data on
// GPIO2..9 with the clock on GPIO1.
func Default() *Config {
	return &Config{
		Driver: "sim",
		Pulse: Pulse{
			Pin:         "GPIO12",
			Freq:        "4.8MHz",
			StripLength: 90,
			FIFODepth:   8,
			Latch:       50 * time.Microsecond,
			Brightness:  63,
		},
		Parallel: Parallel{
			DataPins:  []string{"GPIO2", "GPIO3", "GPIO4", "GPIO5", "GPIO6", "GPIO7", "GPIO8", "GPIO9"},
			ClockPin:  "GPIO1",
			Freq:      "2kHz",
			FIFODepth: 8,
			Variant:   "concurrent",
			Pace:      50 * time.Millisecond,
		},
		SPI: SPI{Freq: "2.5MHz"},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ParseFreq turns "4.8MHz" into a frequency; zero or negative values are a
// configuration error.
func ParseFreq(s string) (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(s); err != nil {
		return 0, fmt.Errorf("frequency %q: %v: %w", s, err, model.ErrConfig)
	}
	if f <= 0 {
		return 0, model.Configf("frequency %q must be positive", s)
	}
	return f, nil
}

// Validate checks everything the encoders and producers rely on.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sim", "gpio", "spi", "console":
	default:
		return model.Configf("unknown driver %q", c.Driver)
	}
	if _, err := ParseFreq(c.Pulse.Freq); err != nil {
		return err
	}
	if c.Pulse.StripLength <= 0 {
		return model.Configf("strip_length %d", c.Pulse.StripLength)
	}
	if c.Pulse.FIFODepth <= 0 {
		return model.Configf("pulse fifo_depth %d", c.Pulse.FIFODepth)
	}
	if c.Pulse.Latch <= 0 {
		return model.Configf("latch %s", c.Pulse.Latch)
	}
	if c.Pulse.Brightness < 0 || c.Pulse.Brightness > 255 {
		return model.Configf("brightness %d", c.Pulse.Brightness)
	}
	if c.Driver == "gpio" && c.Pulse.Pin == "" {
		return model.Configf("pulse pin not set")
	}

	if _, err := ParseFreq(c.Parallel.Freq); err != nil {
		return err
	}
	if len(c.Parallel.DataPins) != model.BusWidth {
		return model.Configf("parallel bus needs %d data pins, got %d", model.BusWidth, len(c.Parallel.DataPins))
	}
	if c.Parallel.FIFODepth <= 0 {
		return model.Configf("parallel fifo_depth %d", c.Parallel.FIFODepth)
	}
	if c.Parallel.Pace < 0 {
		return model.Configf("parallel pace %s", c.Parallel.Pace)
	}
	if c.Driver == "spi" {
		if _, err := ParseFreq(c.SPI.Freq); err != nil {
			return err
		}
	}
	return nil
}
