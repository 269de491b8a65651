package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	f, err := ParseFreq(c.Pulse.Freq)
	require.NoError(t, err)
	assert.Equal(t, 4800*physic.KiloHertz, f)
	assert.Equal(t, 90, c.Pulse.StripLength)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: gpio
pulse:
  strip_length: 30
  latch: 80us
parallel:
  variant: settled
`), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpio", c.Driver)
	assert.Equal(t, 30, c.Pulse.StripLength)
	assert.Equal(t, 80*time.Microsecond, c.Pulse.Latch)
	assert.Equal(t, "GPIO12", c.Pulse.Pin, "unset keys keep defaults")
	assert.Equal(t, "settled", c.Parallel.Variant)
	require.NoError(t, c.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Pulse.StripLength = 12
	require.NoError(t, Save(path, c))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero freq":      func(c *Config) { c.Pulse.Freq = "0Hz" },
		"negative freq":  func(c *Config) { c.Parallel.Freq = "-2kHz" },
		"garbage freq":   func(c *Config) { c.Pulse.Freq = "fast" },
		"zero length":    func(c *Config) { c.Pulse.StripLength = 0 },
		"zero depth":     func(c *Config) { c.Pulse.FIFODepth = 0 },
		"zero latch":     func(c *Config) { c.Pulse.Latch = 0 },
		"seven pins":     func(c *Config) { c.Parallel.DataPins = c.Parallel.DataPins[:7] },
		"bright":         func(c *Config) { c.Pulse.Brightness = 256 },
		"driver":         func(c *Config) { c.Driver = "dma" },
		"negative pace":  func(c *Config) { c.Parallel.Pace = -time.Millisecond },
		"bus depth":      func(c *Config) { c.Parallel.FIFODepth = -1 },
		"gpio needs pin": func(c *Config) { c.Driver = "gpio"; c.Pulse.Pin = "" },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mut(c)
			assert.ErrorIs(t, c.Validate(), model.ErrConfig)
		})
	}
}

func TestSimPins(t *testing.T) {
	c := Default()
	pins, raw := SimPins(append(c.Parallel.DataPins, c.Parallel.ClockPin)...)
	require.Len(t, pins, 9)
	assert.Equal(t, "GPIO2", pins[0].Name())
	assert.Equal(t, "GPIO1", raw[8].Name())

	_, err := HostPins("NO_SUCH_PIN_XYZ")
	assert.Error(t, err)
}
