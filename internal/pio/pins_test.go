package pio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

func TestBankApply(t *testing.T) {
	p0 := &gpiotest.Pin{N: "P0", L: gpio.High}
	p1 := &gpiotest.Pin{N: "P1"}
	b, err := NewBank(p0, p1)
	require.NoError(t, err)
	require.NoError(t, b.Reset())
	assert.Equal(t, gpio.Low, p0.Read())

	require.NoError(t, b.Apply(Levels(0).With(1, gpio.High)))
	assert.Equal(t, gpio.Low, p0.Read())
	assert.Equal(t, gpio.High, p1.Read())
	assert.Equal(t, Levels(2), b.Last())
}

func TestBankRejectsNil(t *testing.T) {
	_, err := NewBank(nil)
	assert.Error(t, err)
	_, err = NewBank()
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	l := Levels(0).With(3, gpio.High).With(8, gpio.High).With(3, gpio.Low)
	assert.Equal(t, Levels(1<<8), l)
	assert.Equal(t, gpio.High, l.Get(8))
}

func TestCyclesIn(t *testing.T) {
	f := 4800 * physic.KiloHertz
	assert.Equal(t, uint64(240), CyclesIn(50*time.Microsecond, f))
	assert.Equal(t, uint64(6), CyclesIn(1250*time.Nanosecond, f))
	assert.Equal(t, uint64(1), CyclesIn(time.Nanosecond, f))
	assert.Equal(t, uint64(0), CyclesIn(0, f))
	assert.Equal(t, uint64(1), CyclesIn(time.Second, 500*physic.MilliHertz))
}

func TestCyclesInLongDurations(t *testing.T) {
	f := 4800 * physic.KiloHertz
	assert.Equal(t, uint64(2*3600*4800000), CyclesIn(2*time.Hour, f))
	assert.Equal(t, uint64(24*3600)*4800000, CyclesIn(24*time.Hour, f))
	assert.Equal(t, uint64(math.MaxInt64/1000*3), CyclesIn(time.Duration(math.MaxInt64/1000*1000), 3*physic.MegaHertz))
}
