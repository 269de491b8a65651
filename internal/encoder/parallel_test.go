package encoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pio"
)

func newBusSim(t *testing.T, v Variant, words ...model.BusWord) (*pio.Sim, *Parallel) {
	t.Helper()
	f, err := pio.NewFIFO[model.BusWord](pio.DefaultDepth)
	require.NoError(t, err)
	for _, w := range words {
		require.NoError(t, f.Put(context.Background(), w))
	}
	enc := NewParallel(f, v)
	return &pio.Sim{Enc: enc}, enc
}

func clock(trace []pio.Levels) string {
	b := make([]byte, len(trace))
	for i, l := range trace {
		b[i] = '0'
		if l.Get(ClockPin) {
			b[i] = '1'
		}
	}
	return string(b)
}

func TestParallelLSBFirst(t *testing.T) {
	for _, v := range []Variant{Concurrent, DataSettled} {
		t.Run(v.String(), func(t *testing.T) {
			sim, _ := newBusSim(t, v, 0b10110010)
			trace, err := sim.Run(6)
			require.NoError(t, err)
			last := trace[len(trace)-1]
			want := []gpio.Level{gpio.Low, gpio.High, gpio.Low, gpio.Low, gpio.High, gpio.High, gpio.Low, gpio.High}
			for i, w := range want {
				assert.Equal(t, w, last.Get(i), "line %d", i)
			}
		})
	}
}

func TestParallelConcurrentTiming(t *testing.T) {
	sim, enc := newBusSim(t, Concurrent, 0x01, 0x02, 0x03)
	trace, err := sim.Run(8)
	require.NoError(t, err)
	assert.Equal(t, "01010100", clock(trace))
	// Data changes in the very cycle the clock rises.
	assert.Equal(t, pio.Levels(0x01|1<<ClockPin), trace[1])
	assert.Equal(t, pio.Levels(0x02|1<<ClockPin), trace[3])
	assert.True(t, enc.Idle())
}

func TestParallelSettledTiming(t *testing.T) {
	sim, enc := newBusSim(t, DataSettled, 0xAA, 0x55)
	trace, err := sim.Run(10)
	require.NoError(t, err)
	assert.Equal(t, "0011001100", clock(trace))
	// Data is on the lines one cycle before the rising edge.
	assert.Equal(t, pio.Levels(0xAA), trace[1])
	assert.Equal(t, pio.Levels(0xAA|1<<ClockPin), trace[2])
	assert.Equal(t, pio.Levels(0x55), trace[5])
	assert.True(t, enc.Idle())
}

func TestParallelDutyWhenFed(t *testing.T) {
	words := make([]model.BusWord, pio.DefaultDepth)
	sim, _ := newBusSim(t, DataSettled, words...)
	trace, err := sim.Run(4 * pio.DefaultDepth)
	require.NoError(t, err)
	high := 0
	for _, l := range trace {
		if l.Get(ClockPin) {
			high++
		}
	}
	assert.Equal(t, len(trace)/2, high)
}

func TestParallelClockLowWhileStarved(t *testing.T) {
	sim, enc := newBusSim(t, Concurrent)
	trace, err := sim.Run(20)
	require.NoError(t, err)
	assert.Equal(t, "00000000000000000000", clock(trace))
	assert.Equal(t, BusWait, enc.State())
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("settled")
	require.NoError(t, err)
	assert.Equal(t, DataSettled, v)
	_, err = ParseVariant("sideways")
	assert.ErrorIs(t, err, model.ErrConfig)
}
