package config

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// HostPins looks names up in the gpio registry. host.Init must have run.
func HostPins(names ...string) ([]gpio.PinOut, error) {
	out := make([]gpio.PinOut, len(names))
	for i, n := range names {
		p := gpioreg.ByName(n)
		if p == nil {
			return nil, fmt.Errorf("pin %q not found", n)
		}
		out[i] = p
	}
	return out, nil
}

// SimPins builds in-memory pins carrying the same names.
func SimPins(names ...string) ([]gpio.PinOut, []*gpiotest.Pin) {
	out := make([]gpio.PinOut, len(names))
	raw := make([]*gpiotest.Pin, len(names))
	for i, n := range names {
		raw[i] = &gpiotest.Pin{N: n, Num: i}
		out[i] = raw[i]
	}
	return out, raw
}
