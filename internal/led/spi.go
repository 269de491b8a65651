package led

import (
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// NewSPI drives count pixels over an already opened SPI port.
func NewSPI(p spi.Port, count int, freq physic.Frequency) (*Channel, error) {
	if freq <= 0 {
		return nil, model.Configf("spi frequency %s", freq)
	}
	if count <= 0 {
		return nil, model.Configf("invalid LED count: %d", count)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, err
	}
	return NewChannel(d, count)
}

// OpenSPI opens the named port ("" for the first one) and drives count
// pixels on it. Call host.Init first.
func OpenSPI(name string, count int, freq physic.Frequency) (*Channel, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, err
	}
	c, err := NewSPI(p, count, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	c.closer = p
	return c, nil
}

// NewConsole previews count pixels on the terminal.
func NewConsole(count int) (*Channel, error) {
	return NewChannel(screen.New(count), count)
}
