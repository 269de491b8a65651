// Package led holds frame channels for hosts without a pulse sequencer:
// the strip is driven through an SPI port with NRZ encoding, or previewed
// on the terminal.
package led

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

// Pixels abstracts an LED output sink taking packed R, G, B bytes.
type Pixels interface {
	Write(rgb []byte) (int, error)
	Halt() error
}

// Channel buffers the words of one frame and hands them to the sink on
// Drain, so the frame producer can run unchanged on top of it. The sink
// owns the latch timing.
type Channel struct {
	mu     sync.Mutex
	dev    Pixels
	count  int
	buf    []byte
	closer io.Closer
}

func NewChannel(dev Pixels, count int) (*Channel, error) {
	if count <= 0 {
		return nil, model.Configf("invalid LED count: %d", count)
	}
	return &Channel{dev: dev, count: count, buf: make([]byte, 0, count*3)}, nil
}

func (c *Channel) Put(ctx context.Context, w model.ColorWord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) >= c.count*3 {
		return model.Configf("more than %d words before drain", c.count)
	}
	c.buf = w.Serialize(c.buf)
	return nil
}

// Drain writes the buffered frame.
func (c *Channel) Drain(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) == 0 {
		return nil
	}
	_, err := c.dev.Write(c.buf)
	c.buf = c.buf[:0]
	if err != nil {
		return fmt.Errorf("led write: %w", err)
	}
	return nil
}

// Close halts the sink and releases the port it was opened on.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.dev.Halt()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
		c.closer = nil
	}
	return err
}
