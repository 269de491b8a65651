package led

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/arcaluminis-pio/internal/model"
	"github.com/coreman2200/arcaluminis-pio/internal/pattern"
	"github.com/coreman2200/arcaluminis-pio/internal/producer"
)

// fakePixels captures frames written to it.
type fakePixels struct {
	frames [][]byte
	halted bool
}

func (f *fakePixels) Write(rgb []byte) (int, error) {
	f.frames = append(f.frames, append([]byte(nil), rgb...))
	return len(rgb), nil
}

func (f *fakePixels) Halt() error { f.halted = true; return nil }

func TestChannelFlushesOnDrain(t *testing.T) {
	dev := &fakePixels{}
	c, err := NewChannel(dev, 2)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, model.RGB(1, 2, 3)))
	require.NoError(t, c.Put(ctx, model.RGB(4, 5, 6)))
	assert.Empty(t, dev.frames)
	require.NoError(t, c.Drain(ctx))
	require.Len(t, dev.frames, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, dev.frames[0])

	require.NoError(t, c.Drain(ctx))
	assert.Len(t, dev.frames, 1, "empty drain writes nothing")
	require.NoError(t, c.Close())
	assert.True(t, dev.halted)
}

func TestChannelOverrun(t *testing.T) {
	c, err := NewChannel(&fakePixels{}, 1)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, 1))
	assert.ErrorIs(t, c.Put(ctx, 2), model.ErrConfig)
}

func TestChannelUnderProducer(t *testing.T) {
	dev := &fakePixels{}
	c, err := NewChannel(dev, 5)
	require.NoError(t, err)
	f := &producer.Frames{Ch: c, Length: 5, Sleep: noSleep{}}
	n, err := f.Stream(context.Background(), &pattern.Sweep{Color: model.RGB(9, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, dev.frames, 5)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0, 0}, dev.frames[2])
}

func TestSPIChannel(t *testing.T) {
	buf := bytes.Buffer{}
	c, err := NewSPI(spitest.NewRecordRaw(&buf), 2, 2500*physic.KiloHertz)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, model.RGB(0xff, 0, 0)))
	require.NoError(t, c.Put(ctx, model.RGB(0, 0, 0xff)))
	require.NoError(t, c.Drain(ctx))
	assert.NotZero(t, buf.Len())
}

func TestSPIRejects(t *testing.T) {
	_, err := NewSPI(spitest.NewRecordRaw(&bytes.Buffer{}), 2, 0)
	assert.ErrorIs(t, err, model.ErrConfig)
	_, err = NewChannel(&fakePixels{}, 0)
	assert.ErrorIs(t, err, model.ErrConfig)
}

type noSleep struct{}

func (noSleep) Sleep(context.Context, time.Duration) error { return nil }
