package model

import (
	"errors"
	"fmt"
)

// ErrConfig marks every rejection made at the API boundary: bad frame
// lengths, out of range wheel offsets, zero periods and the like. Test for it
// with errors.Is.
var ErrConfig = errors.New("configuration error")

// Configf wraps ErrConfig with a formatted reason.
func Configf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConfig)
}

const (
	// WordBits is the width of a word handed to the pulse channel.
	WordBits = 32
	// PayloadBits is how many of those bits are shifted onto the wire,
	// starting from the most significant one. The rest is padding.
	PayloadBits = 24
)

const (
	GREEN_OFFSET uint8 = 0x18
	RED_OFFSET   uint8 = 0x10
	BLUE_OFFSET  uint8 = 0x08
	PAD_MASK     uint32 = 0xFF
)

// ColorWord is one pixel as the pulse encoder consumes it: G, R and B packed
// into the upper 24 bits, low byte unused.
type ColorWord uint32

// RGB packs the three channels in wire order.
func RGB(r, g, b uint8) ColorWord {
	var c ColorWord
	c.SetR(r)
	c.SetG(g)
	c.SetB(b)
	return c
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c *ColorWord) SetR(r uint8) { *c = ColorWord(setcolor(uint32(*c), r, RED_OFFSET)) }
func (c *ColorWord) SetG(g uint8) { *c = ColorWord(setcolor(uint32(*c), g, GREEN_OFFSET)) }
func (c *ColorWord) SetB(b uint8) { *c = ColorWord(setcolor(uint32(*c), b, BLUE_OFFSET)) }

func (c ColorWord) R() uint8 { return getcolor(uint32(c), RED_OFFSET) }
func (c ColorWord) G() uint8 { return getcolor(uint32(c), GREEN_OFFSET) }
func (c ColorWord) B() uint8 { return getcolor(uint32(c), BLUE_OFFSET) }

// Payload returns the word with the padding byte cleared.
func (c ColorWord) Payload() uint32 {
	return uint32(c) &^ PAD_MASK
}

// Serialize appends the pixel in R, G, B byte order, the layout the SPI and
// console channels expect.
func (c ColorWord) Serialize(buf []byte) []byte {
	return append(buf, c.R(), c.G(), c.B())
}

// BusWord is one transfer on the 8-bit parallel bus. Bit 0 goes to the first
// data line.
type BusWord uint8

// BusWidth is the number of data lines.
const BusWidth = 8

// Bit reports line i.
func (b BusWord) Bit(i int) bool {
	return (b>>uint(i))&1 == 1
}
