// Package pattern generates the words the producers stream: the rainbow
// colour wheel, palettes built from it and finite frame sequences.
package pattern

import (
	"github.com/coreman2200/arcaluminis-pio/internal/model"
)

const (
	// WheelSteps is the number of distinct wheel offsets, 0..WheelSteps-1.
	WheelSteps = 45
	// SegmentSteps is the length of each of the three wheel segments.
	SegmentSteps = 15

	segmentSpan = SegmentSteps - 1
)

// ColorWheel maps an offset on the hue cycle to a colour word. The cycle
// runs green→red (0-14), red→blue (15-29) and blue→green (30-44); inside a
// segment the rising channel is offset*brightness/14, truncated, and the
// falling channel gets the remainder.
func ColorWheel(offset, brightness int) (model.ColorWord, error) {
	if offset < 0 || offset >= WheelSteps {
		return 0, model.Configf("wheel offset %d outside [0,%d]", offset, WheelSteps-1)
	}
	if brightness < 0 || brightness > 0xff {
		return 0, model.Configf("brightness %d outside [0,255]", brightness)
	}
	var r, g, b int
	switch {
	case offset < SegmentSteps:
		r = offset * brightness / segmentSpan
		g = brightness - r
	case offset < 2*SegmentSteps:
		b = (offset - SegmentSteps) * brightness / segmentSpan
		r = brightness - b
	default:
		g = (offset - 2*SegmentSteps) * brightness / segmentSpan
		b = brightness - g
	}
	return model.RGB(uint8(r), uint8(g), uint8(b)), nil
}
