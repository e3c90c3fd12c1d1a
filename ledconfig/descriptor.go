// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledconfig

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field limits of a Descriptor.
const (
	// MaxCoordinate is the largest valid X or Y grid coordinate.
	MaxCoordinate = 0x0F
	// MaxColor is the largest valid palette index.
	MaxColor = 0x0F
	// MaxParams is the largest valid params value.
	MaxParams = 0x3F
	// MaxStripLength is the maximum number of LEDs in a Table.
	MaxStripLength = 32
)

// Bit layout, three 16-bit words:
//
//	word 0: [15..8] function  [7..4] x  [3..0] y
//	word 1: [15..12] direction (bits 0-3)  [11..8] color  [7..0] overlay
//	word 2: [15..8] reserved  [7..2] params  [1..0] direction (bits 4-5)
const (
	xShift        = 4
	functionShift = 8
	colorShift    = 8
	dirLowShift   = 12
	paramsShift   = 2

	nibbleMask   = 0x0F
	overlayMask  = 0x7F
	dirLowMask   = 0x0F
	dirHighMask  = 0x03
	paramsMask   = 0x3F
	reservedMask = 0xFF00
)

// Descriptor is the packed configuration of a single LED.
//
// The zero value is an unconfigured LED at (0, 0).
type Descriptor struct {
	w [3]uint16
}

// New builds a Descriptor from its fields.
//
// New panics if a field is out of range; use Decode for untrusted input.
func New(x, y int, color uint8, dir Direction, fn Function, ov Overlay, params uint8) Descriptor {
	switch {
	case x < 0 || x > MaxCoordinate, y < 0 || y > MaxCoordinate:
		panic(errors.Errorf("position (%d, %d) out of range", x, y))
	case color > MaxColor:
		panic(errors.Errorf("color %d out of range", color))
	case dir > AllDirections:
		panic(errors.Errorf("direction 0x%02X out of range", uint8(dir)))
	case ov > overlayMask:
		panic(errors.Errorf("overlay 0x%02X out of range", uint8(ov)))
	case params > MaxParams:
		panic(errors.Errorf("params %d out of range", params))
	}

	var d Descriptor
	d.w[0] = uint16(x)<<xShift | uint16(y) | uint16(fn)<<functionShift
	d.w[1] = uint16(ov) | uint16(color)<<colorShift | uint16(dir&dirLowMask)<<dirLowShift
	d.w[2] = uint16(dir>>4)&dirHighMask | uint16(params)<<paramsShift
	return d
}

// FromWords rebuilds a Descriptor from its packed words, as produced by Words.
func FromWords(w [3]uint16) (Descriptor, error) {
	if w[1]&0x80 != 0 || w[2]&reservedMask != 0 {
		return Descriptor{}, errors.Errorf("descriptor words %04X:%04X:%04X have reserved bits set", w[0], w[1], w[2])
	}
	return Descriptor{w: w}, nil
}

// Words returns the packed representation of d.
func (d Descriptor) Words() [3]uint16 { return d.w }

// Position returns the packed (x << 4 | y) grid position.
func (d Descriptor) Position() uint8 { return uint8(d.w[0]) }

// X returns the grid X coordinate.
func (d Descriptor) X() int { return int(d.w[0]>>xShift) & nibbleMask }

// Y returns the grid Y coordinate.
func (d Descriptor) Y() int { return int(d.w[0]) & nibbleMask }

// Function returns the base function mask.
func (d Descriptor) Function() Function { return Function(d.w[0] >> functionShift) }

// Overlay returns the overlay mask.
func (d Descriptor) Overlay() Overlay { return Overlay(d.w[1] & overlayMask) }

// Color returns the palette index.
func (d Descriptor) Color() uint8 { return uint8(d.w[1]>>colorShift) & nibbleMask }

// Direction returns the direction mask.
func (d Descriptor) Direction() Direction {
	return Direction(d.w[1]>>dirLowShift) | Direction(d.w[2]&dirHighMask)<<4
}

// Params returns the 6-bit parameter value.
func (d Descriptor) Params() uint8 { return uint8(d.w[2]>>paramsShift) & paramsMask }

// IsConfigured returns true if d has any function or overlay.
func (d Descriptor) IsConfigured() bool { return d.Function() != 0 || d.Overlay() != 0 }

func (d Descriptor) String() string {
	return fmt.Sprintf("LED{(%d,%d) color=%d dir=%s fn=%s ov=%s params=%d}",
		d.X(), d.Y(), d.Color(), d.Direction(), d.Function(), d.Overlay(), d.Params())
}

// Table is the ordered set of LED descriptors. Index order is wiring order.
type Table [MaxStripLength]Descriptor
