// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package pixel defines the RGB pixel value produced for each LED and the
// ordered buffer handed to a strip driver.
package pixel

import (
	"fmt"
)

// P is the state of a single RGB pixel.
type P struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

func (p P) String() string { return fmt.Sprintf("(%d, %d, %d)", p.Red, p.Green, p.Blue) }

// Packed returns p as a 0xRRGGBB value.
func (p P) Packed() uint32 { return uint32(p.Red)<<16 | uint32(p.Green)<<8 | uint32(p.Blue) }

// FromPacked returns the pixel encoded in a 0xRRGGBB value.
func FromPacked(v uint32) P {
	return P{Red: uint8(v >> 16), Green: uint8(v >> 8), Blue: uint8(v)}
}
