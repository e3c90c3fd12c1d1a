// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danjacques/goledstrip/pixel"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

const (
	// MaxHue is the largest valid hue value.
	MaxHue = 359
	// MaxSaturation is the largest valid saturation value.
	MaxSaturation = 255
	// MaxValue is the largest valid value (brightness) value.
	MaxValue = 255
)

// HSV is a hue/saturation/value color.
//
// H is in degrees [0, 359]. S and V are in [0, 255]; an S of 255 is a fully
// saturated color, and an S of 0 is white (or gray) at brightness V.
type HSV struct {
	H uint16
	S uint8
	V uint8
}

func (c HSV) String() string { return fmt.Sprintf("%d,%d,%d", c.H, c.S, c.V) }

// RGB converts c into an RGB pixel.
func (c HSV) RGB() pixel.P {
	if c.V == 0 {
		return pixel.P{}
	}

	cc := colorful.Hsv(float64(c.H%(MaxHue+1)), float64(c.S)/MaxSaturation, float64(c.V)/MaxValue)
	r, g, b := cc.Clamped().RGB255()
	return pixel.P{Red: r, Green: g, Blue: b}
}

// Scale returns c with its value scaled by f, clamped to [0, 1].
func (c HSV) Scale(f float64) HSV {
	switch {
	case f <= 0:
		c.V = 0
	case f < 1:
		c.V = uint8(float64(c.V) * f)
	}
	return c
}

// ParseHSV parses a color of the form "h,s,v".
func ParseHSV(v string) (HSV, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return HSV{}, errors.Errorf("color %q must have three components (h,s,v)", v)
	}

	limits := [3]int{MaxHue, MaxSaturation, MaxValue}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return HSV{}, errors.Wrapf(err, "color %q component %d", v, i)
		}
		if n < 0 || n > limits[i] {
			return HSV{}, errors.Errorf("color %q component %d (%d) out of range [0, %d]", v, i, n, limits[i])
		}
		vals[i] = n
	}
	return HSV{H: uint16(vals[0]), S: uint8(vals[1]), V: uint8(vals[2])}, nil
}
