// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"github.com/danjacques/goledstrip/ledconfig"
)

// Counts are aggregates derived from the LED table.
type Counts struct {
	// Count is the number of configured LEDs.
	Count int
	// Length is the number of LEDs rendered: one past the last configured LED.
	Length int
	// Ring is the number of thrust ring LEDs.
	Ring int
	// Larson is the number of LEDs carrying the larson scanner overlay.
	Larson int
	// RingSeqLen is the length of the repeating thrust ring pattern.
	RingSeqLen int
}

// countLEDs evaluates Counts for t.
func countLEDs(t *ledconfig.Table, p *Policy) (c Counts) {
	for i := range t {
		d := &t[i]
		if !d.IsConfigured() {
			continue
		}

		c.Count++
		c.Length = i + 1
		if d.Function().Has(ledconfig.FunctionThrustRing) {
			c.Ring++
		}
		if d.Overlay().Has(ledconfig.OverlayLarsonScanner) {
			c.Larson++
		}
	}
	c.RingSeqLen = ringSequenceLength(c.Ring, p.RingSequence)
	return
}

// ringSequenceLength picks the repeating pattern length for a ring of n LEDs.
//
// Rings that divide evenly into seq use seq. Otherwise the ring length is
// halved while it is even and longer than seq, so that the pattern repeats
// cleanly around the ring.
func ringSequenceLength(n, seq int) int {
	if n%seq == 0 {
		return seq
	}
	l := n
	for l > seq && l%2 == 0 {
		l /= 2
	}
	return l
}
