// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"time"

	"github.com/danjacques/goledstrip/vehicle"
)

// Animation is the global animation state shared by every LED.
//
// It is advanced exactly once per rendered frame, before any LED is
// resolved, so that every LED in a frame observes the same phase.
type Animation struct {
	// Frames is the number of frames advanced since the strip was enabled.
	Frames uint64
	// Elapsed is the render time accumulated since the strip was enabled.
	Elapsed time.Duration

	// ScannerPos is the larson scanner position, in [0, Counts.Larson).
	ScannerPos int
	// ScannerDir is the direction of the next scanner step (+1 or -1).
	ScannerDir int

	BlinkOff    bool
	StrobeOn    bool
	IndicatorOn bool
	LandingOn   bool

	// RingPhase is the thrust ring rotation offset, in [0, Counts.RingSeqLen).
	RingPhase int

	ringAccum time.Duration
}

// reset returns a to its initial state.
func (a *Animation) reset() { *a = Animation{ScannerDir: 1} }

// advance moves every effect forward by one frame that took elapsed time.
func (a *Animation) advance(elapsed time.Duration, c *Counts, s *vehicle.Snapshot, p *Policy) {
	if elapsed < 0 {
		elapsed = 0
	}
	a.Frames++
	a.Elapsed += elapsed

	a.stepScanner(c.Larson)

	a.BlinkOff = !p.Blink.active(a.Elapsed)
	a.StrobeOn = p.Strobe.active(a.Elapsed)
	a.IndicatorOn = p.Indicator.active(a.Elapsed)
	a.LandingOn = p.LandingFlash.active(a.Elapsed)

	a.rotateRing(elapsed, c.RingSeqLen, s, p)
}

// stepScanner moves the scanner one position, bouncing at the ends of a
// sweep of n positions.
//
// After N steps from position 0 the scanner is at N mod 2(n-1), reflected
// back from the far end.
func (a *Animation) stepScanner(n int) {
	if n <= 1 {
		a.ScannerPos, a.ScannerDir = 0, 1
		return
	}
	if a.ScannerPos >= n {
		// The table shrank; resume from the far end.
		a.ScannerPos, a.ScannerDir = n-1, -1
	}
	if a.ScannerDir == 0 {
		a.ScannerDir = 1
	}

	next := a.ScannerPos + a.ScannerDir
	if next < 0 || next >= n {
		a.ScannerDir = -a.ScannerDir
		next = a.ScannerPos + a.ScannerDir
	}
	a.ScannerPos = next
}

// rotateRing steps the ring phase backwards at a throttle-scaled rate while
// armed. A disarmed ring holds its phase.
func (a *Animation) rotateRing(elapsed time.Duration, seqLen int, s *vehicle.Snapshot, p *Policy) {
	if seqLen <= 0 {
		a.RingPhase, a.ringAccum = 0, 0
		return
	}
	if !s.Armed {
		a.ringAccum = 0
		return
	}

	throttle := int(s.Throttle)
	if throttle > 100 {
		throttle = 100
	}
	hz := p.RingMinHz + (p.RingMaxHz-p.RingMinHz)*throttle/100
	interval := time.Second / time.Duration(hz)

	a.ringAccum += elapsed
	steps := int(a.ringAccum / interval)
	a.ringAccum %= interval

	a.RingPhase = ((a.RingPhase-steps)%seqLen + seqLen) % seqLen
}
