// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"github.com/danjacques/goledstrip/color"
)

// applyThrottle scales brightness with throttle, down to Policy.ThrottleMin.
func applyThrottle(f *frame, l *led, c color.HSV) color.HSV {
	t := float64(f.snap.Throttle) / 100
	if t > 1 {
		t = 1
	}
	return c.Scale(f.policy.ThrottleMin + (1-f.policy.ThrottleMin)*t)
}

// applyLarsonScanner lights LEDs within the scanner window. The window starts
// at the scanner position and is params LEDs wide (at least one).
//
// Positions count only LEDs carrying the scanner overlay, in table order, so
// the scanner bounces between the first and last of those LEDs rather than
// the ends of the strip.
func applyLarsonScanner(f *frame, l *led, c color.HSV) color.HSV {
	width := int(l.desc.Params())
	if width < 1 {
		width = 1
	}
	if off := l.larsonIndex - f.anim.ScannerPos; off >= 0 && off < width {
		return f.cfg.Colors.SpecialColor(color.SpecialAnimation)
	}
	return c
}

func applyBlink(f *frame, l *led, c color.HSV) color.HSV {
	if f.anim.BlinkOff {
		return f.cfg.Colors.SpecialColor(color.SpecialBlinkBackground)
	}
	return c
}

func applyLandingFlash(f *frame, l *led, c color.HSV) color.HSV {
	if f.snap.Landing && !f.anim.LandingOn {
		return f.cfg.Colors.SpecialColor(color.SpecialBackground)
	}
	return c
}

// applyIndicator flashes LEDs facing a requested indicator direction.
func applyIndicator(f *frame, l *led, c color.HSV) color.HSV {
	if !l.desc.Direction().Overlaps(f.snap.Indicator) {
		return c
	}
	if f.anim.IndicatorOn {
		return f.cfg.Colors.Color(f.policy.IndicatorColor)
	}
	return f.cfg.Colors.SpecialColor(color.SpecialBackground)
}

func applyWarning(f *frame, l *led, c color.HSV) color.HSV {
	if f.snap.Warnings != 0 {
		return f.cfg.Colors.Color(f.policy.WarningColor)
	}
	return c
}

func applyStrobe(f *frame, l *led, c color.HSV) color.HSV {
	if f.anim.StrobeOn {
		return f.cfg.Colors.SpecialColor(color.SpecialStrobe)
	}
	return c
}
