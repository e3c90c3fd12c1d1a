// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"math/bits"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/vehicle"
)

// frame is everything a contributor may read while resolving one frame.
type frame struct {
	cfg    *Config
	counts *Counts
	snap   *vehicle.Snapshot
	anim   *Animation
	policy *Policy

	// modeRow is the mode color row selected for this frame.
	modeRow color.Mode
}

// led is a single LED being resolved.
type led struct {
	desc ledconfig.Descriptor

	// ringIndex and larsonIndex are the LED's ordinals among thrust ring and
	// larson scanner LEDs respectively.
	ringIndex   int
	larsonIndex int
}

// functionContributor produces a base color for one function bit. It returns
// false if the function contributes nothing this frame.
type functionContributor func(f *frame, l *led) (color.HSV, bool)

// overlayContributor transforms the color produced so far.
type overlayContributor func(f *frame, l *led, c color.HSV) color.HSV

// functionContributors is indexed by function bit number.
var functionContributors = [ledconfig.FunctionCount]functionContributor{
	contributeColor,
	contributeFlightMode,
	contributeArmState,
	contributeBattery,
	contributeRSSI,
	contributeGPS,
	contributeThrustRing,
	contributeChannel,
}

// overlays is applied in order; later overlays see earlier results.
var overlays = [ledconfig.OverlayCount]struct {
	bit   ledconfig.Overlay
	apply overlayContributor
}{
	{ledconfig.OverlayThrottle, applyThrottle},
	{ledconfig.OverlayLarsonScanner, applyLarsonScanner},
	{ledconfig.OverlayBlink, applyBlink},
	{ledconfig.OverlayLandingFlash, applyLandingFlash},
	{ledconfig.OverlayIndicator, applyIndicator},
	{ledconfig.OverlayWarning, applyWarning},
	{ledconfig.OverlayStrobe, applyStrobe},
}

func bitIndex(v uint8) int { return bits.TrailingZeros8(v) }

// resolve computes the final color of l.
func (f *frame) resolve(l *led) color.HSV {
	c := f.baseColor(l)

	ov := l.desc.Overlay()
	for _, o := range overlays {
		if ov&o.bit != 0 {
			c = o.apply(f, l, c)
		}
	}
	return c
}

// baseColor folds the LED's function bits in policy order.
func (f *frame) baseColor(l *led) color.HSV {
	fn := l.desc.Function()

	var (
		c       color.HSV
		matched bool
	)
	for _, bit := range f.policy.FunctionOrder {
		if fn&bit == 0 {
			continue
		}
		if v, ok := functionContributors[bitIndex(uint8(bit))](f, l); ok {
			c, matched = v, true
		}
	}

	if !matched {
		if fn.Has(ledconfig.FunctionColor) {
			c, _ = contributeColor(f, l)
		} else {
			c = f.cfg.Colors.SpecialColor(color.SpecialBackground)
		}
	}

	if f.suppressForBeeper(l) {
		c = f.cfg.Colors.SpecialColor(color.SpecialBackground)
	}
	return c
}

// suppressForBeeper returns true if a low-battery LED should be blanked while
// the beeper is sounding.
func (f *frame) suppressForBeeper(l *led) bool {
	if !(f.cfg.VisualBeeper && f.snap.BeeperActive && l.desc.Function().Has(ledconfig.FunctionBattery)) {
		return false
	}
	b := band(f.policy.BatteryBands, f.snap.BatteryPercent)
	return b >= 0 && b >= f.policy.LowBatteryBand
}

func contributeColor(f *frame, l *led) (color.HSV, bool) {
	return f.cfg.Colors.Color(l.desc.Color()), true
}

// contributeFlightMode uses the first direction, in N/E/S/W/U/D order, that
// the LED faces and that is currently relevant.
func contributeFlightMode(f *frame, l *led) (color.HSV, bool) {
	dirs := l.desc.Direction() & f.snap.Heading
	if dirs == 0 {
		return color.HSV{}, false
	}
	return f.cfg.Colors.ModeColor(f.modeRow, bitIndex(uint8(dirs))), true
}

func contributeArmState(f *frame, l *led) (color.HSV, bool) {
	if f.snap.Armed {
		return f.cfg.Colors.SpecialColor(color.SpecialArmed), true
	}
	return f.cfg.Colors.SpecialColor(color.SpecialDisarmed), true
}

func contributeBattery(f *frame, l *led) (color.HSV, bool) {
	return bandColor(f, f.policy.BatteryBands, f.snap.BatteryPercent)
}

func contributeRSSI(f *frame, l *led) (color.HSV, bool) {
	return bandColor(f, f.policy.RSSIBands, f.snap.RSSIPercent)
}

func bandColor(f *frame, bands []Band, pct uint8) (color.HSV, bool) {
	b := band(bands, pct)
	if b < 0 {
		return color.HSV{}, false
	}
	return f.cfg.Colors.Color(bands[b].Color), true
}

func contributeGPS(f *frame, l *led) (color.HSV, bool) {
	switch f.snap.GPSFix {
	case vehicle.GPSLocked:
		return f.cfg.Colors.SpecialColor(color.SpecialGPSLocked), true
	case vehicle.GPSNoLock:
		return f.cfg.Colors.SpecialColor(color.SpecialGPSNoLock), true
	default:
		return f.cfg.Colors.SpecialColor(color.SpecialGPSNoSats), true
	}
}

// contributeThrustRing lights a rotating window of the ring while armed, and
// a fixed evenly-spaced pattern while disarmed.
func contributeThrustRing(f *frame, l *led) (color.HSV, bool) {
	seqLen := f.counts.RingSeqLen
	if seqLen <= 0 {
		return color.HSV{}, false
	}

	var lit bool
	if f.snap.Armed {
		lit = (l.ringIndex+f.anim.RingPhase)%seqLen < f.policy.RingWidth
	} else {
		spacing := seqLen / 2
		if spacing < 1 {
			spacing = 1
		}
		lit = l.ringIndex%spacing == 0
	}

	if lit {
		return f.cfg.Colors.Color(l.desc.Color()), true
	}
	return f.cfg.Colors.SpecialColor(color.SpecialBackground), true
}

// contributeChannel replaces the LED color's hue with the value of the RC
// channel selected by the LED's params.
func contributeChannel(f *frame, l *led) (color.HSV, bool) {
	ch := int(l.desc.Params())
	if ch >= len(f.snap.Channels) {
		return color.HSV{}, false
	}

	v := int(f.snap.Channels[ch])
	switch {
	case v < vehicle.ChannelMin:
		v = vehicle.ChannelMin
	case v > vehicle.ChannelMax:
		v = vehicle.ChannelMax
	}

	c := f.cfg.Colors.Color(l.desc.Color())
	c.H = uint16((v - vehicle.ChannelMin) * color.MaxHue / (vehicle.ChannelMax - vehicle.ChannelMin))
	return c, true
}
