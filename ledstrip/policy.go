// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"time"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/vehicle"

	"github.com/pkg/errors"
)

// Band maps a percentage threshold to a palette color.
type Band struct {
	// Min is the lowest percentage (inclusive) that falls into this band.
	Min uint8
	// Color is the palette index shown for this band.
	Color uint8
}

// ModeMapping selects a mode color row when a flight mode is active.
type ModeMapping struct {
	Modes vehicle.FlightModes
	Row   color.Mode
}

// Policy holds the tuning constants of the renderer.
//
// A Policy must not be modified after it has been passed to New.
type Policy struct {
	// FunctionOrder is the evaluation order of base functions. Later functions
	// that produce a color override earlier ones. FunctionColor is not listed:
	// it is always the fallback when nothing else matched.
	FunctionOrder []ledconfig.Function

	// ModePriority is consulted in order; the first entry whose Modes are all
	// active selects the mode row. If none match, ModeOrientation is used.
	ModePriority []ModeMapping

	// BatteryBands are ordered by descending Min. The first band whose Min is
	// <= the battery percentage is used.
	BatteryBands []Band
	// LowBatteryBand is the first index into BatteryBands that counts as "low"
	// for visual beeper suppression.
	LowBatteryBand int
	// RSSIBands are ordered by descending Min, like BatteryBands.
	RSSIBands []Band

	// RingSequence is the preferred thrust ring sequence length and RingWidth
	// the number of lit LEDs within each sequence.
	RingSequence int
	RingWidth    int
	// RingMinHz and RingMaxHz bound the ring rotation rate. A disarmed ring
	// does not rotate; an armed ring scales between them by throttle.
	RingMinHz int
	RingMaxHz int

	// ThrottleMin is the brightness factor applied at zero throttle.
	ThrottleMin float64

	// WarningColor and IndicatorColor are palette indexes.
	WarningColor   uint8
	IndicatorColor uint8

	// Each periodic effect is "on" for the first On of every Period.
	Blink        Period
	Strobe       Period
	Indicator    Period
	LandingFlash Period
}

// Period describes a periodic on/off phase.
type Period struct {
	Period time.Duration
	On     time.Duration
}

// active returns true if the phase is "on" at elapsed time t.
func (p Period) active(t time.Duration) bool {
	if p.Period <= 0 {
		return true
	}
	return t%p.Period < p.On
}

// DefaultPolicy returns the stock renderer tuning.
func DefaultPolicy() *Policy {
	return &Policy{
		FunctionOrder: []ledconfig.Function{
			ledconfig.FunctionFlightMode,
			ledconfig.FunctionArmState,
			ledconfig.FunctionBattery,
			ledconfig.FunctionRSSI,
			ledconfig.FunctionGPS,
			ledconfig.FunctionThrustRing,
			ledconfig.FunctionChannel,
		},
		ModePriority: []ModeMapping{
			{vehicle.ModeHeadfree, color.ModeHeadfree},
			{vehicle.ModeMag, color.ModeMag},
			{vehicle.ModeBaro, color.ModeBaro},
			{vehicle.ModeHorizon, color.ModeHorizon},
			{vehicle.ModeAngle, color.ModeAngle},
		},
		BatteryBands: []Band{
			{80, color.Green},
			{60, color.LimeGreen},
			{40, color.Yellow},
			{20, color.Orange},
			{0, color.Red},
		},
		LowBatteryBand: 3,
		RSSIBands: []Band{
			{70, color.Green},
			{40, color.Yellow},
			{0, color.Red},
		},
		RingSequence:   6,
		RingWidth:      2,
		RingMinHz:      10,
		RingMaxHz:      100,
		ThrottleMin:    0.1,
		WarningColor:   color.Red,
		IndicatorColor: color.Orange,
		Blink:          Period{Period: time.Second, On: 500 * time.Millisecond},
		Strobe:         Period{Period: 400 * time.Millisecond, On: 40 * time.Millisecond},
		Indicator:      Period{Period: 500 * time.Millisecond, On: 250 * time.Millisecond},
		LandingFlash:   Period{Period: 200 * time.Millisecond, On: 100 * time.Millisecond},
	}
}

// Validate checks that p is usable.
func (p *Policy) Validate() error {
	for _, fn := range p.FunctionOrder {
		if fn == 0 || fn&(fn-1) != 0 {
			return errors.Errorf("function order entry %s must have exactly one bit", fn)
		}
		if fn == ledconfig.FunctionColor {
			return errors.New("function order must not include COLOR")
		}
	}
	for _, mm := range p.ModePriority {
		if mm.Row < 0 || mm.Row >= color.ModeCount {
			return errors.Errorf("mode mapping for %s uses invalid row %s", mm.Modes, mm.Row)
		}
	}
	for _, bands := range [][]Band{p.BatteryBands, p.RSSIBands} {
		for i, b := range bands {
			if b.Color >= color.ConfigurableCount {
				return errors.Errorf("band %d color %d out of range", i, b.Color)
			}
			if i > 0 && b.Min >= bands[i-1].Min {
				return errors.Errorf("band %d threshold %d is not descending", i, b.Min)
			}
		}
	}
	for _, pp := range []struct {
		name string
		p    Period
	}{
		{"blink", p.Blink},
		{"strobe", p.Strobe},
		{"indicator", p.Indicator},
		{"landing flash", p.LandingFlash},
	} {
		if pp.p.Period > 0 && (pp.p.On < 0 || pp.p.On > pp.p.Period) {
			return errors.Errorf("%s on time %v out of range [0, %v]", pp.name, pp.p.On, pp.p.Period)
		}
	}
	switch {
	case p.RingSequence <= 0, p.RingWidth <= 0:
		return errors.New("ring sequence and width must be positive")
	case p.RingMinHz <= 0 || p.RingMaxHz < p.RingMinHz:
		return errors.Errorf("invalid ring rate range [%d, %d]", p.RingMinHz, p.RingMaxHz)
	case p.ThrottleMin < 0 || p.ThrottleMin > 1:
		return errors.Errorf("throttle minimum %v out of range [0, 1]", p.ThrottleMin)
	case p.WarningColor >= color.ConfigurableCount, p.IndicatorColor >= color.ConfigurableCount:
		return errors.New("warning and indicator colors must be palette indexes")
	}
	return nil
}

// modeRow returns the mode color row for the active flight modes.
func (p *Policy) modeRow(m vehicle.FlightModes) color.Mode {
	for _, mm := range p.ModePriority {
		if mm.Modes != 0 && m&mm.Modes == mm.Modes {
			return mm.Row
		}
	}
	return color.ModeOrientation
}

// band returns the index of the band for pct, or -1 if none matches.
func band(bands []Band, pct uint8) int {
	for i, b := range bands {
		if pct >= b.Min {
			return i
		}
	}
	return -1
}
