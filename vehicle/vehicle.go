// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package vehicle describes the live vehicle state that drives LED rendering.
//
// A Snapshot is produced by the host (flight controller telemetry, a
// simulator, or a test) once per render tick and is treated as read-only by
// the renderer.
package vehicle

import (
	"fmt"
	"strings"

	"github.com/danjacques/goledstrip/ledconfig"
)

// FlightModes is a bitmask of active flight modes.
type FlightModes uint8

// Flight mode bits.
const (
	ModeAngle FlightModes = 1 << iota
	ModeHorizon
	ModeMag
	ModeBaro
	ModeHeadfree
)

var flightModeNames = []string{"ANGLE", "HORIZON", "MAG", "BARO", "HEADFREE"}

func (m FlightModes) String() string {
	var parts []string
	for i, n := range flightModeNames {
		if m&(1<<uint(i)) != 0 {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "ACRO"
	}
	return strings.Join(parts, "|")
}

// GPSFix is the quality of the GPS solution.
type GPSFix uint8

const (
	// GPSNoSats means no satellites are visible.
	GPSNoSats GPSFix = iota
	// GPSNoLock means satellites are visible but there is no fix.
	GPSNoLock
	// GPSLocked means a position fix is available.
	GPSLocked
)

func (f GPSFix) String() string {
	switch f {
	case GPSNoSats:
		return "NO_SATS"
	case GPSNoLock:
		return "NO_LOCK"
	case GPSLocked:
		return "LOCKED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", f)
	}
}

// Warnings is a bitmask of active warning conditions.
type Warnings uint8

// Warning bits.
const (
	WarningLowBattery Warnings = 1 << iota
	WarningFailsafe
	WarningArmingDisabled
	WarningGPSRescue
)

// RC channel constants, in microseconds.
const (
	ChannelCount = 18
	ChannelMin   = 1000
	ChannelMax   = 2000
)

// Snapshot is the vehicle state observed during one render tick.
type Snapshot struct {
	Armed bool
	Modes FlightModes

	// Heading is the set of directions that are currently relevant for
	// direction-sensitive functions. A host with no attitude information should
	// report ledconfig.AllDirections.
	Heading ledconfig.Direction
	// Indicator is the set of directions a turn/yaw indicator should light.
	Indicator ledconfig.Direction

	// BatteryPercent and RSSIPercent are in [0, 100].
	BatteryPercent uint8
	RSSIPercent    uint8
	GPSFix         GPSFix

	// Throttle is the throttle position in percent [0, 100].
	Throttle uint8
	// Channels holds raw RC channel values.
	Channels [ChannelCount]uint16

	Landing      bool
	Warnings     Warnings
	BeeperActive bool

	// LEDLow, when true, requests that the strip be turned off.
	LEDLow bool
}

// Provider supplies vehicle snapshots.
type Provider interface {
	// Snapshot fills s with the current vehicle state.
	//
	// Snapshot is called from the render path and must not block.
	Snapshot(s *Snapshot)
}

// Static is a Provider that always returns the same Snapshot.
type Static struct {
	State Snapshot
}

var _ Provider = (*Static)(nil)

// Snapshot implements Provider.
func (p *Static) Snapshot(s *Snapshot) { *s = p.State }

// Idle returns a disarmed, centred-stick Snapshot with full battery and link.
func Idle() Snapshot {
	s := Snapshot{
		Heading:        ledconfig.AllDirections,
		BatteryPercent: 100,
		RSSIPercent:    100,
	}
	for i := range s.Channels {
		s.Channels[i] = (ChannelMin + ChannelMax) / 2
	}
	return s
}
