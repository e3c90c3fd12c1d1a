// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledsim

import (
	"fmt"
	"math"
	"time"

	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/vehicle"
)

// DefaultCycle is the default length of one scripted flight.
const DefaultCycle = 60 * time.Second

// Phases of a scripted flight, as fractions of the cycle.
const (
	gpsSearchEnd = 0.05
	gpsLockAt    = 0.12
	armAt        = 0.15
	landAt       = 0.80
	disarmAt     = 0.90

	modeStep = 0.15
)

// Indicator windows, as fractions of the cycle.
var indicatorWindows = []struct {
	from, to float64
	dir      ledconfig.Direction
}{
	{0.30, 0.35, ledconfig.DirectionWest},
	{0.50, 0.55, ledconfig.DirectionEast},
}

var scriptedModes = []vehicle.FlightModes{
	vehicle.ModeAngle,
	vehicle.ModeHorizon,
	vehicle.ModeAngle | vehicle.ModeMag,
	vehicle.ModeAngle | vehicle.ModeBaro,
	vehicle.ModeHeadfree,
}

// Script is a vehicle.Provider that plays a repeating scripted flight: GPS
// acquisition, arming, throttle and mode changes, turns, battery drain, and
// landing.
type Script struct {
	// Cycle is the length of one flight. If <= 0, DefaultCycle is used.
	Cycle time.Duration
	// Start is the time at which the first flight begins.
	Start time.Time
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
}

var _ vehicle.Provider = (*Script)(nil)

// Snapshot implements vehicle.Provider.
func (s *Script) Snapshot(snap *vehicle.Snapshot) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	*snap = s.At(now().Sub(s.Start))
}

func (s *Script) cycle() time.Duration {
	if s.Cycle <= 0 {
		return DefaultCycle
	}
	return s.Cycle
}

// At returns the scripted vehicle state at elapsed time t.
func (s *Script) At(t time.Duration) vehicle.Snapshot {
	cycle := s.cycle()
	if t < 0 {
		t = 0
	}
	t %= cycle
	p := float64(t) / float64(cycle)

	snap := vehicle.Idle()

	switch {
	case p < gpsSearchEnd:
		snap.GPSFix = vehicle.GPSNoSats
	case p < gpsLockAt:
		snap.GPSFix = vehicle.GPSNoLock
	default:
		snap.GPSFix = vehicle.GPSLocked
	}

	snap.BatteryPercent = uint8(100 - 90*p)
	snap.RSSIPercent = uint8(90 - 50*p)
	if snap.BatteryPercent < 30 {
		snap.Warnings |= vehicle.WarningLowBattery
		snap.BeeperActive = (t/(500*time.Millisecond))%2 == 0
	}

	snap.Armed = p >= armAt && p < disarmAt
	if !snap.Armed {
		if snap.GPSFix != vehicle.GPSLocked {
			snap.Warnings |= vehicle.WarningArmingDisabled
		}
		return snap
	}

	flight := p - armAt
	snap.Modes = scriptedModes[int(flight/modeStep)%len(scriptedModes)]
	snap.Throttle = uint8(50 + 40*math.Sin(2*math.Pi*4*flight))
	snap.Landing = p >= landAt
	if snap.Landing {
		snap.Throttle = uint8(30 * (disarmAt - p) / (disarmAt - landAt))
	}

	for _, w := range indicatorWindows {
		if p >= w.from && p < w.to {
			snap.Indicator = w.dir
			if w.dir == ledconfig.DirectionWest {
				snap.Channels[0] = 1300
			} else {
				snap.Channels[0] = 1700
			}
		}
	}

	snap.Channels[2] = uint16(vehicle.ChannelMin + int(snap.Throttle)*(vehicle.ChannelMax-vehicle.ChannelMin)/100)
	snap.Channels[4] = uint16(vehicle.ChannelMin + int(flight*2000)%(vehicle.ChannelMax-vehicle.ChannelMin))
	return snap
}

// Summary returns a one-line summary of snap.
func Summary(snap *vehicle.Snapshot) string {
	armed := "DISARMED"
	if snap.Armed {
		armed = "ARMED"
	}
	return fmt.Sprintf("%s modes=%s thr=%d%% bat=%d%% rssi=%d%% gps=%s",
		armed, snap.Modes, snap.Throttle, snap.BatteryPercent, snap.RSSIPercent, snap.GPSFix)
}
