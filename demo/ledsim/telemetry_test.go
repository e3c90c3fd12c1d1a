// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledsim

import (
	"time"

	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/vehicle"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Script", func() {
	s := Script{Cycle: 100 * time.Second}
	at := func(sec float64) vehicle.Snapshot {
		return s.At(time.Duration(sec * float64(time.Second)))
	}

	It("acquires GPS before arming", func() {
		snap := at(1)
		Expect(snap.Armed).To(BeFalse())
		Expect(snap.GPSFix).To(Equal(vehicle.GPSNoSats))
		Expect(snap.Warnings).To(Equal(vehicle.WarningArmingDisabled))
		Expect(snap.Heading).To(Equal(ledconfig.AllDirections))

		Expect(at(8).GPSFix).To(Equal(vehicle.GPSNoLock))

		snap = at(13)
		Expect(snap.GPSFix).To(Equal(vehicle.GPSLocked))
		Expect(snap.Armed).To(BeFalse())
		Expect(snap.Warnings).To(BeZero())
	})

	It("flies through the scripted modes", func() {
		Expect(at(16).Armed).To(BeTrue())
		Expect(at(16).Modes).To(Equal(vehicle.ModeAngle))
		Expect(at(31).Modes).To(Equal(vehicle.ModeHorizon))
		Expect(at(46).Modes).To(Equal(vehicle.ModeAngle | vehicle.ModeMag))

		for sec := 15.0; sec < 90; sec += 0.5 {
			snap := at(sec)
			Expect(snap.Throttle).To(BeNumerically("<=", 100))
			Expect(snap.Channels[2]).To(BeNumerically(">=", vehicle.ChannelMin))
			Expect(snap.Channels[2]).To(BeNumerically("<=", vehicle.ChannelMax))
		}
	})

	It("signals turns", func() {
		Expect(at(32).Indicator).To(Equal(ledconfig.DirectionWest))
		Expect(at(52).Indicator).To(Equal(ledconfig.DirectionEast))
		Expect(at(40).Indicator).To(BeZero())
	})

	It("drains the battery and lands", func() {
		Expect(at(0).BatteryPercent).To(Equal(uint8(100)))
		Expect(at(50).BatteryPercent).To(Equal(uint8(55)))

		snap := at(85)
		Expect(snap.Landing).To(BeTrue())
		Expect(snap.Armed).To(BeTrue())
		Expect(snap.Warnings & vehicle.WarningLowBattery).ToNot(BeZero())

		Expect(at(95).Armed).To(BeFalse())
		Expect(at(95).Landing).To(BeFalse())
	})

	It("repeats every cycle", func() {
		Expect(at(132)).To(Equal(at(32)))
	})

	It("reads the clock", func() {
		start := time.Unix(1000, 0)
		now := start.Add(20 * time.Second)
		sc := Script{Cycle: 100 * time.Second, Start: start, Now: func() time.Time { return now }}

		var snap vehicle.Snapshot
		sc.Snapshot(&snap)
		Expect(snap).To(Equal(at(20)))
		Expect(Summary(&snap)).To(HavePrefix("ARMED modes=ANGLE"))
	})
})
