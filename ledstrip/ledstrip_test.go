// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"testing"
	"time"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/vehicle"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

// captureDriver records every frame written to it.
type captureDriver struct {
	busy   bool
	err    error
	frames [][]pixel.P
}

func (d *captureDriver) Ready() bool { return !d.busy }

func (d *captureDriver) Write(buf *pixel.Buffer) error {
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, buf.Pixels())
	return nil
}

func (d *captureDriver) last() []pixel.P {
	ExpectWithOffset(1, d.frames).ToNot(BeEmpty())
	return d.frames[len(d.frames)-1]
}

var defaultColors = color.DefaultTable()

func rgbOf(idx uint8) pixel.P { return defaultColors.Color(idx).RGB() }

func specialRGB(s color.Special) pixel.P { return defaultColors.SpecialColor(s).RGB() }

var _ = Describe("Strip", func() {
	const frameInterval = 20 * time.Millisecond

	var (
		t0     = time.Unix(1000, 0)
		drv    *captureDriver
		veh    *vehicle.Static
		cfg    Config
		policy *Policy
		s      *Strip
	)

	BeforeEach(func() {
		drv = &captureDriver{}
		veh = &vehicle.Static{State: vehicle.Idle()}
		cfg = DefaultConfig()
		policy = DefaultPolicy()
		s = nil
	})

	// start builds the strip from cfg and enables it at t0.
	start := func() {
		var err error
		s, err = New(Options{
			Driver:  drv,
			Vehicle: veh,
			Config:  &cfg,
			Policy:  policy,
		})
		Expect(err).ToNot(HaveOccurred())
		s.Enable(t0)
	}

	at := func(d time.Duration) []pixel.P {
		s.Update(t0.Add(d))
		return drv.last()
	}

	Context("construction", func() {
		It("requires a driver and a vehicle", func() {
			_, err := New(Options{Vehicle: veh})
			Expect(err).To(HaveOccurred())
			_, err = New(Options{Driver: drv})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an invalid policy", func() {
			policy.FunctionOrder = append(policy.FunctionOrder, ledconfig.FunctionColor)
			_, err := New(Options{Driver: drv, Vehicle: veh, Policy: policy})
			Expect(err).To(HaveOccurred())
		})

		DescribeTable("rejects periods whose on time is out of range",
			func(set func(p *Policy)) {
				set(policy)
				Expect(policy.Validate()).ToNot(Succeed())
			},
			Entry("negative strobe", func(p *Policy) { p.Strobe.On = -time.Millisecond }),
			Entry("strobe longer than its period", func(p *Policy) { p.Strobe.On = p.Strobe.Period + 1 }),
			Entry("negative blink", func(p *Policy) { p.Blink.On = -1 }),
			Entry("indicator longer than its period", func(p *Policy) { p.Indicator.On = 2 * p.Indicator.Period }),
			Entry("negative landing flash", func(p *Policy) { p.LandingFlash.On = -1 }),
		)

		It("accepts always-on and full-period phases", func() {
			policy.Blink = Period{}
			policy.Strobe.On = policy.Strobe.Period
			Expect(policy.Validate()).To(Succeed())
		})

		It("rejects an invalid configuration", func() {
			cfg.Colors.Special[color.SpecialArmed] = color.ConfigurableCount
			_, err := New(Options{Driver: drv, Vehicle: veh, Config: &cfg})
			Expect(err).To(HaveOccurred())
		})

		It("uses defaults when no configuration is supplied", func() {
			s, err := New(Options{Driver: drv, Vehicle: veh})
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Config()).To(Equal(DefaultConfig()))
			Expect(s.Counts()).To(Equal(Counts{RingSeqLen: 6}))
			Expect(s.Enabled()).To(BeFalse())
		})
	})

	Context("arm state", func() {
		BeforeEach(func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, 0, ledconfig.AllDirections, ledconfig.FunctionArmState, 0, 0)
			start()
		})

		It("shows the disarmed and armed special colors", func() {
			Expect(at(0)).To(Equal([]pixel.P{specialRGB(color.SpecialDisarmed)}))

			veh.State.Armed = true
			Expect(at(frameInterval)).To(Equal([]pixel.P{specialRGB(color.SpecialArmed)}))
		})

		It("follows special color edits", func() {
			Expect(s.SetModeColor(color.ModeSpecial, int(color.SpecialDisarmed), int(color.Magenta))).To(BeTrue())
			Expect(at(0)).To(Equal([]pixel.P{rgbOf(color.Magenta)}))
		})
	})

	Context("blink", func() {
		BeforeEach(func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.Cyan, ledconfig.AllDirections,
				ledconfig.FunctionArmState, ledconfig.OverlayBlink, 0)
			cfg.Colors.Special[color.SpecialBlinkBackground] = color.Blue
			start()
		})

		It("replaces the base color with blink background in the off phase", func() {
			Expect(at(0)).To(Equal([]pixel.P{specialRGB(color.SpecialDisarmed)}))
			Expect(s.Animation().BlinkOff).To(BeFalse())

			Expect(at(600 * time.Millisecond)).To(Equal([]pixel.P{rgbOf(color.Blue)}))
			Expect(s.Animation().BlinkOff).To(BeTrue())

			Expect(at(1100 * time.Millisecond)).To(Equal([]pixel.P{specialRGB(color.SpecialDisarmed)}))
		})
	})

	Context("larson scanner", func() {
		const leds = 8

		BeforeEach(func() {
			for i := 0; i < leds; i++ {
				cfg.LEDs[i] = ledconfig.New(i, 0, color.Red, 0, ledconfig.FunctionColor,
					ledconfig.OverlayLarsonScanner, 2)
			}
			start()
		})

		It("sweeps a two-wide window with a reproducible bounce", func() {
			Expect(s.Counts().Larson).To(Equal(leds))

			for n := 1; n <= 40; n++ {
				frame := at(time.Duration(n-1) * frameInterval)

				pos := n % (2 * (leds - 1))
				if pos >= leds {
					pos = 2*(leds-1) - pos
				}
				Expect(s.Animation().ScannerPos).To(Equal(pos), "tick %d", n)
				Expect(s.Animation().Frames).To(Equal(uint64(n)))

				for i, p := range frame {
					exp := rgbOf(color.Red)
					if i >= pos && i < pos+2 {
						exp = specialRGB(color.SpecialAnimation)
					}
					Expect(p).To(Equal(exp), "tick %d LED %d", n, i)
				}
			}
		})

		It("restarts the sweep when re-enabled", func() {
			at(0)
			at(frameInterval)
			Expect(s.Animation().ScannerPos).To(Equal(2))

			s.Enable(t0.Add(time.Second))
			s.Update(t0.Add(time.Second))
			Expect(s.Animation().ScannerPos).To(Equal(1))
			Expect(s.Animation().Frames).To(Equal(uint64(1)))
		})
	})

	Context("warning and strobe", func() {
		BeforeEach(func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.Blue, ledconfig.AllDirections, ledconfig.FunctionColor,
				ledconfig.OverlayWarning|ledconfig.OverlayStrobe, 0)
			cfg.Colors.Special[color.SpecialStrobe] = color.Yellow
			veh.State.Warnings = vehicle.WarningLowBattery
			start()
		})

		It("shows strobe over warning, and warning over the base color", func() {
			Expect(at(0)).To(Equal([]pixel.P{rgbOf(color.Yellow)}))
			Expect(s.Animation().StrobeOn).To(BeTrue())

			Expect(at(200 * time.Millisecond)).To(Equal([]pixel.P{rgbOf(policy.WarningColor)}))

			veh.State.Warnings = 0
			Expect(at(220 * time.Millisecond)).To(Equal([]pixel.P{rgbOf(color.Blue)}))

			Expect(at(400 * time.Millisecond)).To(Equal([]pixel.P{rgbOf(color.Yellow)}))
		})
	})

	Context("flight mode", func() {
		BeforeEach(func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, 0, ledconfig.DirectionNorth, ledconfig.FunctionFlightMode, 0, 0)
			cfg.LEDs[1] = ledconfig.New(1, 0, 0, ledconfig.DirectionSouth|ledconfig.DirectionEast,
				ledconfig.FunctionFlightMode, 0, 0)
			start()
		})

		It("uses the mode row selected by priority", func() {
			Expect(at(0)).To(Equal([]pixel.P{
				defaultColors.ModeColor(color.ModeOrientation, 0).RGB(),
				defaultColors.ModeColor(color.ModeOrientation, 1).RGB(),
			}))

			veh.State.Modes = vehicle.ModeAngle | vehicle.ModeMag
			Expect(at(frameInterval)).To(Equal([]pixel.P{
				defaultColors.ModeColor(color.ModeMag, 0).RGB(),
				defaultColors.ModeColor(color.ModeMag, 1).RGB(),
			}))
		})

		It("shows nothing for LEDs facing away from the heading", func() {
			veh.State.Heading = ledconfig.DirectionSouth
			Expect(at(0)).To(Equal([]pixel.P{
				specialRGB(color.SpecialBackground),
				defaultColors.ModeColor(color.ModeOrientation, 2).RGB(),
			}))
		})
	})

	Context("scheduling", func() {
		BeforeEach(func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.Red, 0, ledconfig.FunctionColor, 0, 0)
			cfg.LEDs[3] = ledconfig.New(3, 0, color.Green, 0, ledconfig.FunctionColor, 0, 0)
			start()
		})

		It("does nothing while disabled", func() {
			s.Disable()
			Expect(drv.frames).To(HaveLen(1))
			s.Update(t0)
			s.Update(t0.Add(time.Second))
			Expect(drv.frames).To(HaveLen(1))
		})

		It("throttles updates to the frame rate", func() {
			s.Update(t0)
			s.Update(t0.Add(5 * time.Millisecond))
			s.Update(t0.Add(19 * time.Millisecond))
			Expect(drv.frames).To(HaveLen(1))

			s.Update(t0.Add(frameInterval))
			Expect(drv.frames).To(HaveLen(2))
		})

		It("renders gaps as background up to the last configured LED", func() {
			Expect(at(0)).To(Equal([]pixel.P{
				rgbOf(color.Red),
				specialRGB(color.SpecialBackground),
				specialRGB(color.SpecialBackground),
				rgbOf(color.Green),
			}))
		})

		It("skips frames while the driver is busy", func() {
			drv.busy = true
			s.Update(t0)
			Expect(drv.frames).To(BeEmpty())

			drv.busy = false
			s.Update(t0.Add(time.Millisecond))
			Expect(drv.frames).To(HaveLen(1))
		})

		It("keeps rendering after driver errors", func() {
			drv.err = errors.New("bus fault")
			s.Update(t0)
			Expect(drv.frames).To(BeEmpty())

			drv.err = nil
			s.Update(t0.Add(frameInterval))
			Expect(drv.frames).To(HaveLen(1))
		})

		It("writes a black frame when disabled", func() {
			at(0)
			s.Disable()
			Expect(drv.last()).To(Equal(make([]pixel.P, 4)))
			Expect(s.Enabled()).To(BeFalse())
		})

		It("blanks once while LEDLow is requested", func() {
			veh.State.LEDLow = true
			Expect(at(0)).To(Equal(make([]pixel.P, 4)))
			s.Update(t0.Add(frameInterval))
			s.Update(t0.Add(2 * frameInterval))
			Expect(drv.frames).To(HaveLen(1))

			veh.State.LEDLow = false
			Expect(at(3 * frameInterval)[0]).To(Equal(rgbOf(color.Red)))
		})

		It("ignores LEDLow while the visual beeper sounds or in failsafe", func() {
			veh.State.LEDLow = true
			veh.State.BeeperActive = true
			s.SetVisualBeeper(true)
			Expect(at(0)[0]).To(Equal(rgbOf(color.Red)))

			veh.State.BeeperActive = false
			Expect(at(frameInterval)).To(Equal(make([]pixel.P, 4)))

			veh.State.Warnings = vehicle.WarningFailsafe
			Expect(at(2 * frameInterval)[0]).To(Equal(rgbOf(color.Red)))
		})

		It("renders identical frames from identical inputs", func() {
			other := &captureDriver{}
			s2, err := New(Options{Driver: other, Vehicle: veh, Config: &cfg, Policy: policy})
			Expect(err).ToNot(HaveOccurred())
			s2.Enable(t0)

			for i := 0; i < 10; i++ {
				now := t0.Add(time.Duration(i) * 37 * time.Millisecond)
				s.Update(now)
				s2.Update(now)
			}
			Expect(other.frames).To(Equal(drv.frames))
		})
	})

	Context("thrust ring", func() {
		BeforeEach(func() {
			for i := 0; i < 6; i++ {
				cfg.LEDs[i] = ledconfig.New(i, 0, color.Orange, 0, ledconfig.FunctionThrustRing, 0, 0)
			}
			start()
		})

		lit := func(frame []pixel.P) (idx []int) {
			for i, p := range frame {
				if p == rgbOf(color.Orange) {
					idx = append(idx, i)
				}
			}
			return
		}

		It("shows a fixed pattern while disarmed", func() {
			Expect(lit(at(0))).To(Equal([]int{0, 3}))
			Expect(lit(at(time.Second))).To(Equal([]int{0, 3}))
		})

		It("rotates while armed", func() {
			veh.State.Armed = true
			veh.State.Throttle = 0

			Expect(lit(at(0))).To(Equal([]int{0, 1}))
			Expect(s.Animation().RingPhase).To(Equal(0))

			// 10Hz at zero throttle: one step back every 100ms.
			Expect(lit(at(100 * time.Millisecond))).To(Equal([]int{1, 2}))
			Expect(s.Animation().RingPhase).To(Equal(5))
		})
	})

	Context("other functions and overlays", func() {
		It("bands battery level, suppressed by the visual beeper", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, 0, 0, ledconfig.FunctionBattery, 0, 0)
			cfg.VisualBeeper = true
			veh.State.BatteryPercent = 10
			start()

			Expect(at(0)).To(Equal([]pixel.P{rgbOf(color.Red)}))

			veh.State.BeeperActive = true
			Expect(at(frameInterval)).To(Equal([]pixel.P{specialRGB(color.SpecialBackground)}))

			s.SetVisualBeeper(false)
			Expect(at(2 * frameInterval)).To(Equal([]pixel.P{rgbOf(color.Red)}))
		})

		It("shows GPS fix quality", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, 0, 0, ledconfig.FunctionGPS, 0, 0)
			start()

			Expect(at(0)).To(Equal([]pixel.P{specialRGB(color.SpecialGPSNoSats)}))
			veh.State.GPSFix = vehicle.GPSLocked
			Expect(at(frameInterval)).To(Equal([]pixel.P{specialRGB(color.SpecialGPSLocked)}))
		})

		It("maps an RC channel onto hue", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.Red, 0, ledconfig.FunctionChannel, 0, 3)
			veh.State.Channels[3] = vehicle.ChannelMax
			start()

			exp := defaultColors.Colors[color.Red]
			exp.H = color.MaxHue
			Expect(at(0)).To(Equal([]pixel.P{exp.RGB()}))
		})

		It("dims with throttle", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.White, 0, ledconfig.FunctionColor, ledconfig.OverlayThrottle, 0)
			start()

			white := defaultColors.Colors[color.White]
			Expect(at(0)).To(Equal([]pixel.P{white.Scale(policy.ThrottleMin).RGB()}))

			veh.State.Throttle = 100
			Expect(at(frameInterval)).To(Equal([]pixel.P{white.RGB()}))
		})

		It("flashes directional indicators", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.Blue, ledconfig.DirectionEast, ledconfig.FunctionColor,
				ledconfig.OverlayIndicator, 0)
			cfg.LEDs[1] = ledconfig.New(1, 0, color.Blue, ledconfig.DirectionWest, ledconfig.FunctionColor,
				ledconfig.OverlayIndicator, 0)
			veh.State.Indicator = ledconfig.DirectionEast
			start()

			Expect(at(0)).To(Equal([]pixel.P{rgbOf(policy.IndicatorColor), rgbOf(color.Blue)}))
			Expect(at(300 * time.Millisecond)).To(Equal([]pixel.P{specialRGB(color.SpecialBackground), rgbOf(color.Blue)}))
		})

		It("flashes while landing", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, color.Blue, 0, ledconfig.FunctionColor, ledconfig.OverlayLandingFlash, 0)
			veh.State.Landing = true
			start()

			Expect(at(0)).To(Equal([]pixel.P{rgbOf(color.Blue)}))
			Expect(at(150 * time.Millisecond)).To(Equal([]pixel.P{specialRGB(color.SpecialBackground)}))
		})

		It("lets the later function in policy order win", func() {
			cfg.LEDs[0] = ledconfig.New(0, 0, 0, ledconfig.AllDirections,
				ledconfig.FunctionFlightMode|ledconfig.FunctionArmState, 0, 0)
			start()
			Expect(at(0)).To(Equal([]pixel.P{specialRGB(color.SpecialDisarmed)}))
		})
	})

	Context("edits", func() {
		BeforeEach(func() {
			start()
		})

		It("applies valid edits and re-evaluates counts", func() {
			Expect(s.SetLed(2, "2,0:3::CR::0")).To(BeTrue())
			Expect(s.SetLed(4, "4,0:3::R:O:1")).To(BeTrue())
			Expect(s.Counts()).To(Equal(Counts{Count: 2, Length: 5, Ring: 2, Larson: 1, RingSeqLen: 2}))
			Expect(ledconfig.Encode(s.Config().LEDs[2])).To(Equal("2,0:3::CR::0"))

			Expect(s.SetColor(15, "100,50,25")).To(BeTrue())
			Expect(s.Config().Colors.Colors[15]).To(Equal(color.HSV{H: 100, S: 50, V: 25}))

			Expect(s.SetModeColor(color.ModeBaro, 5, 7)).To(BeTrue())
			Expect(s.Config().Colors.Modes[color.ModeBaro][5]).To(Equal(uint8(7)))
		})

		DescribeTable("rejects invalid edits without mutation",
			func(edit func(*Strip) error, exp interface{}) {
				before := s.Config()
				err := edit(s)
				Expect(err).To(HaveOccurred())
				Expect(err).To(BeAssignableToTypeOf(exp))
				Expect(s.Config()).To(Equal(before))
			},
			Entry("LED index",
				func(s *Strip) error { return s.SetLedError(ledconfig.MaxStripLength, "0,0:0::C::0") }, &IndexError{}),
			Entry("negative LED index",
				func(s *Strip) error { return s.SetLedError(-1, "0,0:0::C::0") }, &IndexError{}),
			Entry("malformed descriptor",
				func(s *Strip) error { return s.SetLedError(0, "0,0:0::C:") }, &ledconfig.DecodeError{}),
			Entry("unknown function",
				func(s *Strip) error { return s.SetLedError(0, "0,0:0::Q::0") }, &ledconfig.DecodeError{}),
			Entry("coordinate range",
				func(s *Strip) error { return s.SetLedError(0, "16,0:0::C::0") }, &ledconfig.DecodeError{}),
			Entry("color index",
				func(s *Strip) error { return s.SetColorError(color.ConfigurableCount, "0,0,0") }, &IndexError{}),
			Entry("mode direction",
				func(s *Strip) error { return s.SetModeColorError(color.ModeAngle, color.DirectionCount, 0) }, &IndexError{}),
			Entry("special slot",
				func(s *Strip) error { return s.SetModeColorError(color.ModeSpecial, color.SpecialCount, 0) }, &IndexError{}),
			Entry("palette index",
				func(s *Strip) error { return s.SetModeColorError(color.ModeSpecial, 0, color.ConfigurableCount) }, &IndexError{}),
			Entry("mode",
				func(s *Strip) error { return s.SetModeColorError(color.ModeSpecial+1, 0, 0) }, &IndexError{}),
		)

		It("reports rejected edits as false", func() {
			Expect(s.SetLed(0, "garbage")).To(BeFalse())
			Expect(s.SetColor(0, "360,0,0")).To(BeFalse())
			Expect(s.SetModeColor(color.Mode(-1), 0, 0)).To(BeFalse())
			Expect(s.Config()).To(Equal(DefaultConfig()))
		})

		It("replaces the whole configuration", func() {
			next := DefaultConfig()
			next.LEDs[9] = ledconfig.New(9, 9, 0, 0, ledconfig.FunctionGPS, 0, 0)
			Expect(s.LoadConfig(next)).To(Succeed())
			Expect(s.Counts().Length).To(Equal(10))

			next.Colors.Colors[0].H = color.MaxHue + 1
			Expect(s.LoadConfig(next)).ToNot(Succeed())
			Expect(s.Counts().Length).To(Equal(10))
		})
	})
})

var _ = Describe("Counts", func() {
	DescribeTable("ring sequence length",
		func(ring, exp int) {
			Expect(ringSequenceLength(ring, 6)).To(Equal(exp))
		},
		Entry("multiple of six", 12, 6),
		Entry("six", 6, 6),
		Entry("small odd ring", 3, 3),
		Entry("small even ring", 4, 4),
		Entry("eight halves to four", 8, 4),
		Entry("ten halves to five", 10, 5),
		Entry("sixteen halves to four", 16, 4),
		Entry("odd ring", 7, 7),
	)
})

var _ = Describe("Resolver", func() {
	It("never shows a flight mode color on LEDs facing away from the heading", func() {
		cfg := DefaultConfig()
		p := DefaultPolicy()
		counts := Counts{}
		anim := Animation{}
		background := cfg.Colors.SpecialColor(color.SpecialBackground)

		for h := 0; h < ledconfig.DirectionCount; h++ {
			snap := vehicle.Idle()
			snap.Heading = ledconfig.DirectionBit(h)
			f := frame{cfg: &cfg, counts: &counts, snap: &snap, anim: &anim, policy: p}

			for dir := ledconfig.Direction(1); dir <= ledconfig.AllDirections; dir++ {
				l := led{desc: ledconfig.New(0, 0, 0, dir, ledconfig.FunctionFlightMode, 0, 0)}
				c := f.resolve(&l)
				if dir.Overlaps(snap.Heading) {
					Expect(c).To(Equal(cfg.Colors.ModeColor(color.ModeOrientation, h)))
				} else {
					Expect(c).To(Equal(background))
				}
				Expect(f.resolve(&l)).To(Equal(c))
			}
		}
	})
})

func TestLEDStrip(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test ledstrip")
}
