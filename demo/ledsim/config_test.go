// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledsim

import (
	"time"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/store"
	"github.com/danjacques/goledstrip/vehicle"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type nullDriver struct{}

func (nullDriver) Ready() bool                { return true }
func (nullDriver) Write(*pixel.Buffer) error { return nil }

var _ = Describe("Config", func() {
	newStrip := func() *ledstrip.Strip {
		s, err := ledstrip.New(ledstrip.Options{
			Driver:  nullDriver{},
			Vehicle: &vehicle.Static{State: vehicle.Idle()},
		})
		Expect(err).ToNot(HaveOccurred())
		return s
	}

	It("uses defaults for an empty file", func() {
		cfg, err := ParseConfig(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg).To(Equal(DefaultConfig()))
	})

	It("parses a full configuration", func() {
		cfg, err := ParseConfig([]byte(`
frame_rate: 25
layout: grb
leds:
  - "0,0:3:N:A::0"
  - "1,0:0::C:O:2"
colors:
  3: "120,0,255"
mode_colors:
  - {mode: special, slot: 0, color: 10}
  - {mode: angle, slot: 2, color: 4}
visual_beeper: true
policy:
  ring_width: 3
  throttle_min: 0.5
  warning_color: 12
  blink: {period: 2s, on: 1s}
store:
  kind: sqlite
  path: /tmp/leds.db
log:
  level: debug
  format: json
script:
  cycle: 10s
`))
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.FrameRate).To(Equal(25))
		Expect(cfg.LEDs).To(HaveLen(2))
		Expect(cfg.Colors).To(HaveKeyWithValue(3, "120,0,255"))
		Expect(cfg.Store).To(Equal(StoreConfig{Kind: StoreSQLite, Path: "/tmp/leds.db", Profile: store.DefaultProfile}))
		Expect(cfg.Log).To(Equal(LogConfig{Level: "debug", Format: "json"}))
		Expect(cfg.Script.Cycle.Duration()).To(Equal(10 * time.Second))

		layout, err := cfg.BufferLayout()
		Expect(err).ToNot(HaveOccurred())
		Expect(layout).To(Equal(pixel.BufferGRB))

		p, err := cfg.StripPolicy()
		Expect(err).ToNot(HaveOccurred())
		Expect(p.RingWidth).To(Equal(3))
		Expect(p.RingSequence).To(Equal(ledstrip.DefaultPolicy().RingSequence))
		Expect(p.ThrottleMin).To(Equal(0.5))
		Expect(p.WarningColor).To(Equal(uint8(12)))
		Expect(p.Blink).To(Equal(ledstrip.Period{Period: 2 * time.Second, On: time.Second}))

		s := newStrip()
		Expect(cfg.Apply(s)).To(Succeed())
		sc := s.Config()
		Expect(ledconfig.Encode(sc.LEDs[0])).To(Equal("0,0:3:N:A::0"))
		Expect(sc.Colors.Colors[3]).To(Equal(color.HSV{H: 120, S: 0, V: 255}))
		Expect(sc.Colors.Special[0]).To(Equal(uint8(10)))
		Expect(sc.Colors.Modes[color.ModeAngle][2]).To(Equal(uint8(4)))
		Expect(sc.VisualBeeper).To(BeTrue())
		Expect(s.Counts().Count).To(Equal(2))

		t, err := cfg.Table()
		Expect(err).ToNot(HaveOccurred())
		Expect(t).To(Equal(sc.LEDs))
	})

	It("bounds the frame rate", func() {
		cfg, err := ParseConfig([]byte("frame_rate: 2000000000\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.FrameRate).To(Equal(MaxFrameRate))

		cfg, err = ParseConfig([]byte("frame_rate: -5\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.FrameRate).To(Equal(ledstrip.DefaultFrameRate))
	})

	It("applies the default layout", func() {
		s := newStrip()
		Expect(DefaultConfig().Apply(s)).To(Succeed())
		Expect(s.Counts().Count).To(Equal(len(DefaultConfig().LEDs)))
	})

	expectRejected := func(yaml string) {
		_, err := ParseConfig([]byte(yaml))
		Expect(err).To(HaveOccurred())
	}
	It("rejects unknown fields", func() { expectRejected("frame_rat: 10\n") })
	It("rejects unknown store kinds", func() { expectRejected("store: {kind: redis}\n") })
	It("rejects bad durations", func() { expectRejected("script: {cycle: soon}\n") })
	It("rejects unknown layouts", func() { expectRejected("layout: bgr\n") })

	It("rejects invalid policies", func() {
		cfg, err := ParseConfig([]byte("policy: {ring_width: 0}\n"))
		Expect(err).ToNot(HaveOccurred())
		_, err = cfg.StripPolicy()
		Expect(err).To(HaveOccurred())
	})

	It("rejects invalid edits", func() {
		for _, cfg := range []*Config{
			{LEDs: []string{"bogus"}},
			{Colors: map[int]string{16: "0,0,0"}},
			{Colors: map[int]string{0: "400,0,0"}},
			{ModeColors: []ModeColor{{Mode: "turbo"}}},
			{ModeColors: []ModeColor{{Mode: "mag", Slot: 6}}},
			{LEDs: make([]string, ledconfig.MaxStripLength+1)},
		} {
			Expect(cfg.Apply(newStrip())).ToNot(Succeed())
		}
	})

	It("parses store kind flags", func() {
		var k StoreKind
		Expect(k.Set("FILE")).To(Succeed())
		Expect(k).To(Equal(StoreFile))
		Expect(k.String()).To(Equal("file"))
		Expect(k.Set("s3")).ToNot(Succeed())
		Expect(k).To(Equal(StoreFile))
	})
})
