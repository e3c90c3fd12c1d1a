// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"sync"
	"time"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/support/logging"
	"github.com/danjacques/goledstrip/vehicle"

	"github.com/pkg/errors"
)

// DefaultFrameRate is the default maximum number of frames per second.
const DefaultFrameRate = 50

// Driver transmits rendered frames to the physical strip.
type Driver interface {
	// Ready returns true if the driver can accept a new frame. A strip skips
	// frames while its driver is busy and retries on the next Update.
	Ready() bool

	// Write transmits buf. The buffer is owned by the Strip and is rewritten
	// on the next frame; drivers that retain pixel data must copy it.
	Write(buf *pixel.Buffer) error
}

// Options configures a Strip.
type Options struct {
	// Driver receives rendered frames. It must not be nil.
	Driver Driver
	// Vehicle supplies a snapshot each frame. It must not be nil.
	Vehicle vehicle.Provider

	// Config is the initial configuration. If nil, DefaultConfig is used.
	Config *Config
	// Policy is the renderer tuning. If nil, DefaultPolicy is used.
	Policy *Policy

	// FrameRate is the maximum number of frames rendered per second. If <= 0,
	// DefaultFrameRate is used.
	FrameRate int
	// Layout is the channel order of the buffer handed to Driver.
	Layout pixel.BufferLayout

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L
}

// Strip owns the configuration and render state of one LED strip.
//
// Configuration edits (SetLed, SetColor, SetModeColor, LoadConfig) are safe
// for concurrent use with each other and with Update. Update, Enable, and
// Disable own the render state and must be called from a single goroutine.
type Strip struct {
	driver   Driver
	vehicle  vehicle.Provider
	policy   *Policy
	interval time.Duration
	logger   logging.L

	// mu protects cfg and counts.
	mu     sync.RWMutex
	cfg    Config
	counts Counts

	// Render state. Only touched by Update, Enable, and Disable.
	enabled       bool
	blanked       bool
	driverFailing bool
	anim          Animation
	lastFrame     time.Time
	nextFrame     time.Time
	frameCfg      Config
	frameCounts   Counts
	snap          vehicle.Snapshot
	buf           pixel.Buffer
}

// New initializes a disabled Strip.
func New(opts Options) (*Strip, error) {
	switch {
	case opts.Driver == nil:
		return nil, errors.New("a Driver is required")
	case opts.Vehicle == nil:
		return nil, errors.New("a vehicle Provider is required")
	}

	s := Strip{
		driver:  opts.Driver,
		vehicle: opts.Vehicle,
		policy:  opts.Policy,
		logger:  logging.Must(opts.Logger),
	}
	if s.policy == nil {
		s.policy = DefaultPolicy()
	}
	if err := s.policy.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid policy")
	}

	rate := opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	s.interval = time.Second / time.Duration(rate)
	s.buf.Layout = opts.Layout

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := s.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return &s, nil
}

// Enable starts rendering. Animation state is reset and the first frame is
// rendered by the next Update.
func (s *Strip) Enable(now time.Time) {
	s.enabled = true
	s.blanked = false
	s.anim.reset()
	s.lastFrame = now
	s.nextFrame = now
	s.logger.Infof("LED strip enabled (%v frame interval).", s.interval)
}

// Disable stops rendering and blanks the strip.
func (s *Strip) Disable() {
	if !s.enabled {
		return
	}
	s.enabled = false
	s.blank()
	s.logger.Infof("LED strip disabled.")
}

// Enabled returns true if the strip is rendering.
func (s *Strip) Enabled() bool { return s.enabled }

// Update renders a frame if one is due at now.
//
// Update is cheap to call more often than the frame rate: calls that arrive
// before the next scheduled frame return immediately.
func (s *Strip) Update(now time.Time) {
	if !s.enabled {
		return
	}
	if now.Before(s.nextFrame) {
		stripUpdatesThrottled.Inc()
		return
	}
	if !s.driver.Ready() {
		stripDriverBusy.Inc()
		return
	}
	s.nextFrame = now.Add(s.interval)

	s.vehicle.Snapshot(&s.snap)

	s.mu.RLock()
	s.frameCfg = s.cfg
	s.frameCounts = s.counts
	s.mu.RUnlock()

	if s.lowPower() {
		if !s.blanked {
			s.blank()
			s.blanked = true
		}
		return
	}
	s.blanked = false

	s.anim.advance(now.Sub(s.lastFrame), &s.frameCounts, &s.snap, s.policy)
	s.lastFrame = now

	s.compose()
	s.write()
}

// lowPower returns true if the host's LEDLow request applies to this frame. It
// is ignored during failsafe and while the visual beeper is sounding.
func (s *Strip) lowPower() bool {
	switch {
	case !s.snap.LEDLow:
		return false
	case s.snap.Warnings&vehicle.WarningFailsafe != 0:
		return false
	case s.frameCfg.VisualBeeper && s.snap.BeeperActive:
		return false
	default:
		return true
	}
}

// compose resolves every LED into the output buffer, in table order.
func (s *Strip) compose() {
	if s.buf.Len() != s.frameCounts.Length {
		s.buf.Reset(s.frameCounts.Length)
	}

	f := frame{
		cfg:     &s.frameCfg,
		counts:  &s.frameCounts,
		snap:    &s.snap,
		anim:    &s.anim,
		policy:  s.policy,
		modeRow: s.policy.modeRow(s.snap.Modes),
	}

	var l led
	for i := 0; i < s.frameCounts.Length; i++ {
		l.desc = s.frameCfg.LEDs[i]
		s.buf.SetPixel(i, f.resolve(&l).RGB())

		if l.desc.Function().Has(ledconfig.FunctionThrustRing) {
			l.ringIndex++
		}
		if l.desc.Overlay().Has(ledconfig.OverlayLarsonScanner) {
			l.larsonIndex++
		}
	}
}

func (s *Strip) write() {
	if err := s.driver.Write(&s.buf); err != nil {
		stripDriverErrors.Inc()
		if !s.driverFailing {
			s.logger.Warnf("Failed to write LED frame: %s", err)
			s.driverFailing = true
		}
		return
	}
	if s.driverFailing {
		s.logger.Infof("LED driver recovered.")
		s.driverFailing = false
	}
	stripFramesRendered.Inc()
}

// blank writes an all-black frame covering the configured strip length.
func (s *Strip) blank() {
	s.mu.RLock()
	n := s.counts.Length
	s.mu.RUnlock()

	s.buf.Reset(n)
	s.write()
}

// Animation returns a copy of the current animation state.
//
// Like Update, Animation must be called from the render goroutine.
func (s *Strip) Animation() Animation { return s.anim }

// Counts returns the aggregates of the current LED table.
func (s *Strip) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts
}

// Config returns a copy of the current configuration.
func (s *Strip) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// LoadConfig replaces the whole configuration.
func (s *Strip) LoadConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		stripEditsRejected.WithLabelValues("load").Inc()
		return errors.Wrap(err, "invalid configuration")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.reevaluateLocked()
	return nil
}

// ReevaluateLedConfig recomputes the aggregates derived from the LED table.
//
// Every edit method re-evaluates automatically.
func (s *Strip) ReevaluateLedConfig() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reevaluateLocked()
}

func (s *Strip) reevaluateLocked() {
	s.counts = countLEDs(&s.cfg.LEDs, s.policy)
	updateCountMetrics(&s.counts)
}

// SetLed replaces LED index with the descriptor parsed from text. It returns
// false, leaving the table unchanged, if either is invalid.
func (s *Strip) SetLed(index int, text string) bool {
	return s.reportEdit("led", s.SetLedError(index, text))
}

// SetLedError is SetLed, returning the reason for a rejected edit.
func (s *Strip) SetLedError(index int, text string) error {
	if err := checkIndex("led", index, ledconfig.MaxStripLength); err != nil {
		return err
	}
	d, err := ledconfig.Decode(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.LEDs[index] = d
	s.reevaluateLocked()
	s.logger.Debugf("LED %d set to %s", index, d)
	return nil
}

// SetColor replaces palette slot index with the "h,s,v" color in spec.
func (s *Strip) SetColor(index int, spec string) bool {
	return s.reportEdit("color", s.SetColorError(index, spec))
}

// SetColorError is SetColor, returning the reason for a rejected edit.
func (s *Strip) SetColorError(index int, spec string) error {
	if err := checkIndex("color", index, color.ConfigurableCount); err != nil {
		return err
	}
	c, err := color.ParseHSV(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Colors.Colors[index] = c
	return nil
}

// SetModeColor assigns palette index colorIndex to a mode color slot.
//
// For the six flight mode rows, slot is a direction index. For
// color.ModeSpecial, slot is a color.Special.
func (s *Strip) SetModeColor(mode color.Mode, slot, colorIndex int) bool {
	return s.reportEdit("mode_color", s.SetModeColorError(mode, slot, colorIndex))
}

// SetModeColorError is SetModeColor, returning the reason for a rejected edit.
func (s *Strip) SetModeColorError(mode color.Mode, slot, colorIndex int) error {
	if err := checkIndex("palette", colorIndex, color.ConfigurableCount); err != nil {
		return err
	}

	switch {
	case mode >= 0 && mode < color.ModeCount:
		if err := checkIndex("direction", slot, color.DirectionCount); err != nil {
			return err
		}
		s.mu.Lock()
		s.cfg.Colors.Modes[mode][slot] = uint8(colorIndex)
		s.mu.Unlock()

	case mode == color.ModeSpecial:
		if err := checkIndex("special color", slot, color.SpecialCount); err != nil {
			return err
		}
		s.mu.Lock()
		s.cfg.Colors.Special[slot] = uint8(colorIndex)
		s.mu.Unlock()

	default:
		return checkIndex("mode", int(mode), int(color.ModeSpecial)+1)
	}
	return nil
}

// SetVisualBeeper sets the visual beeper suppression flag.
func (s *Strip) SetVisualBeeper(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.VisualBeeper = v
}

func (s *Strip) reportEdit(op string, err error) bool {
	if err != nil {
		stripEditsRejected.WithLabelValues(op).Inc()
		s.logger.Warnf("Rejected %s edit: %s", op, err)
		return false
	}
	return true
}
