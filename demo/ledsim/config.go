// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledsim

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/store"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// MaxFrameRate is the highest frame rate the simulator renders at.
const MaxFrameRate = 1000

// Config is the simulator configuration file.
type Config struct {
	FrameRate int    `yaml:"frame_rate"`
	Layout    string `yaml:"layout"` // "rgb" or "grb"

	// LEDs are descriptor lines, in wiring order.
	LEDs         []string       `yaml:"leds"`
	Colors       map[int]string `yaml:"colors"` // palette index -> "h,s,v"
	ModeColors   []ModeColor    `yaml:"mode_colors"`
	VisualBeeper bool           `yaml:"visual_beeper"`

	Policy PolicyConfig `yaml:"policy"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Script ScriptConfig `yaml:"script"`
}

// ModeColor assigns a palette index to one mode color slot.
type ModeColor struct {
	Mode  string `yaml:"mode"`
	Slot  int    `yaml:"slot"`
	Color int    `yaml:"color"`
}

// PolicyConfig overrides fields of ledstrip.DefaultPolicy. Unset fields keep
// their defaults.
type PolicyConfig struct {
	RingSequence   *int     `yaml:"ring_sequence"`
	RingWidth      *int     `yaml:"ring_width"`
	RingMinHz      *int     `yaml:"ring_min_hz"`
	RingMaxHz      *int     `yaml:"ring_max_hz"`
	ThrottleMin    *float64 `yaml:"throttle_min"`
	WarningColor   *uint8   `yaml:"warning_color"`
	IndicatorColor *uint8   `yaml:"indicator_color"`
	Blink          *Period  `yaml:"blink"`
	Strobe         *Period  `yaml:"strobe"`
}

// Period is the YAML form of ledstrip.Period.
type Period struct {
	Period Duration `yaml:"period"`
	On     Duration `yaml:"on"`
}

// StoreConfig selects where the strip configuration is persisted.
type StoreConfig struct {
	Kind    StoreKind `yaml:"kind"`
	Path    string    `yaml:"path"`
	Profile string    `yaml:"profile"` // sqlite only
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ScriptConfig configures the simulated telemetry.
type ScriptConfig struct {
	Cycle Duration `yaml:"cycle"`
}

// Duration is a time.Duration read from a YAML string such as "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// StoreKind names a store implementation.
type StoreKind string

// Store kinds.
const (
	StoreNone   StoreKind = "none"
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
)

var _ pflag.Value = (*StoreKind)(nil)

func (k *StoreKind) String() string { return string(*k) }

// Set implements pflag.Value.
func (k *StoreKind) Set(v string) error {
	switch sk := StoreKind(strings.ToLower(v)); sk {
	case StoreNone, StoreFile, StoreSQLite:
		*k = sk
		return nil
	default:
		return errors.Errorf("unknown store kind %q (want none, file, or sqlite)", v)
	}
}

// Type implements pflag.Value.
func (k *StoreKind) Type() string { return "store" }

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *StoreKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return k.Set(s)
}

// DefaultConfig returns the configuration used when no file is given: a
// quad layout with arm state and thrust ring LEDs.
func DefaultConfig() *Config {
	return &Config{
		FrameRate: ledstrip.DefaultFrameRate,
		Layout:    "rgb",
		LEDs: []string{
			"0,0:0:NW:FA:IW:0",
			"3,0:0:NE:FA:IW:0",
			"3,3:0:ES:FA:IW:0",
			"0,3:0:SW:FA:IW:0",
			"1,1:0::R:T:0",
			"2,1:0::R:T:0",
			"2,2:0::R:T:0",
			"1,2:0::R:T:0",
			"5,0:10::C:O:3",
			"6,0:10::C:O:3",
			"7,0:10::C:O:3",
			"8,0:10::C:O:3",
			"5,3:0::L:B:0",
			"6,3:0::G:P:0",
			"7,3:0::S:X:0",
			"8,3:0::H::0",
		},
		Store: StoreConfig{
			Kind:    StoreNone,
			Profile: store.DefaultProfile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Script: ScriptConfig{
			Cycle: Duration(DefaultCycle),
		},
	}
}

// LoadConfig reads a Config from the YAML file at path. Fields not present in
// the file keep the values of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	return cfg, nil
}

// ParseConfig parses YAML config data. Unknown fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}

	switch {
	case cfg.FrameRate <= 0:
		cfg.FrameRate = ledstrip.DefaultFrameRate
	case cfg.FrameRate > MaxFrameRate:
		cfg.FrameRate = MaxFrameRate
	}
	if cfg.Store.Profile == "" {
		cfg.Store.Profile = store.DefaultProfile
	}
	if cfg.Script.Cycle <= 0 {
		cfg.Script.Cycle = Duration(DefaultCycle)
	}
	if _, err := cfg.BufferLayout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BufferLayout returns the pixel layout named by Layout.
func (cfg *Config) BufferLayout() (pixel.BufferLayout, error) {
	switch strings.ToLower(cfg.Layout) {
	case "", "rgb":
		return pixel.BufferRGB, nil
	case "grb":
		return pixel.BufferGRB, nil
	default:
		return 0, errors.Errorf("unknown layout %q", cfg.Layout)
	}
}

// StripPolicy returns ledstrip.DefaultPolicy with the configured overrides.
func (cfg *Config) StripPolicy() (*ledstrip.Policy, error) {
	p := ledstrip.DefaultPolicy()
	pc := &cfg.Policy

	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&p.RingSequence, pc.RingSequence)
	setInt(&p.RingWidth, pc.RingWidth)
	setInt(&p.RingMinHz, pc.RingMinHz)
	setInt(&p.RingMaxHz, pc.RingMaxHz)

	if pc.ThrottleMin != nil {
		p.ThrottleMin = *pc.ThrottleMin
	}
	if pc.WarningColor != nil {
		p.WarningColor = *pc.WarningColor
	}
	if pc.IndicatorColor != nil {
		p.IndicatorColor = *pc.IndicatorColor
	}
	if pc.Blink != nil {
		p.Blink = ledstrip.Period{Period: pc.Blink.Period.Duration(), On: pc.Blink.On.Duration()}
	}
	if pc.Strobe != nil {
		p.Strobe = ledstrip.Period{Period: pc.Strobe.Period.Duration(), On: pc.Strobe.On.Duration()}
	}

	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid policy")
	}
	return p, nil
}

// Apply edits s to hold the configured LEDs and colors.
func (cfg *Config) Apply(s *ledstrip.Strip) error {
	if len(cfg.LEDs) > ledconfig.MaxStripLength {
		return errors.Errorf("%d LEDs configured, at most %d allowed", len(cfg.LEDs), ledconfig.MaxStripLength)
	}

	for i, line := range cfg.LEDs {
		if err := s.SetLedError(i, line); err != nil {
			return errors.Wrapf(err, "LED %d", i)
		}
	}
	for idx, spec := range cfg.Colors {
		if err := s.SetColorError(idx, spec); err != nil {
			return errors.Wrapf(err, "color %d", idx)
		}
	}
	for i, mc := range cfg.ModeColors {
		mode, err := parseMode(mc.Mode)
		if err != nil {
			return errors.Wrapf(err, "mode color %d", i)
		}
		if err := s.SetModeColorError(mode, mc.Slot, mc.Color); err != nil {
			return errors.Wrapf(err, "mode color %d", i)
		}
	}
	s.SetVisualBeeper(cfg.VisualBeeper)
	return nil
}

// Table decodes the configured LEDs.
func (cfg *Config) Table() (t ledconfig.Table, err error) {
	if len(cfg.LEDs) > len(t) {
		return t, errors.Errorf("%d LEDs configured, at most %d allowed", len(cfg.LEDs), len(t))
	}
	for i, line := range cfg.LEDs {
		if t[i], err = ledconfig.Decode(line); err != nil {
			return t, errors.Wrapf(err, "LED %d", i)
		}
	}
	return t, nil
}

func parseMode(name string) (color.Mode, error) {
	for m := color.ModeOrientation; m <= color.ModeSpecial; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown mode %q", name)
}
