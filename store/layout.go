// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package store

import (
	"bytes"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/ledstrip"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	// recordMagic identifies a packed configuration record ("LEDS").
	recordMagic uint32 = 0x5344454C
	// recordVersion is the current record layout version.
	recordVersion uint16 = 1

	// descriptorWords is the number of packed words per LED descriptor.
	descriptorWords = 3
	modeSlots       = color.ModeCount * color.DirectionCount
)

// record is the packed, fixed-size persisted form of a ledstrip.Config.
//
// All multi-byte values are little-endian.
type record struct {
	Magic   uint32 `struc:"uint32,little"`
	Version uint16 `struc:"uint16,little"`

	// LEDs holds three descriptor words per LED, in table order.
	LEDs [ledconfig.MaxStripLength * descriptorWords]uint16 `struc:"[96]uint16,little"`

	Hue        [color.ConfigurableCount]uint16 `struc:"[16]uint16,little"`
	Saturation [color.ConfigurableCount]uint8  `struc:"[16]uint8"`
	Value      [color.ConfigurableCount]uint8  `struc:"[16]uint8"`

	// Modes is the mode color table, row-major by mode.
	Modes   [modeSlots]uint8          `struc:"[36]uint8"`
	Special [color.SpecialCount]uint8 `struc:"[9]uint8"`

	VisualBeeper bool `struc:"bool"`
}

func (r *record) fromConfig(cfg *ledstrip.Config) {
	*r = record{
		Magic:        recordMagic,
		Version:      recordVersion,
		Special:      cfg.Colors.Special,
		VisualBeeper: cfg.VisualBeeper,
	}

	for i, d := range cfg.LEDs {
		w := d.Words()
		copy(r.LEDs[i*descriptorWords:], w[:])
	}
	for i, c := range cfg.Colors.Colors {
		r.Hue[i], r.Saturation[i], r.Value[i] = c.H, c.S, c.V
	}
	for m, row := range cfg.Colors.Modes {
		copy(r.Modes[m*color.DirectionCount:], row[:])
	}
}

func (r *record) toConfig() (cfg ledstrip.Config, err error) {
	switch {
	case r.Magic != recordMagic:
		return cfg, errors.Errorf("bad record magic 0x%08X", r.Magic)
	case r.Version != recordVersion:
		return cfg, errors.Errorf("unsupported record version %d", r.Version)
	}

	for i := range cfg.LEDs {
		var w [descriptorWords]uint16
		copy(w[:], r.LEDs[i*descriptorWords:])
		if cfg.LEDs[i], err = ledconfig.FromWords(w); err != nil {
			return cfg, errors.Wrapf(err, "LED %d", i)
		}
	}
	for i := range cfg.Colors.Colors {
		cfg.Colors.Colors[i] = color.HSV{H: r.Hue[i], S: r.Saturation[i], V: r.Value[i]}
	}
	for m := range cfg.Colors.Modes {
		copy(cfg.Colors.Modes[m][:], r.Modes[m*color.DirectionCount:])
	}
	cfg.Colors.Special = r.Special
	cfg.VisualBeeper = r.VisualBeeper

	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal packs cfg into its compressed persisted form.
func Marshal(cfg *ledstrip.Config) ([]byte, error) {
	var rec record
	rec.fromConfig(cfg)

	var buf bytes.Buffer
	if err := struc.Pack(&buf, &rec); err != nil {
		return nil, errors.Wrap(err, "could not pack configuration record")
	}
	return snappy.Encode(nil, buf.Bytes()), nil
}

// Unmarshal unpacks a configuration produced by Marshal.
//
// The record must be consumed exactly; trailing data is an error.
func Unmarshal(data []byte) (ledstrip.Config, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return ledstrip.Config{}, errors.Wrap(err, "could not decompress configuration record")
	}

	var rec record
	r := bytes.NewReader(raw)
	if err := struc.Unpack(r, &rec); err != nil {
		return ledstrip.Config{}, errors.Wrap(err, "could not unpack configuration record")
	}
	if r.Len() != 0 {
		return ledstrip.Config{}, errors.Errorf("%d bytes of trailing data", r.Len())
	}
	return rec.toConfig()
}
