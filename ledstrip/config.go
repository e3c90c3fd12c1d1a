// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"fmt"

	"github.com/danjacques/goledstrip/color"
	"github.com/danjacques/goledstrip/ledconfig"

	"github.com/pkg/errors"
)

// Config is the persisted configuration of a strip. It is loaded and saved as
// a whole.
type Config struct {
	// LEDs is the LED descriptor table, in wiring order.
	LEDs ledconfig.Table
	// Colors is the palette, special colors, and mode colors.
	Colors color.Table
	// VisualBeeper suppresses low-battery LEDs while the beeper is sounding.
	VisualBeeper bool
}

// DefaultConfig returns a Config with no LEDs and the stock color table.
func DefaultConfig() Config {
	return Config{Colors: color.DefaultTable()}
}

// Validate checks that every color index in cfg refers to a palette slot.
func (cfg *Config) Validate() error {
	for i, idx := range cfg.Colors.Special {
		if idx >= color.ConfigurableCount {
			return errors.Errorf("special color %s index %d out of range", color.Special(i), idx)
		}
	}
	for m, row := range cfg.Colors.Modes {
		for dir, idx := range row {
			if idx >= color.ConfigurableCount {
				return errors.Errorf("mode %s direction %d color index %d out of range", color.Mode(m), dir, idx)
			}
		}
	}
	for i, c := range cfg.Colors.Colors {
		if c.H > color.MaxHue {
			return errors.Errorf("color %d hue %d out of range", i, c.H)
		}
	}
	return nil
}

// IndexError is returned when an edit addresses a slot that does not exist.
type IndexError struct {
	// What names the indexed table.
	What  string
	Index int
	// Limit is the exclusive upper bound of valid indexes.
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.What, e.Index, e.Limit)
}

func checkIndex(what string, index, limit int) error {
	if index < 0 || index >= limit {
		return &IndexError{What: what, Index: index, Limit: limit}
	}
	return nil
}
