// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package color

import (
	"fmt"
)

const (
	// ConfigurableCount is the number of general-purpose palette slots.
	ConfigurableCount = 16
	// ModeCount is the number of modes that have directional color indexes.
	ModeCount = 6
	// DirectionCount is the number of directions per mode.
	DirectionCount = 6
	// SpecialCount is the number of special color slots.
	SpecialCount = 9
)

// Palette indexes of the default colors.
const (
	Black uint8 = iota
	White
	Red
	Orange
	Yellow
	LimeGreen
	Green
	MintGreen
	Cyan
	LightBlue
	Blue
	DarkViolet
	Magenta
	DeepPink
)

// Mode selects a row of the mode color table.
type Mode int

const (
	// ModeOrientation is used when no other flight mode is active.
	ModeOrientation Mode = iota
	// ModeHeadfree is the headfree flight mode.
	ModeHeadfree
	// ModeHorizon is the horizon flight mode.
	ModeHorizon
	// ModeAngle is the angle flight mode.
	ModeAngle
	// ModeMag is the magnetometer heading-hold mode.
	ModeMag
	// ModeBaro is the barometer altitude-hold mode.
	ModeBaro

	// ModeSpecial addresses the special color slots rather than a mode row.
	ModeSpecial
)

var modeNames = [...]string{
	ModeOrientation: "ORIENTATION",
	ModeHeadfree:    "HEADFREE",
	ModeHorizon:     "HORIZON",
	ModeAngle:       "ANGLE",
	ModeMag:         "MAG",
	ModeBaro:        "BARO",
	ModeSpecial:     "SPECIAL",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(m))
}

// Special identifies a special color slot.
type Special int

const (
	// SpecialDisarmed is shown by arm-state LEDs while disarmed.
	SpecialDisarmed Special = iota
	// SpecialArmed is shown by arm-state LEDs while armed.
	SpecialArmed
	// SpecialAnimation is the larson scanner foreground.
	SpecialAnimation
	// SpecialBackground is used wherever an LED is "off".
	SpecialBackground
	// SpecialBlinkBackground is shown during the off phase of a blink.
	SpecialBlinkBackground
	// SpecialGPSNoSats is shown when no satellites are visible.
	SpecialGPSNoSats
	// SpecialGPSNoLock is shown when satellites are visible without a fix.
	SpecialGPSNoLock
	// SpecialGPSLocked is shown with a GPS fix.
	SpecialGPSLocked
	// SpecialStrobe is the strobe pulse color.
	SpecialStrobe
)

var specialNames = [SpecialCount]string{
	"DISARMED", "ARMED", "ANIMATION", "BACKGROUND", "BLINK_BACKGROUND",
	"GPS_NO_SATS", "GPS_NO_LOCK", "GPS_LOCKED", "STROBE",
}

func (s Special) String() string {
	if s >= 0 && int(s) < len(specialNames) {
		return specialNames[s]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// ModeColors maps each direction to a palette index.
type ModeColors [DirectionCount]uint8

// Table is the full color configuration of a strip.
//
// Special and Modes entries are indexes into Colors. The zero value is a valid
// all-black Table.
type Table struct {
	// Colors is the general-purpose palette.
	Colors [ConfigurableCount]HSV
	// Special holds the palette index for each special color slot.
	Special [SpecialCount]uint8
	// Modes holds the directional palette indexes for each mode.
	Modes [ModeCount]ModeColors
}

// Color returns the palette color at index. Indexes wrap into the palette so
// that every lookup is in bounds.
func (t *Table) Color(index uint8) HSV { return t.Colors[index%ConfigurableCount] }

// SpecialColor returns the color assigned to special slot s.
func (t *Table) SpecialColor(s Special) HSV { return t.Color(t.Special[s]) }

// ModeColor returns the color assigned to direction dir of mode m.
func (t *Table) ModeColor(m Mode, dir int) HSV { return t.Color(t.Modes[m][dir]) }

var defaultPalette = [ConfigurableCount]HSV{
	Black:      {0, 0, 0},
	White:      {0, 0, 255},
	Red:        {0, 255, 255},
	Orange:     {30, 255, 255},
	Yellow:     {60, 255, 255},
	LimeGreen:  {90, 255, 255},
	Green:      {120, 255, 255},
	MintGreen:  {150, 255, 255},
	Cyan:       {180, 255, 255},
	LightBlue:  {210, 255, 255},
	Blue:       {240, 255, 255},
	DarkViolet: {270, 255, 255},
	Magenta:    {300, 255, 255},
	DeepPink:   {330, 255, 255},
}

// Directional order: north, east, south, west, up, down.
var defaultModes = [ModeCount]ModeColors{
	ModeOrientation: {White, DarkViolet, Red, DeepPink, Blue, Orange},
	ModeHeadfree:    {LimeGreen, DarkViolet, Orange, DeepPink, Blue, Orange},
	ModeHorizon:     {Blue, DarkViolet, Yellow, DeepPink, Blue, Orange},
	ModeAngle:       {Cyan, DarkViolet, Yellow, DeepPink, Blue, Orange},
	ModeMag:         {MintGreen, DarkViolet, Orange, DeepPink, Blue, Orange},
	ModeBaro:        {LightBlue, DarkViolet, Red, DeepPink, Blue, Orange},
}

var defaultSpecial = [SpecialCount]uint8{
	SpecialDisarmed:        Green,
	SpecialArmed:           Blue,
	SpecialAnimation:       White,
	SpecialBackground:      Black,
	SpecialBlinkBackground: Black,
	SpecialGPSNoSats:       Red,
	SpecialGPSNoLock:       Orange,
	SpecialGPSLocked:       Green,
	SpecialStrobe:          White,
}

// DefaultTable returns the stock color configuration.
func DefaultTable() Table {
	return Table{
		Colors:  defaultPalette,
		Special: defaultSpecial,
		Modes:   defaultModes,
	}
}
