// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledconfig

import (
	"fmt"
	"strings"
)

// Function is a bitmask of base functions.
type Function uint8

// Base function bits.
const (
	FunctionColor Function = 1 << iota
	FunctionFlightMode
	FunctionArmState
	FunctionBattery
	FunctionRSSI
	FunctionGPS
	FunctionThrustRing
	FunctionChannel
)

// FunctionCount is the number of base function bits.
const FunctionCount = 8

// Overlay is a bitmask of overlays.
type Overlay uint8

// Overlay bits.
const (
	OverlayThrottle Overlay = 1 << iota
	OverlayLarsonScanner
	OverlayBlink
	OverlayLandingFlash
	OverlayIndicator
	OverlayWarning
	OverlayStrobe
)

// OverlayCount is the number of overlay bits.
const OverlayCount = 7

// Direction is a bitmask of facing directions.
type Direction uint8

// Direction bits.
const (
	DirectionNorth Direction = 1 << iota
	DirectionEast
	DirectionSouth
	DirectionWest
	DirectionUp
	DirectionDown
)

const (
	// DirectionCount is the number of direction bits.
	DirectionCount = 6

	// AllDirections has every direction bit set.
	AllDirections = DirectionNorth | DirectionEast | DirectionSouth | DirectionWest |
		DirectionUp | DirectionDown
)

// flagName describes one bit of a mask for text conversion.
type flagName struct {
	letter byte
	text   string
}

// Table entries are in bit order.
var (
	functionNames = [FunctionCount]flagName{
		{'C', "COLOR"},
		{'F', "FLIGHT_MODE"},
		{'A', "ARM_STATE"},
		{'L', "BATTERY"},
		{'S', "RSSI"},
		{'G', "GPS"},
		{'R', "THRUST_RING"},
		{'H', "CHANNEL"},
	}

	overlayNames = [OverlayCount]flagName{
		{'T', "THROTTLE"},
		{'O', "LARSON_SCANNER"},
		{'B', "BLINK"},
		{'P', "LANDING_FLASH"},
		{'I', "INDICATOR"},
		{'W', "WARNING"},
		{'X', "STROBE"},
	}

	directionNames = [DirectionCount]flagName{
		{'N', "NORTH"},
		{'E', "EAST"},
		{'S', "SOUTH"},
		{'W', "WEST"},
		{'U', "UP"},
		{'D', "DOWN"},
	}
)

// Has returns true if every bit in o is set in f.
func (f Function) Has(o Function) bool { return f&o == o }

// Letters returns the textual letter form of f.
func (f Function) Letters() string { return maskLetters(uint8(f), functionNames[:]) }

// String writes a string version of these functions.
//
// Output looks like:
// 0x03(COLOR|FLIGHT_MODE)
func (f Function) String() string { return maskString(uint8(f), functionNames[:]) }

// Has returns true if every bit in o is set in ov.
func (ov Overlay) Has(o Overlay) bool { return ov&o == o }

// Letters returns the textual letter form of ov.
func (ov Overlay) Letters() string { return maskLetters(uint8(ov), overlayNames[:]) }

func (ov Overlay) String() string { return maskString(uint8(ov), overlayNames[:]) }

// Has returns true if every bit in o is set in d.
func (d Direction) Has(o Direction) bool { return d&o == o }

// Overlaps returns true if d and o share at least one direction.
func (d Direction) Overlaps(o Direction) bool { return d&o != 0 }

// Letters returns the textual letter form of d.
func (d Direction) Letters() string { return maskLetters(uint8(d), directionNames[:]) }

func (d Direction) String() string { return maskString(uint8(d), directionNames[:]) }

// DirectionBit returns the Direction with only bit id set.
func DirectionBit(id int) Direction { return Direction(1 << uint(id)) }

func maskLetters(v uint8, names []flagName) string {
	var sb strings.Builder
	for i, n := range names {
		if v&(1<<uint(i)) != 0 {
			sb.WriteByte(n.letter)
		}
	}
	return sb.String()
}

func maskString(v uint8, names []flagName) string {
	parts := make([]string, 0, len(names))
	for i, n := range names {
		if v&(1<<uint(i)) != 0 {
			parts = append(parts, n.text)
		}
	}

	if len(parts) > 0 {
		return fmt.Sprintf("0x%02X(%s)", v, strings.Join(parts, "|"))
	}
	return fmt.Sprintf("0x%02X", v)
}

// parseLetters converts a letter field into a mask. It returns the first
// unrecognized letter on failure.
func parseLetters(v string, names []flagName) (mask uint8, bad byte, ok bool) {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}

		found := false
		for bit, n := range names {
			if n.letter == c {
				mask |= 1 << uint(bit)
				found = true
				break
			}
		}
		if !found {
			return 0, v[i], false
		}
	}
	return mask, 0, true
}
