// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies a DecodeError.
type ErrorKind int

const (
	// MalformedField is a missing, non-numeric, or out-of-range field.
	MalformedField ErrorKind = iota
	// UnknownSymbol is an unrecognized direction, function, or overlay letter.
	UnknownSymbol
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedField:
		return "malformed field"
	case UnknownSymbol:
		return "unknown symbol"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// DecodeError is returned by Decode when text is not a valid descriptor.
type DecodeError struct {
	Kind  ErrorKind
	Field string
	Text  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s in %s: %q", e.Kind, e.Field, e.Text)
}

// Field separators. The text form is:
//
//	x,y:color:directions:functions:overlays:params
const (
	fieldSep    = ":"
	positionSep = ","
	fieldCount  = 6
)

// Decode parses the text form of a Descriptor.
//
// Letter fields may be empty and are case-insensitive.
func Decode(text string) (Descriptor, error) {
	fields := strings.Split(strings.TrimSpace(text), fieldSep)
	if len(fields) != fieldCount {
		return Descriptor{}, &DecodeError{MalformedField, "descriptor", text}
	}

	pos := strings.Split(fields[0], positionSep)
	if len(pos) != 2 {
		return Descriptor{}, &DecodeError{MalformedField, "position", fields[0]}
	}
	x, err := parseBounded("x", pos[0], MaxCoordinate)
	if err != nil {
		return Descriptor{}, err
	}
	y, err := parseBounded("y", pos[1], MaxCoordinate)
	if err != nil {
		return Descriptor{}, err
	}
	color, err := parseBounded("color", fields[1], MaxColor)
	if err != nil {
		return Descriptor{}, err
	}

	dir, err := parseMask("direction", fields[2], directionNames[:])
	if err != nil {
		return Descriptor{}, err
	}
	fn, err := parseMask("function", fields[3], functionNames[:])
	if err != nil {
		return Descriptor{}, err
	}
	ov, err := parseMask("overlay", fields[4], overlayNames[:])
	if err != nil {
		return Descriptor{}, err
	}

	params, err := parseBounded("params", fields[5], MaxParams)
	if err != nil {
		return Descriptor{}, err
	}

	return New(x, y, uint8(color), Direction(dir), Function(fn), Overlay(ov), uint8(params)), nil
}

// Encode returns the canonical text form of d.
//
// Decode(Encode(d)) == d for every valid Descriptor.
func Encode(d Descriptor) string {
	return fmt.Sprintf("%d,%d:%d:%s:%s:%s:%d",
		d.X(), d.Y(), d.Color(), d.Direction().Letters(), d.Function().Letters(),
		d.Overlay().Letters(), d.Params())
}

func parseBounded(field, v string, max int) (int, error) {
	v = strings.TrimSpace(v)
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > max {
		return 0, &DecodeError{MalformedField, field, v}
	}
	return n, nil
}

func parseMask(field, v string, names []flagName) (uint8, error) {
	mask, bad, ok := parseLetters(strings.TrimSpace(v), names)
	if !ok {
		return 0, &DecodeError{UnknownSymbol, field, string(bad)}
	}
	return mask, nil
}
