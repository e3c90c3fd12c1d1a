// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains lazy formatting helpers for debug logging.
package fmtutil

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex is a byte slice that renders as a hex-dumped string.
//
// It can be used for easy lazy hex dumping.
type Hex []byte

func (h Hex) String() string { return hex.Dump([]byte(h)) }

// Words is a uint16 slice that renders as a sequence of hex words.
//
// Output as: "[3]uint16{0x2012, 0xF320, 0x0017}"
type Words []uint16

func (ws Words) String() string {
	var sb strings.Builder
	sb.Grow((8 * len(ws)) + 16)
	fmt.Fprintf(&sb, "[%d]uint16{", len(ws))
	for i, w := range ws {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%04X", w)
	}
	sb.WriteString("}")
	return sb.String()
}
