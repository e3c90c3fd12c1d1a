// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dataio contains byte-oriented reader helpers.
package dataio

import (
	"io"
)

// Reader represents a Reader that can read both individual bytes and
// sequences of bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for the specified Reader.
//
// If r does not implement io.ByteReader, ReadByte is simulated with one-byte
// reads. Callers reading byte-at-a-time should supply a buffered Reader.
func MakeReader(r io.Reader) Reader {
	if dr, ok := r.(Reader); ok {
		return dr
	}
	return &simulatedReader{r}
}

type simulatedReader struct {
	io.Reader
}

func (r *simulatedReader) ReadByte() (v byte, err error) {
	var d [1]byte
	var amt int

	amt, err = r.Read(d[:])
	if amt == 1 {
		v, err = d[0], nil
	} else if err == nil {
		err = io.ErrNoProgress
	}
	return
}

// CountingReader is a Reader that counts the bytes read through it.
type CountingReader struct {
	R Reader
	// N is the number of bytes read so far.
	N int64
}

var _ Reader = (*CountingReader)(nil)

func (cr *CountingReader) Read(b []byte) (int, error) {
	amt, err := cr.R.Read(b)
	cr.N += int64(amt)
	return amt, err
}

// ReadByte implements io.ByteReader.
func (cr *CountingReader) ReadByte() (byte, error) {
	b, err := cr.R.ReadByte()
	if err == nil {
		cr.N++
	}
	return b, err
}
