// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framelog

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/danjacques/goledstrip/support/dataio"
	"github.com/danjacques/goledstrip/support/protostream"

	"github.com/golang/protobuf/ptypes/struct"
	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Reader reads frames from a frame log.
type Reader struct {
	// Session is the recording's session ID.
	Session uuid.UUID
	// Started is the time the recording started.
	Started time.Time

	closer io.Closer
	cr     dataio.CountingReader
	dec    protostream.Decoder
	msg    structpb.Struct
}

// NewReader reads the header of the frame log in r.
//
// If r is an io.Closer, the Reader takes ownership of it and closes it on
// Close.
func NewReader(r io.Reader) (*Reader, error) {
	fr := Reader{
		cr: dataio.CountingReader{R: bufio.NewReader(snappy.NewReader(r))},
	}
	if c, ok := r.(io.Closer); ok {
		fr.closer = c
	}

	if _, err := fr.dec.Read(&fr.cr, &fr.msg); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if err := fr.loadHeader(); err != nil {
		return nil, errors.Wrap(err, "invalid header")
	}
	return &fr, nil
}

// Open opens the frame log at path.
func Open(path string) (*Reader, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open frame log")
	}

	r, err := NewReader(fd)
	if err != nil {
		_ = fd.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) loadHeader() error {
	if t, err := getString(&r.msg, fieldType); err != nil || t != typeHeader {
		return errors.Errorf("first message is not a header (type %q)", t)
	}

	version, err := getNumber(&r.msg, fieldVersion)
	if err != nil {
		return err
	}
	if version != Version {
		return errors.Errorf("unsupported version %v", version)
	}

	session, err := getString(&r.msg, fieldSession)
	if err != nil {
		return err
	}
	if r.Session, err = uuid.Parse(session); err != nil {
		return errors.Wrap(err, "invalid session")
	}

	started, err := getString(&r.msg, fieldStarted)
	if err != nil {
		return err
	}
	if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return errors.Wrap(err, "invalid start time")
	}
	return nil
}

// Next reads the next frame. It returns io.EOF after the last frame.
func (r *Reader) Next() (*Frame, error) {
	offset := r.cr.N
	if _, err := r.dec.Read(&r.cr, &r.msg); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, errors.Wrapf(err, "read frame at offset %d", offset)
	}

	var f Frame
	if err := decodeFrame(&r.msg, &f); err != nil {
		return nil, errors.Wrapf(err, "decode frame at offset %d", offset)
	}
	return &f, nil
}

// Close releases the Reader's underlying stream, if it owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}
