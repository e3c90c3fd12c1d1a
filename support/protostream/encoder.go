// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package protostream reads and writes streams of varint length-prefixed
// protobuf messages.
package protostream

import (
	"io"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// Encoder encodes a protobuf message stream to an io.Writer.
//
// An Encoder reuses its buffer between messages, and is not safe for
// concurrent use.
type Encoder struct {
	buf *proto.Buffer
}

// Write writes pb to w, preceded by its size. It returns the number of bytes
// written.
func (e *Encoder) Write(w io.Writer, pb proto.Message) (int, error) {
	if e.buf == nil {
		e.buf = proto.NewBuffer(nil)
	} else {
		e.buf.Reset()
	}

	size := proto.Size(pb)
	if size > MaxMessageSize {
		return 0, errors.Errorf("message size %d exceeds maximum %d", size, MaxMessageSize)
	}
	if err := e.buf.EncodeVarint(uint64(size)); err != nil {
		return 0, err
	}
	if err := e.buf.Marshal(pb); err != nil {
		return 0, errors.Wrap(err, "marshal message")
	}
	return w.Write(e.buf.Bytes())
}
