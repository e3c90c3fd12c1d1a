// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package protostream

import (
	"bytes"
	"io"

	"github.com/danjacques/goledstrip/support/dataio"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// MaxMessageSize is the largest message that may be written or read.
const MaxMessageSize = 1 << 20

// The maximum varint size, in bytes. This is the total number of bytes needed
// to encode the largest uint64 using proto.EncodeVarint.
const maxVarintSizeU64 = 10

// Decoder is a reusable object which decodes a series of messages from a proto
// stream.
type Decoder struct {
	buf     *proto.Buffer
	dataBuf bytes.Buffer

	sizeBuf [maxVarintSizeU64]byte
}

func (d *Decoder) bufferNextVarint(r dataio.Reader) ([]byte, error) {
	sizeBuf := d.sizeBuf[:0]
	for len(sizeBuf) < maxVarintSizeU64 {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(sizeBuf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return sizeBuf, err
		}

		sizeBuf = append(sizeBuf, b)
		if (b & 0x80) == 0 {
			// Varint does not have continuation bit set.
			return sizeBuf, nil
		}
	}
	return sizeBuf, errors.New("size prefix is not a valid varint")
}

// Read reads the next message from r into pb, returning the number of bytes
// consumed. pb is reset first, so a message may be reused between calls.
//
// Read returns io.EOF if r ends cleanly between messages, and
// io.ErrUnexpectedEOF if it ends within one. The size prefix is read
// byte-by-byte, so r should be buffered.
func (d *Decoder) Read(r dataio.Reader, pb proto.Message) (int64, error) {
	if d.buf == nil {
		d.buf = proto.NewBuffer(nil)
	}

	sizeBuf, err := d.bufferNextVarint(r)
	count := int64(len(sizeBuf))
	if err != nil {
		return count, err
	}

	// The loop above vetted the varint, so this must succeed.
	size, amt := proto.DecodeVarint(sizeBuf)
	if amt != len(sizeBuf) {
		panic("incompatible proto varint encoding")
	}
	if size > MaxMessageSize {
		return count, errors.Errorf("message size %d exceeds maximum %d", size, MaxMessageSize)
	}

	d.dataBuf.Reset()
	d.dataBuf.Grow(int(size))
	lr := io.LimitedReader{
		R: r,
		N: int64(size),
	}
	readCount, err := d.dataBuf.ReadFrom(&lr)
	count += readCount
	switch {
	case err != nil:
		return count, err
	case readCount != int64(size):
		return count, io.ErrUnexpectedEOF
	}

	pb.Reset()
	d.buf.SetBuf(d.dataBuf.Bytes())
	return count, d.buf.Unmarshal(pb)
}
