// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framelog

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/support/logging"
	"github.com/danjacques/goledstrip/support/protostream"

	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/struct"
	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	// Next, if not nil, receives every frame after it has been recorded. The
	// Recorder is ready whenever Next is.
	Next ledstrip.Driver

	// Session identifies the recording. If zero, a random session is generated.
	Session uuid.UUID

	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L
}

// Recorder is a ledstrip.Driver that records every frame it is given.
//
// A Recorder is not safe for concurrent use.
type Recorder struct {
	next    ledstrip.Driver
	session uuid.UUID
	now     func() time.Time
	logger  logging.L

	closer io.Closer
	bw     *bufio.Writer
	sw     *snappy.Writer
	enc    protostream.Encoder

	start  time.Time
	frames int64
	bytes  int64

	// Reused per frame.
	msg    structpb.Struct
	pixels structpb.ListValue
}

var _ ledstrip.Driver = (*Recorder)(nil)

// NewRecorder starts a recording written to w.
//
// If w is an io.Closer, the Recorder takes ownership of it and closes it on
// Close.
func NewRecorder(w io.Writer, opts RecorderOptions) (*Recorder, error) {
	r := Recorder{
		next:    opts.Next,
		session: opts.Session,
		now:     opts.Now,
		logger:  logging.Must(opts.Logger),
	}
	if r.session == uuid.Nil {
		r.session = uuid.New()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}

	r.bw = bufio.NewWriter(w)
	r.sw = snappy.NewBufferedWriter(r.bw)
	r.start = r.now()

	started, err := ptypes.TimestampProto(r.start)
	if err != nil {
		return nil, errors.Wrap(err, "invalid start time")
	}
	header := structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldType:    stringValue(typeHeader),
			fieldVersion: numberValue(Version),
			fieldSession: stringValue(r.session.String()),
			fieldStarted: stringValue(ptypes.TimestampString(started)),
		},
	}
	if err := r.writeMessage(&header); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	r.msg.Fields = map[string]*structpb.Value{
		fieldType:   stringValue(typeFrame),
		fieldSeq:    numberValue(0),
		fieldOffset: numberValue(0),
		fieldPixels: {Kind: &structpb.Value_ListValue{ListValue: &r.pixels}},
	}

	recorderRecordingGauge.Inc()
	r.logger.Infof("Recording frames to session %s.", r.session)
	return &r, nil
}

// Create starts a recording in a new file at path.
func Create(path string, opts RecorderOptions) (*Recorder, error) {
	fd, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create frame log")
	}

	r, err := NewRecorder(fd, opts)
	if err != nil {
		_ = fd.Close()
		return nil, err
	}
	return r, nil
}

// Session returns the recording's session ID.
func (r *Recorder) Session() uuid.UUID { return r.session }

// Frames returns the number of frames recorded so far.
func (r *Recorder) Frames() int64 { return r.frames }

// Bytes returns the number of uncompressed bytes recorded so far.
func (r *Recorder) Bytes() int64 { return r.bytes }

// Ready implements ledstrip.Driver.
func (r *Recorder) Ready() bool { return r.next == nil || r.next.Ready() }

// Write implements ledstrip.Driver.
func (r *Recorder) Write(buf *pixel.Buffer) error {
	if r.sw == nil {
		return errors.New("recorder is closed")
	}

	n := buf.Len()
	if cap(r.pixels.Values) < n {
		r.pixels.Values = make([]*structpb.Value, n)
		for i := range r.pixels.Values {
			r.pixels.Values[i] = numberValue(0)
		}
	}
	r.pixels.Values = r.pixels.Values[:n]
	for i, v := range r.pixels.Values {
		v.Kind.(*structpb.Value_NumberValue).NumberValue = float64(buf.Pixel(i).Packed())
	}

	r.msg.Fields[fieldSeq].Kind.(*structpb.Value_NumberValue).NumberValue = float64(r.frames)
	r.msg.Fields[fieldOffset].Kind.(*structpb.Value_NumberValue).NumberValue = float64(r.now().Sub(r.start))

	if err := r.writeMessage(&r.msg); err != nil {
		recorderErrors.Inc()
		return errors.Wrap(err, "record frame")
	}
	r.frames++
	recorderFrames.Inc()

	if r.next != nil {
		return r.next.Write(buf)
	}
	return nil
}

func (r *Recorder) writeMessage(msg *structpb.Struct) error {
	amt, err := r.enc.Write(r.sw, msg)
	r.bytes += int64(amt)
	return err
}

// Close finalizes the recording, flushing all buffered frames.
func (r *Recorder) Close() (err error) {
	if r.sw == nil {
		return nil
	}
	recorderRecordingGauge.Dec()

	if r.closer != nil {
		defer func() {
			if closeErr := r.closer.Close(); err == nil {
				err = closeErr
			}
		}()
	}

	sw := r.sw
	r.sw = nil
	if err = sw.Close(); err != nil {
		return
	}
	if err = r.bw.Flush(); err != nil {
		return
	}

	r.logger.Infof("Recorded %d frame(s) (%d bytes) to session %s.", r.frames, r.bytes, r.session)
	return
}
