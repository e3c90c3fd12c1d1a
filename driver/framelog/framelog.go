// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package framelog records rendered LED frames to a compressed stream, and
// reads and replays them.
//
// A frame log is a snappy-framed stream of varint-delimited
// google.protobuf.Struct messages. The first message is a header naming the
// recording session; each following message is one frame.
package framelog

import (
	"time"

	"github.com/danjacques/goledstrip/pixel"

	"github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"
)

// Version is the frame log format version written by Recorder.
const Version = 1

const (
	fieldType    = "type"
	fieldVersion = "version"
	fieldSession = "session"
	fieldStarted = "started"
	fieldSeq     = "seq"
	fieldOffset  = "offset_ns"
	fieldPixels  = "pixels"

	typeHeader = "header"
	typeFrame  = "frame"
)

// Frame is a single recorded frame.
type Frame struct {
	// Seq is the frame's position in the recording, starting at zero.
	Seq int64
	// Offset is the time of the frame relative to the start of the recording.
	Offset time.Duration
	// Pixels is the frame content, in strip order.
	Pixels []pixel.P
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func stringValue(v string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}
}

func getString(s *structpb.Struct, key string) (string, error) {
	sv, ok := s.GetFields()[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", errors.Errorf("missing string field %q", key)
	}
	return sv.StringValue, nil
}

func getNumber(s *structpb.Struct, key string) (float64, error) {
	nv, ok := s.GetFields()[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, errors.Errorf("missing number field %q", key)
	}
	return nv.NumberValue, nil
}

// decodeFrame loads a frame message into f.
func decodeFrame(s *structpb.Struct, f *Frame) error {
	if t, err := getString(s, fieldType); err != nil || t != typeFrame {
		return errors.Errorf("message is not a frame (type %q)", t)
	}

	seq, err := getNumber(s, fieldSeq)
	if err != nil {
		return err
	}
	offset, err := getNumber(s, fieldOffset)
	if err != nil {
		return err
	}

	lv, ok := s.GetFields()[fieldPixels].GetKind().(*structpb.Value_ListValue)
	if !ok {
		return errors.Errorf("missing list field %q", fieldPixels)
	}
	vals := lv.ListValue.GetValues()

	f.Seq = int64(seq)
	f.Offset = time.Duration(offset)
	f.Pixels = make([]pixel.P, len(vals))
	for i, v := range vals {
		nv, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return errors.Errorf("pixel %d is not a number", i)
		}
		f.Pixels[i] = pixel.FromPacked(uint32(nv.NumberValue))
	}
	return nil
}
