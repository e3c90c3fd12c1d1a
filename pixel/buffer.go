// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixel

import (
	"github.com/pkg/errors"
)

// BufferLayout is the channel order of a pixel buffer.
type BufferLayout int

const (
	// BufferRGB is a BufferLayout specifying a series of contiguous (R, G, B)
	// pixel value bytes.
	BufferRGB BufferLayout = iota
	// BufferGRB is a BufferLayout specifying a series of contiguous (G, R, B)
	// pixel value bytes, the native order of WS2811-family strips.
	BufferGRB
)

// Buffer holds a series of consecutive pixels in a driver's wire order.
//
// A Buffer is sized once with Reset and then rewritten in place every frame,
// so steady-state rendering does not allocate.
type Buffer struct {
	// Layout is the buffer layout to use.
	//
	// Adjusting this value will invalidate the current buffered data. The user
	// must call Reset afterwards.
	Layout BufferLayout

	buf []byte
}

// Len returns the number of pixels allocated in pb.
func (pb *Buffer) Len() int { return len(pb.buf) / pixelSize }

// Reset clears the buffer and sizes it for size pixels.
//
// If the underlying buffer is already >= this size, it will be reused;
// otherwise, a new buffer will be allocated.
func (pb *Buffer) Reset(size int) {
	bytesNeeded := size * pixelSize
	if cap(pb.buf) < bytesNeeded {
		pb.buf = make([]byte, bytesNeeded)
		return
	}

	pb.buf = pb.buf[:bytesNeeded]
	pb.Clear()
}

// Clear sets every pixel to black without changing the length.
func (pb *Buffer) Clear() {
	for i := range pb.buf {
		pb.buf[i] = 0
	}
}

// CloneFrom makes pb an independent copy of other.
func (pb *Buffer) CloneFrom(other *Buffer) {
	pb.Layout = other.Layout
	if cap(pb.buf) < len(other.buf) {
		pb.buf = make([]byte, len(other.buf))
	} else {
		pb.buf = pb.buf[:len(other.buf)]
	}
	copy(pb.buf, other.buf)
}

// Bytes returns the raw bytes for this buffer.
func (pb *Buffer) Bytes() []byte { return pb.buf }

// Pixel returns the pixel data for the Pixel at index i.
//
// If i is out of bounds, Pixel will return a zero value.
func (pb *Buffer) Pixel(i int) (p P) {
	offset := i * pixelSize
	if offset < 0 || offset >= len(pb.buf) {
		return
	}

	switch pb.Layout {
	case BufferRGB:
		p.Red, p.Green, p.Blue = pb.buf[offset], pb.buf[offset+1], pb.buf[offset+2]
	case BufferGRB:
		p.Green, p.Red, p.Blue = pb.buf[offset], pb.buf[offset+1], pb.buf[offset+2]
	default:
		panic(errors.Errorf("unknown buffer layout: %v", pb.Layout))
	}
	return
}

// SetPixel sets the pixel value at index i.
//
// If i is out of bounds, SetPixel will do nothing.
func (pb *Buffer) SetPixel(i int, p P) {
	offset := i * pixelSize
	if offset < 0 || offset >= len(pb.buf) {
		return
	}

	switch pb.Layout {
	case BufferRGB:
		pb.buf[offset], pb.buf[offset+1], pb.buf[offset+2] = p.Red, p.Green, p.Blue
	case BufferGRB:
		pb.buf[offset], pb.buf[offset+1], pb.buf[offset+2] = p.Green, p.Red, p.Blue
	default:
		panic(errors.Errorf("unknown buffer layout: %v", pb.Layout))
	}
}

// SetPixels sets the Buffer's content to the set of pixels provided.
func (pb *Buffer) SetPixels(pixels ...P) {
	pb.Reset(len(pixels))
	for i, p := range pixels {
		pb.SetPixel(i, p)
	}
}

// Pixels returns a copy of every pixel in pb, in order.
func (pb *Buffer) Pixels() []P {
	pixels := make([]P, pb.Len())
	for i := range pixels {
		pixels[i] = pb.Pixel(i)
	}
	return pixels
}

// pixelSize is the number of bytes per pixel for all supported layouts.
const pixelSize = 3
