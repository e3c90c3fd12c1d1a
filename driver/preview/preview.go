// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package preview implements a ledstrip.Driver that draws frames on a
// terminal, placing each LED at its configured grid position.
package preview

import (
	"sync"

	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/support/logging"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

const (
	// LitRune is drawn for an LED that is on.
	LitRune = '●'
	// DarkRune is drawn for an LED that is off.
	DarkRune = '·'

	// DefaultSpacing is the default number of columns per grid column.
	DefaultSpacing = 2
)

// Options configures a Driver.
type Options struct {
	// Screen is the terminal to draw on. It must be initialized.
	Screen tcell.Screen

	// OriginX and OriginY are the screen cell of grid position (0, 0).
	OriginX int
	OriginY int
	// Spacing is the number of screen columns per grid column. If <= 0,
	// DefaultSpacing is used.
	Spacing int

	// Caption, if not nil, is called each frame and its result drawn below the
	// grid.
	Caption func() string

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L
}

// Driver draws LED frames on a tcell.Screen.
type Driver struct {
	opts   Options
	logger logging.L

	mu sync.Mutex
	// positions holds the grid position of each LED, in strip order.
	// Unconfigured LEDs are not drawn.
	positions [ledconfig.MaxStripLength]struct {
		x, y       int
		configured bool
	}
}

var _ ledstrip.Driver = (*Driver)(nil)

// New creates a Driver. Call SetLayout before the first frame.
func New(opts Options) (*Driver, error) {
	if opts.Screen == nil {
		return nil, errors.New("a Screen is required")
	}
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultSpacing
	}
	return &Driver{
		opts:   opts,
		logger: logging.Must(opts.Logger),
	}, nil
}

// SetLayout records the grid position of every configured LED in t.
func (d *Driver) SetLayout(t *ledconfig.Table) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, desc := range t {
		p := &d.positions[i]
		p.x, p.y, p.configured = desc.X(), desc.Y(), desc.IsConfigured()
	}
}

// Cell returns the screen cell at which LED i is drawn.
func (d *Driver) Cell(i int) (x, y int) {
	x, y, _ = d.cell(i)
	return
}

func (d *Driver) cell(i int) (x, y int, configured bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.positions[i]
	return d.opts.OriginX + p.x*d.opts.Spacing, d.opts.OriginY + p.y, p.configured
}

// Ready implements ledstrip.Driver. A terminal is always ready.
func (d *Driver) Ready() bool { return true }

// Write implements ledstrip.Driver.
func (d *Driver) Write(buf *pixel.Buffer) error {
	s := d.opts.Screen
	s.Clear()

	n := buf.Len()
	if n > ledconfig.MaxStripLength {
		return errors.Errorf("frame has %d LEDs, more than %d", n, ledconfig.MaxStripLength)
	}

	for i := 0; i < n; i++ {
		x, y, ok := d.cell(i)
		if !ok {
			continue
		}
		p := buf.Pixel(i)
		if p == (pixel.P{}) {
			s.SetContent(x, y, DarkRune, nil, tcell.StyleDefault)
			continue
		}
		s.SetContent(x, y, LitRune, nil, Style(p))
	}

	if d.opts.Caption != nil {
		d.drawText(d.opts.OriginX, d.opts.OriginY+ledconfig.MaxCoordinate+2, d.opts.Caption())
	}

	s.Show()
	return nil
}

func (d *Driver) drawText(x, y int, text string) {
	for _, r := range text {
		d.opts.Screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}

// Style returns the style used to draw a lit pixel p.
func Style(p pixel.P) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(p.Red), int32(p.Green), int32(p.Blue)))
}
