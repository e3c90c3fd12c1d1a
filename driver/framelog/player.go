// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framelog

import (
	"context"
	"io"
	"time"

	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/support/logging"

	"github.com/pkg/errors"
)

// Player plays a frame log back to a driver, preserving recorded timing.
//
// A Player's exported fields must not be changed after playback has begun.
type Player struct {
	// Driver receives played frames. It must not be nil.
	Driver ledstrip.Driver

	// Speed scales playback time. If <= 0, frames play in real time (1).
	Speed float64

	// Layout is the buffer layout handed to Driver.
	Layout pixel.BufferLayout

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L
}

// PlayStats summarizes a playback.
type PlayStats struct {
	// Played is the number of frames written to the driver.
	Played int64
	// Dropped is the number of frames skipped because the driver was busy.
	Dropped int64
}

// Play plays every frame in r, blocking until the log is exhausted or c is
// cancelled.
func (p *Player) Play(c context.Context, r *Reader) (PlayStats, error) {
	var (
		stats  PlayStats
		buf    = pixel.Buffer{Layout: p.Layout}
		timer  *time.Timer
		logger = logging.Must(p.Logger)
		start  = time.Now()
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	speed := p.Speed
	if speed <= 0 {
		speed = 1
	}

	playerPlayingGauge.Inc()
	defer playerPlayingGauge.Dec()

	for {
		f, err := r.Next()
		switch {
		case err == io.EOF:
			logger.Infof("Finished playback of session %s: %d played, %d dropped.",
				r.Session, stats.Played, stats.Dropped)
			return stats, nil
		case err != nil:
			return stats, err
		}

		if delay := time.Until(start.Add(time.Duration(float64(f.Offset) / speed))); delay > 0 {
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}

			select {
			case <-c.Done():
				return stats, c.Err()
			case <-timer.C:
			}
		} else if err := c.Err(); err != nil {
			return stats, err
		}

		if !p.Driver.Ready() {
			stats.Dropped++
			playerDroppedFrames.Inc()
			continue
		}

		buf.SetPixels(f.Pixels...)
		if err := p.Driver.Write(&buf); err != nil {
			return stats, errors.Wrapf(err, "write frame %d", f.Seq)
		}
		stats.Played++
	}
}
