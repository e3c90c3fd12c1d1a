// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package framelog

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recorderRecordingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledstrip_framelog_recording",
		Help: "Count of active frame recorders.",
	})

	recorderFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_framelog_recorded_frames",
		Help: "Count of recorded frames.",
	})

	recorderErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_framelog_recorder_errors",
		Help: "Count of frames that could not be recorded.",
	})

	playerPlayingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledstrip_framelog_playing",
		Help: "Count of active frame log players.",
	})

	playerDroppedFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_framelog_player_dropped_frames",
		Help: "Count of played frames dropped because the driver was busy.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		recorderRecordingGauge,
		recorderFrames,
		recorderErrors,
		playerPlayingGauge,
		playerDroppedFrames,
	)
}
