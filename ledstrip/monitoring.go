// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledstrip

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	stripFramesRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_frames_rendered",
		Help: "Count of frames composed and handed to the driver.",
	})

	stripUpdatesThrottled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_updates_throttled",
		Help: "Count of updates that arrived before the next scheduled frame.",
	})

	stripDriverBusy = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_driver_busy",
		Help: "Count of frames skipped because the driver was not ready.",
	})

	stripDriverErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_driver_errors",
		Help: "Count of errors returned by the driver when writing a frame.",
	})

	stripEditsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledstrip_edits_rejected",
		Help: "Count of rejected configuration edits.",
	},
		[]string{"op"})

	stripLEDCountGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ledstrip_led_count",
		Help: "Number of LEDs in the current configuration, by aggregate.",
	},
		[]string{"kind"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		stripFramesRendered,
		stripUpdatesThrottled,
		stripDriverBusy,
		stripDriverErrors,
		stripEditsRejected,
		stripLEDCountGauge,
	)
}

func updateCountMetrics(c *Counts) {
	stripLEDCountGauge.WithLabelValues("configured").Set(float64(c.Count))
	stripLEDCountGauge.WithLabelValues("length").Set(float64(c.Length))
	stripLEDCountGauge.WithLabelValues("ring").Set(float64(c.Ring))
	stripLEDCountGauge.WithLabelValues("larson").Set(float64(c.Larson))
}
