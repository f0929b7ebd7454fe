// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Timers is the number of live timers.
var Timers = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "holomob_scheduler_timers",
	Help: "Number of live agent timers",
})

// Fires counts timer firings by hook.
var Fires = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holomob_scheduler_fires_total",
		Help: "Total timer firings by hook",
	},
	[]string{"hook"},
)

// FireDuration observes how long hooks run.
var FireDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "holomob_scheduler_fire_duration_seconds",
		Help:    "Timer hook execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"hook"},
)

// Panics counts hooks that panicked and were recovered.
var Panics = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "holomob_scheduler_panics_total",
	Help: "Total scheduled hooks that panicked",
})

// RegisterMetrics registers scheduler metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Timers, Fires, FireDuration, Panics)
}
