// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import "github.com/prometheus/client_golang/prometheus"

// Hit outcomes.
const (
	HitIneffective = "ineffective"
	HitResisted    = "resisted"
	HitLanded      = "landed"
	HitKilled      = "killed"
)

// Ticks counts handled ticks by the state the agent was in.
var Ticks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holomob_agent_ticks_total",
		Help: "Total agent ticks handled by state",
	},
	[]string{"state"},
)

// StaleTicks counts ticks discarded because the timer had been replaced.
var StaleTicks = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "holomob_agent_stale_ticks_total",
	Help: "Total agent ticks discarded as stale",
})

// Transitions counts state changes.
var Transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holomob_agent_transitions_total",
		Help: "Total agent state transitions",
	},
	[]string{"from", "to"},
)

// Hits counts hits taken by agents by outcome.
var Hits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holomob_agent_hits_total",
		Help: "Total hits taken by agents by outcome",
	},
	[]string{"outcome"},
)

// Deaths counts agent deaths and deactivations.
var Deaths = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "holomob_agent_deaths_total",
	Help: "Total agent deaths and deactivations",
})

// RegisterMetrics registers agent metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Ticks, StaleTicks, Transitions, Hits, Deaths)
}
