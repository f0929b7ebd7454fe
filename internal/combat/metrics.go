// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import "github.com/prometheus/client_golang/prometheus"

// Attack outcomes.
const (
	OutcomeHit    = "hit"
	OutcomeDefeat = "defeat"
	OutcomeMissed = "missed"
)

// Attacks counts resolved attacks by outcome.
var Attacks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holomob_combat_attacks_total",
		Help: "Total attacks resolved by agents",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers combat metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Attacks)
}
