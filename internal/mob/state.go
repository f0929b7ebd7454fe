// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

// State is the behavior an agent is currently in.
type State uint8

// Agent states.
const (
	Dormant State = iota
	Patrolling
	Hunting
	Attacking
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Dormant:
		return "dormant"
	case Patrolling:
		return "patrolling"
	case Hunting:
		return "hunting"
	case Attacking:
		return "attacking"
	default:
		return "unknown"
	}
}

// Hook names timers are installed under.
const (
	HookPatrol = "patrol"
	HookHunt   = "hunt"
	HookAttack = "attack"
	HookRevive = "revive"
)
