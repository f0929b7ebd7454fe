// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import (
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/world"
)

// Agent is one autonomous NPC. Every field below mu is guarded by it.
type Agent struct {
	id   ulid.ULID
	cfg  Config
	home ulid.ULID

	mu       sync.Mutex
	state    State
	health   float64
	tracked  bool // false while dead or never activated
	immortal bool
	timer    scheduler.Handle
}

// Snapshot is a point-in-time view of an agent.
type Snapshot struct {
	ID     ulid.ULID
	Name   string
	State  State
	Health float64
	// Alive is false while the agent is dead or was never activated; Health
	// is meaningless then.
	Alive bool
	// Timer is the agent's live timer; the zero Handle when there is none.
	Timer scheduler.Handle
}

func newAgent(id ulid.ULID, cfg Config, home ulid.ULID) *Agent {
	return &Agent{id: id, cfg: cfg, home: home, state: Dormant}
}

// ID returns the agent's identifier.
func (a *Agent) ID() ulid.ULID { return a.id }

// Config returns the agent's configuration.
func (a *Agent) Config() Config { return a.cfg }

// Snapshot returns the agent's current state.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Agent) snapshotLocked() Snapshot {
	return Snapshot{
		ID:     a.id,
		Name:   a.cfg.Name,
		State:  a.state,
		Health: a.health,
		Alive:  a.tracked,
		Timer:  a.timer,
	}
}

func (a *Agent) occupant() world.Occupant {
	return world.Occupant{ID: a.id, Kind: world.OccupantAgent, Name: a.cfg.Name}
}

func (a *Agent) render(msg string) string {
	return strings.ReplaceAll(msg, "{name}", a.cfg.Name)
}
