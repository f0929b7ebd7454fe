// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mob implements the behavior of autonomous agents.
//
// An agent is Dormant, Patrolling, Hunting or Attacking. Each live state has
// a timer at its own pace; ticks query the world afresh and decide the next
// step. Hits and arrivals change state immediately, from whatever goroutine
// reports them. All mutation of one agent happens under that agent's lock,
// and a tick whose timer has since been replaced does nothing.
package mob

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/world"
	"github.com/holomush/holomob/pkg/errutil"
)

var tracer = otel.Tracer("holomob/mob")

// EngineConfig holds the collaborators of an Engine.
type EngineConfig struct {
	World     world.Query
	Scheduler *scheduler.Scheduler
	Combat    *combat.Resolver
	Rand      core.Rand    // optional, defaults to core.DefaultRand
	Logger    *slog.Logger // optional, defaults to slog.Default
	Tracer    trace.Tracer // optional
}

// Engine owns a set of agents and drives them.
type Engine struct {
	world  world.Query
	sched  *scheduler.Scheduler
	combat *combat.Resolver
	rand   core.Rand
	logger *slog.Logger
	tracer trace.Tracer

	mu     sync.RWMutex
	agents map[ulid.ULID]*Agent
	byName map[string]*Agent
}

// NewEngine creates an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	switch {
	case cfg.World == nil:
		return nil, oops.In("mob").Code(CodeInvalidConfig).Errorf("world is required")
	case cfg.Scheduler == nil:
		return nil, oops.In("mob").Code(CodeInvalidConfig).Errorf("scheduler is required")
	case cfg.Combat == nil:
		return nil, oops.In("mob").Code(CodeInvalidConfig).Errorf("combat resolver is required")
	}
	e := &Engine{
		world:  cfg.World,
		sched:  cfg.Scheduler,
		combat: cfg.Combat,
		rand:   cfg.Rand,
		logger: cfg.Logger,
		tracer: cfg.Tracer,
		agents: make(map[ulid.ULID]*Agent),
		byName: make(map[string]*Agent),
	}
	if e.rand == nil {
		e.rand = core.DefaultRand()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = tracer
	}
	return e, nil
}

// Spawn creates a Dormant agent from cfg and registers it with the world.
// The agent does nothing until activated.
func (e *Engine) Spawn(ctx context.Context, cfg Config) (ulid.ULID, error) {
	if err := cfg.Validate(); err != nil {
		return ulid.ULID{}, err
	}
	home, err := e.world.ResolveLocationByName(ctx, cfg.Home)
	if err != nil {
		return ulid.ULID{}, oops.In("mob").Code(CodeInvalidAgentConfig).
			With("agent", cfg.Name).
			With("field", "home").
			Errorf("home location %q: %v", cfg.Home, err)
	}

	key := nameKey(cfg.Name)
	id := core.NewULID()

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.byName[key]; ok {
		return ulid.ULID{}, oops.In("mob").Code(CodeDuplicateAgent).
			With("agent", cfg.Name).
			Errorf("agent name already in use")
	}
	if err := e.world.RegisterAgent(ctx, id, cfg.Name); err != nil {
		return ulid.ULID{}, err
	}
	a := newAgent(id, cfg, home.ID)
	e.agents[id] = a
	e.byName[key] = a

	e.logger.DebugContext(ctx, "agent spawned", "agent_id", id.String(), "name", cfg.Name, "home", home.Name)
	return id, nil
}

// Activate brings an agent to life: full health, placed at home if it is
// nowhere, and Patrolling when it patrols.
func (e *Engine) Activate(ctx context.Context, id ulid.ULID) error {
	a, err := e.agent(id)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	e.boot(ctx, a)
	return nil
}

// Deactivate kills an agent: it leaves the world and revives after its death
// pace. Deactivating an agent that is not alive does nothing.
func (e *Engine) Deactivate(ctx context.Context, id ulid.ULID) error {
	a, err := e.agent(id)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.tracked {
		return nil
	}
	e.die(ctx, a)
	return nil
}

// Agent returns a snapshot of an agent.
func (e *Engine) Agent(id ulid.ULID) (Snapshot, error) {
	a, err := e.agent(id)
	if err != nil {
		return Snapshot{}, err
	}
	return a.Snapshot(), nil
}

// Find looks an agent up by name (case-insensitive).
func (e *Engine) Find(name string) (ulid.ULID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.byName[nameKey(name)]
	if !ok {
		return ulid.ULID{}, false
	}
	return a.id, true
}

// Agents returns snapshots of every agent.
func (e *Engine) Agents() []Snapshot {
	e.mu.RLock()
	agents := make([]*Agent, 0, len(e.agents))
	for _, a := range e.agents {
		agents = append(agents, a)
	}
	e.mu.RUnlock()

	out := make([]Snapshot, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Snapshot())
	}
	return out
}

func (e *Engine) agent(id ulid.ULID) (*Agent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.agents[id]
	if !ok {
		return nil, agentNotFound(id)
	}
	return a, nil
}

// boot must be called with a.mu held.
func (e *Engine) boot(ctx context.Context, a *Agent) {
	a.health = a.cfg.FullHealth
	a.tracked = true
	a.immortal = a.cfg.Immortal

	at, err := e.world.LocationOf(ctx, a.id)
	if err != nil {
		errutil.LogError(ctx, e.logger, "agent location lookup failed", err, "agent_id", a.id.String())
	} else if at.IsZero() {
		e.moveHome(ctx, a)
	}
	e.startPatrolling(ctx, a)
}

// die must be called with a.mu held.
func (e *Engine) die(ctx context.Context, a *Agent) {
	a.tracked = false
	a.health = 0
	a.immortal = true
	if err := e.world.Remove(ctx, a.id); err != nil {
		errutil.LogError(ctx, e.logger, "agent removal failed", err, "agent_id", a.id.String())
	}
	Deaths.Inc()
	e.enter(ctx, a, Dormant, a.cfg.DeathPace, HookRevive)
}

// enter switches state and replaces the timer. It must be called with a.mu held.
func (e *Engine) enter(ctx context.Context, a *Agent, to State, pace time.Duration, hook string) {
	from := a.state
	a.state = to
	a.timer = e.sched.Reschedule(a.id, pace, hook, e.tick)
	if from != to {
		Transitions.WithLabelValues(from.String(), to.String()).Inc()
		e.logger.DebugContext(ctx, "agent state changed",
			"agent_id", a.id.String(),
			"from", from.String(),
			"to", to.String())
	}
}

// startIdle leaves a living agent without a timer. It must be called with a.mu held.
func (e *Engine) startIdle(ctx context.Context, a *Agent) {
	e.enter(ctx, a, Dormant, 0, "")
}

// startPatrolling must be called with a.mu held.
func (e *Engine) startPatrolling(ctx context.Context, a *Agent) {
	if !a.cfg.Patrolling {
		e.startIdle(ctx, a)
		return
	}
	e.enter(ctx, a, Patrolling, a.cfg.PatrolPace, HookPatrol)
	a.health = a.cfg.FullHealth
}

// startHunting must be called with a.mu held.
func (e *Engine) startHunting(ctx context.Context, a *Agent) {
	if !a.cfg.Hunting {
		e.startPatrolling(ctx, a)
		return
	}
	e.enter(ctx, a, Hunting, a.cfg.HuntPace, HookHunt)
}

// startAttacking must be called with a.mu held.
func (e *Engine) startAttacking(ctx context.Context, a *Agent) {
	if !a.cfg.Aggressive {
		e.startHunting(ctx, a)
		return
	}
	e.enter(ctx, a, Attacking, a.cfg.AttackPace, HookAttack)
}

func (e *Engine) moveHome(ctx context.Context, a *Agent) {
	if err := e.world.Move(ctx, a.id, a.home); err != nil {
		errutil.LogError(ctx, e.logger, "agent failed to return home", err, "agent_id", a.id.String())
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
