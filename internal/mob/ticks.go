// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import (
	"context"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/logging"
	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/world"
	"github.com/holomush/holomob/pkg/errutil"
)

// tick is the scheduler hook for every agent timer.
func (e *Engine) tick(ctx context.Context, h scheduler.Handle) {
	a, err := e.agent(h.Agent())
	if err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != h {
		StaleTicks.Inc()
		return
	}

	state := a.state
	ctx = logging.WithAgent(ctx, a.id)
	ctx, span := e.tracer.Start(ctx, "mob.tick",
		trace.WithAttributes(
			attribute.String("agent.id", a.id.String()),
			attribute.String("agent.name", a.cfg.Name),
			attribute.String("agent.state", state.String()),
		),
	)
	defer span.End()
	Ticks.WithLabelValues(state.String()).Inc()

	switch state {
	case Patrolling:
		e.patrol(ctx, a)
	case Hunting:
		e.hunt(ctx, a)
	case Attacking:
		if err := e.attack(ctx, a); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			errutil.LogError(ctx, e.logger, "agent attack failed", err)
		}
	case Dormant:
		if !a.tracked {
			e.logger.DebugContext(ctx, "agent reviving")
			e.boot(ctx, a)
		}
	}
}

func (e *Engine) patrol(ctx context.Context, a *Agent) {
	loc, ok := e.whereabouts(ctx, a)
	if !ok {
		return
	}
	e.ambient(ctx, a, loc)

	if a.cfg.Aggressive {
		if _, found := e.findTarget(ctx, a, loc); found {
			e.startAttacking(ctx, a)
			return
		}
	}

	routes, err := e.world.ListTraversableExits(ctx, loc, a.id)
	if err != nil {
		errutil.LogError(ctx, e.logger, "listing exits failed", err)
		return
	}
	if len(routes) == 0 {
		e.moveHome(ctx, a)
		return
	}
	e.move(ctx, a, routes[e.rand.IntN(len(routes))].Destination.ID)
}

func (e *Engine) hunt(ctx context.Context, a *Agent) {
	loc, ok := e.whereabouts(ctx, a)
	if !ok {
		return
	}
	e.ambient(ctx, a, loc)

	if a.cfg.Aggressive {
		if _, found := e.findTarget(ctx, a, loc); found {
			e.startAttacking(ctx, a)
			return
		}
	}

	routes, err := e.world.ListTraversableExits(ctx, loc, a.id)
	if err != nil {
		errutil.LogError(ctx, e.logger, "listing exits failed", err)
		return
	}
	if len(routes) == 0 {
		e.moveHome(ctx, a)
		return
	}
	for _, r := range routes {
		if _, found := e.findTarget(ctx, a, r.Destination.ID); found {
			e.move(ctx, a, r.Destination.ID)
			return
		}
	}
	e.startPatrolling(ctx, a)
}

func (e *Engine) attack(ctx context.Context, a *Agent) error {
	loc, ok := e.whereabouts(ctx, a)
	if !ok {
		return nil
	}
	e.ambient(ctx, a, loc)

	target, found := e.findTarget(ctx, a, loc)
	if !found {
		e.startHunting(ctx, a)
		return nil
	}

	ev, err := e.combat.Resolve(ctx, combat.Attack{
		AttackerID:   a.id,
		AttackerName: a.cfg.Name,
		Defender:     target,
		LocationID:   loc,
		Weapon:       a.cfg.Weapon,
		Defeat:       a.cfg.Defeat,
	})
	if err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "agent attacked",
		"target_id", target.ID.String(),
		"verb", ev.Verb,
		"damage", ev.Damage,
		"target_health", ev.DefenderHealth,
		"defeated", ev.Defeated)
	return nil
}

// whereabouts returns the agent's location. An agent that is nowhere is sent
// home and the tick ends.
func (e *Engine) whereabouts(ctx context.Context, a *Agent) (ulid.ULID, bool) {
	loc, err := e.world.LocationOf(ctx, a.id)
	if err != nil {
		errutil.LogError(ctx, e.logger, "agent location lookup failed", err)
		return ulid.ULID{}, false
	}
	if loc.IsZero() {
		e.moveHome(ctx, a)
		return ulid.ULID{}, false
	}
	return loc, true
}

// findTarget returns the first occupant of loc that is a player character
// and not protected.
func (e *Engine) findTarget(ctx context.Context, a *Agent, loc ulid.ULID) (world.Occupant, bool) {
	occupants, err := e.world.ListOccupants(ctx, loc, a.id)
	if err != nil {
		errutil.LogError(ctx, e.logger, "listing occupants failed", err, "location_id", loc.String())
		return world.Occupant{}, false
	}
	for _, o := range occupants {
		if o.IsPlayer() && !e.world.IsProtected(ctx, o) {
			return o, true
		}
	}
	return world.Occupant{}, false
}

func (e *Engine) ambient(ctx context.Context, a *Agent, loc ulid.ULID) {
	lines := a.cfg.Messages.Ambient
	if len(lines) == 0 || e.rand.Float64() >= a.cfg.AmbientChance {
		return
	}
	msg := a.render(lines[e.rand.IntN(len(lines))])
	if err := e.world.Notify(ctx, world.ToLocation(loc), msg); err != nil {
		errutil.LogError(ctx, e.logger, "ambient message failed", err)
	}
}

func (e *Engine) move(ctx context.Context, a *Agent, dest ulid.ULID) {
	if err := e.world.Move(ctx, a.id, dest); err != nil {
		errutil.LogError(ctx, e.logger, "agent move failed", err, "destination_id", dest.String())
	}
}
