// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/logging"
	"github.com/holomush/holomob/internal/world"
	"github.com/holomush/holomob/pkg/errutil"
)

// HitResult reports what a hit did to an agent.
type HitResult struct {
	Outcome string  // one of the Hit* outcomes
	Damage  float64 // damage actually applied
	Health  float64 // health after the hit; zero when the agent was not alive
	Killed  bool
}

// OnHit applies a blow from attackerID to an agent.
//
// A dead agent takes nothing and an immortal one keeps its health; both tell
// the attacker the weapon is ineffective. Ordinary weapons have their damage
// divided by the agent's resistance; empowered weapons deal it in full. An
// agent whose health drops to zero dies. A surviving aggressive agent turns
// on its attacker at once.
func (e *Engine) OnHit(ctx context.Context, id ulid.ULID, weapon combat.Weapon, attackerID ulid.ULID, damage float64) (HitResult, error) {
	a, err := e.agent(id)
	if err != nil {
		return HitResult{}, err
	}
	ctx = logging.WithAgent(ctx, id)

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.tracked {
		e.tell(ctx, attackerID, a.render(a.cfg.Messages.Ineffective))
		Hits.WithLabelValues(HitIneffective).Inc()
		return HitResult{Outcome: HitIneffective}, nil
	}

	res := HitResult{Outcome: HitIneffective}
	switch {
	case a.immortal:
		e.tell(ctx, attackerID, a.render(a.cfg.Messages.Ineffective))
	case !weapon.Empowered:
		res.Outcome = HitResisted
		res.Damage = damage / a.cfg.DamageResistance
		e.tell(ctx, attackerID, a.render(a.cfg.Messages.Ineffective))
	default:
		res.Outcome = HitLanded
		res.Damage = damage
		e.announce(ctx, a, a.render(a.cfg.Messages.Hit))
	}
	a.health -= res.Damage
	res.Health = a.health

	if a.health <= 0 {
		res.Outcome = HitKilled
		res.Killed = true
		Hits.WithLabelValues(HitKilled).Inc()
		e.tell(ctx, attackerID, a.render(a.cfg.Messages.Death))
		e.announce(ctx, a, a.render(a.cfg.Messages.DeathRoom))
		e.logger.InfoContext(ctx, "agent killed", "attacker_id", attackerID.String())
		e.die(ctx, a)
		return res, nil
	}

	Hits.WithLabelValues(res.Outcome).Inc()
	if a.cfg.Aggressive && a.state != Attacking {
		e.startAttacking(ctx, a)
	}
	return res, nil
}

// OnArrival turns an aggressive living agent to Attacking the moment a
// player arrives in its location.
func (e *Engine) OnArrival(ctx context.Context, observerID, arrivingID ulid.ULID) error {
	a, err := e.agent(observerID)
	if err != nil {
		return err
	}
	ctx = logging.WithAgent(ctx, observerID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.tracked {
		return nil
	}
	if a.cfg.Aggressive && a.state != Attacking {
		e.logger.DebugContext(ctx, "agent noticed arrival", "arriving_id", arrivingID.String())
		e.startAttacking(ctx, a)
	}
	return nil
}

func (e *Engine) tell(ctx context.Context, id ulid.ULID, msg string) {
	if msg == "" || id.IsZero() {
		return
	}
	if err := e.world.Notify(ctx, world.ToOccupant(id), msg); err != nil {
		errutil.LogError(ctx, e.logger, "message to occupant failed", err, "occupant_id", id.String())
	}
}

func (e *Engine) announce(ctx context.Context, a *Agent, msg string) {
	if msg == "" {
		return
	}
	loc, err := e.world.LocationOf(ctx, a.id)
	if err != nil || loc.IsZero() {
		return
	}
	if err := e.world.Notify(ctx, world.ToLocation(loc), msg, a.id); err != nil {
		errutil.LogError(ctx, e.logger, "message to location failed", err, "location_id", loc.String())
	}
}

var _ world.ArrivalListener = (*Engine)(nil)
