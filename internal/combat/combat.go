// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package combat resolves a single attack of an agent against a defender.
//
// The resolver holds no state between attacks. Damage equals the weapon's
// potency; the displayed verb is flavor only.
package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/internal/world"
	"github.com/holomush/holomob/pkg/errutil"
)

// CodeFallbackNotFound marks a defeat destination that does not resolve.
const CodeFallbackNotFound = "FALLBACK_NOT_FOUND"

// NamePlaceholder in a defeat room message is replaced with the defender's name.
const NamePlaceholder = "{name}"

// Verbs is the display vocabulary an attack is described with.
var Verbs = []string{"burst", "slice", "slash", "pierce", "blast"}

// Weapon is what an attack is made with.
type Weapon struct {
	Name    string
	Potency float64
	// Empowered weapons bypass an agent's damage resistance.
	Empowered bool
}

// Defender applies damage to whoever is being attacked.
type Defender interface {
	// ReceiveHit subtracts damage and returns the defender's remaining health.
	ReceiveHit(ctx context.Context, defenderID ulid.ULID, damage float64) (float64, error)
}

// Defeat configures what happens to a defender whose health runs out.
type Defeat struct {
	Message     string // sent to the defender
	RoomMessage string // sent to everyone else present
	SendTo      string // name of the location the defender is moved to
}

// Attack is one blow an attacker aims at a defender in a location.
type Attack struct {
	AttackerID   ulid.ULID
	AttackerName string
	Defender     world.Occupant
	LocationID   ulid.ULID
	Weapon       Weapon
	Defeat       Defeat
}

// Event is the outcome of an attack.
type Event struct {
	AttackerID     ulid.ULID
	DefenderID     ulid.ULID
	Weapon         Weapon
	Verb           string
	Damage         float64
	DefenderHealth float64
	Landed         bool // false when the defender vanished before the blow
	Defeated       bool
	Relocated      bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRand sets the source used to pick the display verb.
func WithRand(r core.Rand) Option {
	return func(res *Resolver) { res.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(res *Resolver) { res.logger = l }
}

// Resolver applies attacks through a world and a defender.
type Resolver struct {
	world    world.Query
	defender Defender
	rand     core.Rand
	logger   *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(w world.Query, d Defender, opts ...Option) *Resolver {
	r := &Resolver{world: w, defender: d}
	for _, opt := range opts {
		opt(r)
	}
	if r.rand == nil {
		r.rand = core.DefaultRand()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve carries out an attack. A defender that vanished is not an error:
// the event comes back with Landed false. An unresolvable defeat destination
// is logged and leaves the defender where it is.
func (r *Resolver) Resolve(ctx context.Context, a Attack) (Event, error) {
	ev := Event{
		AttackerID: a.AttackerID,
		DefenderID: a.Defender.ID,
		Weapon:     a.Weapon,
		Verb:       Verbs[r.rand.IntN(len(Verbs))],
		Damage:     a.Weapon.Potency,
	}

	if err := r.world.Notify(ctx, world.ToLocation(a.LocationID), describe(a, ev.Verb)); err != nil {
		return ev, oops.In("combat").With("location_id", a.LocationID.String()).Wrap(err)
	}

	health, err := r.defender.ReceiveHit(ctx, a.Defender.ID, ev.Damage)
	if errors.Is(err, world.ErrNotFound) {
		Attacks.WithLabelValues(OutcomeMissed).Inc()
		return ev, nil
	}
	if err != nil {
		return ev, oops.In("combat").With("defender_id", a.Defender.ID.String()).Wrap(err)
	}
	ev.Landed = true
	ev.DefenderHealth = health

	if health > 0 {
		Attacks.WithLabelValues(OutcomeHit).Inc()
		return ev, nil
	}

	ev.Defeated = true
	Attacks.WithLabelValues(OutcomeDefeat).Inc()
	relocated, err := r.defeat(ctx, a)
	ev.Relocated = relocated
	return ev, err
}

func (r *Resolver) defeat(ctx context.Context, a Attack) (bool, error) {
	if a.Defeat.Message != "" {
		if err := r.world.Notify(ctx, world.ToOccupant(a.Defender.ID), a.Defeat.Message); err != nil {
			return false, oops.In("combat").With("defender_id", a.Defender.ID.String()).Wrap(err)
		}
	}
	if a.Defeat.RoomMessage != "" {
		msg := strings.ReplaceAll(a.Defeat.RoomMessage, NamePlaceholder, a.Defender.Name)
		if err := r.world.Notify(ctx, world.ToLocation(a.LocationID), msg, a.Defender.ID); err != nil {
			return false, oops.In("combat").With("location_id", a.LocationID.String()).Wrap(err)
		}
	}

	dest, err := r.world.ResolveLocationByName(ctx, a.Defeat.SendTo)
	if err != nil {
		// A fresh error keeps this code from being shadowed by the lookup's.
		errutil.LogError(ctx, r.logger, "defeat destination not found",
			oops.In("combat").
				Code(CodeFallbackNotFound).
				With("name", a.Defeat.SendTo).
				With("attacker_id", a.AttackerID.String()).
				Errorf("defeat destination %q: %v", a.Defeat.SendTo, err),
			"defender_id", a.Defender.ID.String())
		return false, nil
	}
	if err := r.world.Move(ctx, a.Defender.ID, dest.ID); err != nil {
		if errors.Is(err, world.ErrNotFound) {
			return false, nil
		}
		return false, oops.In("combat").With("defender_id", a.Defender.ID.String()).Wrap(err)
	}
	return true, nil
}

// describe renders the attack announcement, e.g. "Drone slashes Alaric with its laser!".
func describe(a Attack, verb string) string {
	msg := fmt.Sprintf("%s %s %s", a.AttackerName, thirdPerson(verb), a.Defender.Name)
	if a.Weapon.Name != "" {
		msg += " with " + a.Weapon.Name
	}
	return msg + "!"
}

func thirdPerson(verb string) string {
	for _, suffix := range []string{"sh", "ch", "s", "x"} {
		if strings.HasSuffix(verb, suffix) {
			return verb + "es"
		}
	}
	return verb + "s"
}
