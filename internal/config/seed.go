// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/ambient"
	"github.com/holomush/holomob/internal/mob"
	"github.com/holomush/holomob/internal/world"
)

// Seeded records what SeedWorld created, keyed by lowercased name.
type Seeded struct {
	Locations  map[string]ulid.ULID
	Characters map[string]ulid.ULID
}

// Location returns the id of a seeded location by name.
func (s *Seeded) Location(name string) (ulid.ULID, bool) {
	id, ok := s.Locations[nameKey(name)]
	return id, ok
}

// Character returns the id of a seeded character by name.
func (s *Seeded) Character(name string) (ulid.ULID, bool) {
	id, ok := s.Characters[nameKey(name)]
	return id, ok
}

// SeedWorld adds the configured locations, exits and characters to w and
// assigns character roles in ac. The configuration must be valid.
func (c *Config) SeedWorld(ctx context.Context, w *world.Memory, ac *access.StaticAccessControl) (*Seeded, error) {
	seeded := &Seeded{
		Locations:  make(map[string]ulid.ULID, len(c.World.Locations)),
		Characters: make(map[string]ulid.ULID, len(c.World.Characters)),
	}

	for _, lc := range c.World.Locations {
		loc, err := world.NewLocation(lc.Name, lc.Description)
		if err != nil {
			return nil, oops.In("config").With("location", lc.Name).Wrap(err)
		}
		loc.ArrivalMessage = lc.ArrivalMessage
		loc.Restorative = lc.Restorative
		if err := w.AddLocation(*loc); err != nil {
			return nil, oops.In("config").With("location", lc.Name).Wrap(err)
		}
		seeded.Locations[nameKey(lc.Name)] = loc.ID
	}

	for _, ec := range c.World.Exits {
		from, _ := seeded.Location(ec.From)
		to, _ := seeded.Location(ec.To)
		exit, err := world.NewExit(from, to, ec.Name)
		if err != nil {
			return nil, oops.In("config").With("exit", ec.Name).Wrap(err)
		}
		exit.Aliases = append([]string(nil), ec.Aliases...)
		kinds, err := ec.ParsedDenyKinds()
		if err != nil {
			return nil, err
		}
		if len(kinds) > 0 {
			exit.Lock = world.DenyKinds(kinds...)
		}
		if err := w.AddExit(*exit); err != nil {
			return nil, oops.In("config").With("exit", ec.Name).Wrap(err)
		}
	}

	for _, cc := range c.World.Characters {
		health := cc.Health
		if health == 0 {
			health = DefaultCharacterHealth
		}
		ch, err := world.NewCharacter(cc.Name, health)
		if err != nil {
			return nil, oops.In("config").With("character", cc.Name).Wrap(err)
		}
		ch.Description = cc.Description
		// Roles go first so protection holds from the moment of arrival.
		if cc.Role != "" {
			if err := ac.AssignRole(access.CharacterSubject(ch.ID), cc.Role); err != nil {
				return nil, oops.In("config").With("character", cc.Name).Wrap(err)
			}
		}
		at, _ := seeded.Location(cc.Location)
		if err := w.AddCharacter(ctx, *ch, at); err != nil {
			return nil, oops.In("config").With("character", cc.Name).Wrap(err)
		}
		seeded.Characters[nameKey(cc.Name)] = ch.ID
	}
	return seeded, nil
}

// SpawnMobs creates the configured agents and activates the active ones.
func (c *Config) SpawnMobs(ctx context.Context, e *mob.Engine) ([]ulid.ULID, error) {
	ids := make([]ulid.ULID, 0, len(c.Mobs))
	for _, mc := range c.Mobs {
		cfg, err := mc.Mob()
		if err != nil {
			return nil, err
		}
		id, err := e.Spawn(ctx, cfg)
		if err != nil {
			return nil, oops.In("config").With("mob", mc.Name).Wrap(err)
		}
		if mc.IsActive() {
			if err := e.Activate(ctx, id); err != nil {
				return nil, oops.In("config").With("mob", mc.Name).Wrap(err)
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// StartAmbience registers every location with ambient settings.
func (c *Config) StartAmbience(r *ambient.Runner, seeded *Seeded) error {
	for _, lc := range c.World.Locations {
		if lc.Ambient == nil {
			continue
		}
		interval, err := lc.Ambient.ParsedInterval()
		if err != nil {
			return err
		}
		id, ok := seeded.Location(lc.Name)
		if !ok {
			return oops.In("config").Code(CodeInvalidConfig).With("location", lc.Name).Errorf("location was not seeded")
		}
		if err := r.Add(id, ambient.Settings{
			Lines:    lc.Ambient.Lines,
			Interval: interval,
			Chance:   lc.Ambient.Chance,
		}); err != nil {
			return err
		}
	}
	return nil
}
