// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"fmt"
	"strings"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/ambient"
	"github.com/holomush/holomob/internal/logging"
	"github.com/holomush/holomob/internal/world"
)

// Validate checks the configuration for semantic errors the schema cannot
// express: unknown location references, duplicate names, bad durations and
// agent settings. It returns the first problem found.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log", "level", err.Error())
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log", "format", fmt.Sprintf("must be 'json' or 'text', got %q", c.Log.Format))
	}
	if c.ArrivalQueueSize < 0 {
		return invalid("arrival_queue_size", "arrival_queue_size", "cannot be negative")
	}
	roles := c.RoleDefinitions()
	if _, err := access.NewStaticAccessControlWithRoles(roles); err != nil {
		return invalid("roles", "roles", err.Error())
	}

	locations, err := c.validateLocations()
	if err != nil {
		return err
	}
	if err := c.validateExits(locations); err != nil {
		return err
	}
	if err := c.validateCharacters(locations, roles); err != nil {
		return err
	}
	return c.validateMobs(locations)
}

func (c *Config) validateLocations() (map[string]bool, error) {
	if len(c.World.Locations) == 0 {
		return nil, invalid("world", "locations", "at least one location is required")
	}
	known := make(map[string]bool, len(c.World.Locations))
	for _, loc := range c.World.Locations {
		if err := world.ValidateName(loc.Name); err != nil {
			return nil, invalid("world.locations", "name", err.Error(), "location", loc.Name)
		}
		key := nameKey(loc.Name)
		if known[key] {
			return nil, invalid("world.locations", "name", "duplicate location", "location", loc.Name)
		}
		known[key] = true

		if loc.Ambient == nil {
			continue
		}
		interval, err := loc.Ambient.ParsedInterval()
		if err != nil {
			return nil, err
		}
		settings := ambient.Settings{Lines: loc.Ambient.Lines, Interval: interval, Chance: loc.Ambient.Chance}
		if err := settings.Validate(); err != nil {
			return nil, invalid("world.locations", "ambient", err.Error(), "location", loc.Name)
		}
	}
	return known, nil
}

func (c *Config) validateExits(locations map[string]bool) error {
	for _, e := range c.World.Exits {
		if !locations[nameKey(e.From)] {
			return invalid("world.exits", "from", fmt.Sprintf("unknown location %q", e.From), "exit", e.Name)
		}
		if !locations[nameKey(e.To)] {
			return invalid("world.exits", "to", fmt.Sprintf("unknown location %q", e.To), "exit", e.Name)
		}
		if nameKey(e.From) == nameKey(e.To) {
			return invalid("world.exits", "to", "exit cannot lead back to its own location", "exit", e.Name)
		}
		if err := world.ValidateName(e.Name); err != nil {
			return invalid("world.exits", "name", err.Error(), "exit", e.Name)
		}
		if _, err := e.ParsedDenyKinds(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCharacters(locations map[string]bool, roles map[string][]string) error {
	seen := make(map[string]bool, len(c.World.Characters))
	for _, ch := range c.World.Characters {
		if err := world.ValidateCharacterName(ch.Name); err != nil {
			return invalid("world.characters", "name", err.Error(), "character", ch.Name)
		}
		if seen[nameKey(ch.Name)] {
			return invalid("world.characters", "name", "duplicate character", "character", ch.Name)
		}
		seen[nameKey(ch.Name)] = true
		if !locations[nameKey(ch.Location)] {
			return invalid("world.characters", "location", fmt.Sprintf("unknown location %q", ch.Location), "character", ch.Name)
		}
		if ch.Health < 0 {
			return invalid("world.characters", "health", "cannot be negative", "character", ch.Name)
		}
		if _, ok := roles[ch.Role]; ch.Role != "" && !ok {
			return invalid("world.characters", "role", fmt.Sprintf("unknown role %q", ch.Role), "character", ch.Name)
		}
	}
	return nil
}

func (c *Config) validateMobs(locations map[string]bool) error {
	seen := make(map[string]bool, len(c.Mobs))
	for _, m := range c.Mobs {
		cfg, err := m.Mob()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return invalid("mobs", "mob", err.Error(), "mob", m.Name)
		}
		if seen[nameKey(cfg.Name)] {
			return invalid("mobs", "name", "duplicate agent", "mob", m.Name)
		}
		seen[nameKey(cfg.Name)] = true
		if !locations[nameKey(cfg.Home)] {
			return invalid("mobs", "home", fmt.Sprintf("unknown location %q", cfg.Home), "mob", m.Name)
		}
		if cfg.Defeat.SendTo != "" && !locations[nameKey(cfg.Defeat.SendTo)] {
			return invalid("mobs", "defeat.send_to", fmt.Sprintf("unknown location %q", cfg.Defeat.SendTo), "mob", m.Name)
		}
	}
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
