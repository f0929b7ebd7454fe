// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import (
	"time"

	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/world"
)

// Default values for a newly configured agent.
const (
	DefaultFullHealth       = 25
	DefaultDamageResistance = 100
	DefaultPatrolPace       = 6 * time.Second
	DefaultHuntPace         = time.Second
	DefaultAttackPace       = 2 * time.Second
	DefaultDeathPace        = 90 * time.Second
	DefaultAmbientChance    = 0.02
)

// Messages are the lines an agent produces. "{name}" is replaced with the
// agent's name.
type Messages struct {
	Ineffective string   // to an attacker whose blow does little or nothing
	Hit         string   // to the location when an empowered blow lands
	Death       string   // to the attacker that kills the agent
	DeathRoom   string   // to the location when the agent dies
	Ambient     []string // occasional flavor lines to the location
}

// Config is the typed description of one agent.
type Config struct {
	Name string
	// Home is the name of the location the agent starts in and returns to.
	Home string

	Immortal   bool
	Aggressive bool
	Hunting    bool
	Patrolling bool

	FullHealth       float64
	DamageResistance float64

	PatrolPace time.Duration
	HuntPace   time.Duration
	AttackPace time.Duration
	DeathPace  time.Duration

	AmbientChance float64

	Weapon   combat.Weapon
	Defeat   combat.Defeat
	Messages Messages
}

// DefaultConfig returns a patrolling, aggressive agent with stock paces.
func DefaultConfig(name, home string) Config {
	return Config{
		Name:             name,
		Home:             home,
		Aggressive:       true,
		Patrolling:       true,
		FullHealth:       DefaultFullHealth,
		DamageResistance: DefaultDamageResistance,
		PatrolPace:       DefaultPatrolPace,
		HuntPace:         DefaultHuntPace,
		AttackPace:       DefaultAttackPace,
		DeathPace:        DefaultDeathPace,
		AmbientChance:    DefaultAmbientChance,
	}
}

// Validate checks the configuration. It does not resolve location names.
func (c Config) Validate() error {
	if err := world.ValidateName(c.Name); err != nil {
		return invalidConfig(c.Name, "name", err.Error())
	}
	if err := world.ValidateName(c.Home); err != nil {
		return invalidConfig(c.Name, "home", err.Error())
	}
	if c.FullHealth <= 0 {
		return invalidConfig(c.Name, "full_health", "must be positive")
	}
	if c.DamageResistance < 1 {
		return invalidConfig(c.Name, "damage_resistance", "must be at least 1")
	}
	paces := []struct {
		field string
		d     time.Duration
	}{
		{"patrol_pace", c.PatrolPace},
		{"hunt_pace", c.HuntPace},
		{"attack_pace", c.AttackPace},
		{"death_pace", c.DeathPace},
	}
	for _, p := range paces {
		if p.d <= 0 {
			return invalidConfig(c.Name, p.field, "must be a positive duration")
		}
	}
	if c.AmbientChance < 0 || c.AmbientChance > 1 {
		return invalidConfig(c.Name, "ambient_chance", "must be between 0 and 1")
	}
	if c.Weapon.Potency < 0 {
		return invalidConfig(c.Name, "weapon.potency", "cannot be negative")
	}
	if c.Aggressive && c.Defeat.SendTo == "" {
		return invalidConfig(c.Name, "defeat.send_to", "required for aggressive agents")
	}
	return nil
}

func invalidConfig(agent, field, msg string) error {
	return oops.In("mob").
		Code(CodeInvalidAgentConfig).
		With("agent", agent).
		With("field", field).
		Errorf("%s: %s", field, msg)
}
