// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads and validates the host configuration: logging, the
// world seed, agents, ambience and access roles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/logging"
	"github.com/holomush/holomob/internal/mob"
	"github.com/holomush/holomob/internal/world"
)

// CodeInvalidConfig marks a configuration that failed validation.
const CodeInvalidConfig = "INVALID_CONFIG"

// Default values for top-level settings.
const (
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultCharacterHealth = 100
	DefaultLogMaxSizeMB    = 100
	DefaultLogMaxBackups   = 3
	DefaultLogMaxAgeDays   = 28
)

// Config is the whole host configuration.
type Config struct {
	Log              LogConfig           `koanf:"log" json:"log,omitempty"`
	MetricsAddr      string              `koanf:"metrics_addr" json:"metrics_addr,omitempty" jsonschema:"description=metrics and health listen address; empty disables"`
	Seed             uint64              `koanf:"seed" json:"seed,omitempty" jsonschema:"description=random seed; 0 picks a fresh one"`
	ArrivalQueueSize int                 `koanf:"arrival_queue_size" json:"arrival_queue_size,omitempty" jsonschema:"minimum=0"`
	Roles            map[string][]string `koanf:"roles" json:"roles,omitempty" jsonschema:"description=extra or overriding roles as action:resource glob patterns"`
	World            WorldConfig         `koanf:"world" json:"world"`
	Mobs             []MobConfig         `koanf:"mobs" json:"mobs,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string        `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string        `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	File   LogFileConfig `koanf:"file" json:"file,omitempty"`
}

// LogFileConfig configures the rotating log file.
type LogFileConfig struct {
	Path       string `koanf:"path" json:"path,omitempty"`
	MaxSizeMB  int    `koanf:"max_size_mb" json:"max_size_mb,omitempty" jsonschema:"minimum=0"`
	MaxBackups int    `koanf:"max_backups" json:"max_backups,omitempty" jsonschema:"minimum=0"`
	MaxAgeDays int    `koanf:"max_age_days" json:"max_age_days,omitempty" jsonschema:"minimum=0"`
	Compress   bool   `koanf:"compress" json:"compress,omitempty"`
}

// WorldConfig seeds the in-memory world.
type WorldConfig struct {
	Locations  []LocationConfig  `koanf:"locations" json:"locations" jsonschema:"minItems=1"`
	Exits      []ExitConfig      `koanf:"exits" json:"exits,omitempty"`
	Characters []CharacterConfig `koanf:"characters" json:"characters,omitempty"`
}

// LocationConfig describes one location.
type LocationConfig struct {
	Name           string         `koanf:"name" json:"name" jsonschema:"minLength=1,maxLength=100"`
	Description    string         `koanf:"description" json:"description,omitempty"`
	ArrivalMessage string         `koanf:"arrival_message" json:"arrival_message,omitempty"`
	Restorative    bool           `koanf:"restorative" json:"restorative,omitempty" jsonschema:"description=characters arriving here are restored to full health"`
	Ambient        *AmbientConfig `koanf:"ambient" json:"ambient,omitempty"`
}

// AmbientConfig describes a location's flavor lines.
type AmbientConfig struct {
	Lines    []string `koanf:"lines" json:"lines" jsonschema:"minItems=1"`
	Interval string   `koanf:"interval" json:"interval" jsonschema:"pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	Chance   float64  `koanf:"chance" json:"chance,omitempty" jsonschema:"minimum=0,maximum=1"`
}

// ExitConfig describes a one-way exit between two named locations.
type ExitConfig struct {
	From      string   `koanf:"from" json:"from" jsonschema:"minLength=1"`
	To        string   `koanf:"to" json:"to" jsonschema:"minLength=1"`
	Name      string   `koanf:"name" json:"name" jsonschema:"minLength=1"`
	Aliases   []string `koanf:"aliases" json:"aliases,omitempty"`
	DenyKinds []string `koanf:"deny_kinds" json:"deny_kinds,omitempty" jsonschema:"description=occupant kinds (character or agent) that may not pass"`
}

// CharacterConfig describes a player character placed at startup.
type CharacterConfig struct {
	Name        string  `koanf:"name" json:"name" jsonschema:"minLength=1"`
	Description string  `koanf:"description" json:"description,omitempty"`
	Location    string  `koanf:"location" json:"location" jsonschema:"minLength=1"`
	Health      float64 `koanf:"health" json:"health,omitempty" jsonschema:"minimum=0"`
	Role        string  `koanf:"role" json:"role,omitempty"`
}

// MobConfig describes one agent. Unset fields take the agent defaults.
type MobConfig struct {
	Name             string         `koanf:"name" json:"name" jsonschema:"minLength=1"`
	Home             string         `koanf:"home" json:"home" jsonschema:"minLength=1"`
	Active           *bool          `koanf:"active" json:"active,omitempty" jsonschema:"description=activate at startup (default true)"`
	Immortal         bool           `koanf:"immortal" json:"immortal,omitempty"`
	Aggressive       *bool          `koanf:"aggressive" json:"aggressive,omitempty"`
	Hunting          bool           `koanf:"hunting" json:"hunting,omitempty"`
	Patrolling       *bool          `koanf:"patrolling" json:"patrolling,omitempty"`
	FullHealth       float64        `koanf:"full_health" json:"full_health,omitempty" jsonschema:"minimum=0"`
	DamageResistance float64        `koanf:"damage_resistance" json:"damage_resistance,omitempty" jsonschema:"minimum=0"`
	PatrolPace       string         `koanf:"patrol_pace" json:"patrol_pace,omitempty" jsonschema:"pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	HuntPace         string         `koanf:"hunt_pace" json:"hunt_pace,omitempty" jsonschema:"pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	AttackPace       string         `koanf:"attack_pace" json:"attack_pace,omitempty" jsonschema:"pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	DeathPace        string         `koanf:"death_pace" json:"death_pace,omitempty" jsonschema:"pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	AmbientChance    *float64       `koanf:"ambient_chance" json:"ambient_chance,omitempty" jsonschema:"minimum=0,maximum=1"`
	Weapon           WeaponConfig   `koanf:"weapon" json:"weapon,omitempty"`
	Defeat           DefeatConfig   `koanf:"defeat" json:"defeat,omitempty"`
	Messages         MessagesConfig `koanf:"messages" json:"messages,omitempty"`
}

// WeaponConfig describes an agent's weapon.
type WeaponConfig struct {
	Name      string  `koanf:"name" json:"name,omitempty"`
	Potency   float64 `koanf:"potency" json:"potency,omitempty" jsonschema:"minimum=0"`
	Empowered bool    `koanf:"empowered" json:"empowered,omitempty"`
}

// DefeatConfig describes what happens to a character the agent defeats.
type DefeatConfig struct {
	Message     string `koanf:"message" json:"message,omitempty"`
	RoomMessage string `koanf:"room_message" json:"room_message,omitempty"`
	SendTo      string `koanf:"send_to" json:"send_to,omitempty"`
}

// MessagesConfig holds the agent's lines. "{name}" is replaced with the agent's name.
type MessagesConfig struct {
	Ineffective string   `koanf:"ineffective" json:"ineffective,omitempty"`
	Hit         string   `koanf:"hit" json:"hit,omitempty"`
	Death       string   `koanf:"death" json:"death,omitempty"`
	DeathRoom   string   `koanf:"death_room" json:"death_room,omitempty"`
	Ambient     []string `koanf:"ambient" json:"ambient,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log: LogConfig{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
			File: LogFileConfig{
				MaxSizeMB:  DefaultLogMaxSizeMB,
				MaxBackups: DefaultLogMaxBackups,
				MaxAgeDays: DefaultLogMaxAgeDays,
			},
		},
		MetricsAddr:      DefaultMetricsAddr,
		ArrivalQueueSize: world.DefaultArrivalQueueSize,
	}
}

// LoggingOptions converts the log settings for logging.Setup.
func (c *Config) LoggingOptions(service, version string) logging.Options {
	return logging.Options{
		Service: service,
		Version: version,
		Format:  c.Log.Format,
		Level:   c.Log.Level,
		File: logging.FileOptions{
			Path:       c.Log.File.Path,
			MaxSizeMB:  c.Log.File.MaxSizeMB,
			MaxBackups: c.Log.File.MaxBackups,
			MaxAgeDays: c.Log.File.MaxAgeDays,
			Compress:   c.Log.File.Compress,
		},
	}
}

// RoleDefinitions returns the default roles overlaid with configured ones.
func (c *Config) RoleDefinitions() map[string][]string {
	roles := access.DefaultRoles()
	for name, perms := range c.Roles {
		roles[name] = append([]string(nil), perms...)
	}
	return roles
}

// IsActive reports whether the agent should be activated at startup.
func (m MobConfig) IsActive() bool {
	return m.Active == nil || *m.Active
}

// Mob converts the entry into an agent configuration.
func (m MobConfig) Mob() (mob.Config, error) {
	cfg := mob.DefaultConfig(strings.TrimSpace(m.Name), strings.TrimSpace(m.Home))
	cfg.Immortal = m.Immortal
	cfg.Hunting = m.Hunting
	if m.Aggressive != nil {
		cfg.Aggressive = *m.Aggressive
	}
	if m.Patrolling != nil {
		cfg.Patrolling = *m.Patrolling
	}
	if m.FullHealth != 0 {
		cfg.FullHealth = m.FullHealth
	}
	if m.DamageResistance != 0 {
		cfg.DamageResistance = m.DamageResistance
	}
	if m.AmbientChance != nil {
		cfg.AmbientChance = *m.AmbientChance
	}

	paces := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"patrol_pace", m.PatrolPace, &cfg.PatrolPace},
		{"hunt_pace", m.HuntPace, &cfg.HuntPace},
		{"attack_pace", m.AttackPace, &cfg.AttackPace},
		{"death_pace", m.DeathPace, &cfg.DeathPace},
	}
	for _, p := range paces {
		if p.raw == "" {
			continue
		}
		d, err := time.ParseDuration(p.raw)
		if err != nil {
			return mob.Config{}, invalid("mobs", p.field, fmt.Sprintf("%q is not a duration", p.raw), "mob", m.Name)
		}
		*p.dst = d
	}

	cfg.Weapon = combat.Weapon{Name: m.Weapon.Name, Potency: m.Weapon.Potency, Empowered: m.Weapon.Empowered}
	cfg.Defeat = combat.Defeat{Message: m.Defeat.Message, RoomMessage: m.Defeat.RoomMessage, SendTo: m.Defeat.SendTo}
	cfg.Messages = mob.Messages{
		Ineffective: m.Messages.Ineffective,
		Hit:         m.Messages.Hit,
		Death:       m.Messages.Death,
		DeathRoom:   m.Messages.DeathRoom,
		Ambient:     append([]string(nil), m.Messages.Ambient...),
	}
	return cfg, nil
}

// ParsedInterval parses the ambient interval.
func (a AmbientConfig) ParsedInterval() (time.Duration, error) {
	d, err := time.ParseDuration(a.Interval)
	if err != nil {
		return 0, invalid("world.locations", "ambient.interval", fmt.Sprintf("%q is not a duration", a.Interval))
	}
	return d, nil
}

// ParsedDenyKinds parses the exit's denied occupant kinds.
func (e ExitConfig) ParsedDenyKinds() ([]world.OccupantKind, error) {
	kinds := make([]world.OccupantKind, 0, len(e.DenyKinds))
	for _, raw := range e.DenyKinds {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "character":
			kinds = append(kinds, world.OccupantCharacter)
		case "agent":
			kinds = append(kinds, world.OccupantAgent)
		default:
			return nil, invalid("world.exits", "deny_kinds", fmt.Sprintf("unknown occupant kind %q", raw), "exit", e.Name)
		}
	}
	return kinds, nil
}

func invalid(section, field, reason string, kv ...any) error {
	return oops.In("config").
		Code(CodeInvalidConfig).
		With("section", section).
		With("field", field).
		With(kv...).
		Errorf("%s.%s: %s", section, field, reason)
}
