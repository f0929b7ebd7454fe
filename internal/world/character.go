// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"github.com/oklog/ulid/v2"
)

// OccupantKind identifies what an occupant of a location is.
type OccupantKind uint8

// Occupant kinds.
const (
	OccupantCharacter OccupantKind = iota + 1
	OccupantAgent
)

// String returns the string representation of the occupant kind.
func (k OccupantKind) String() string {
	switch k {
	case OccupantCharacter:
		return "character"
	case OccupantAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// Occupant is a snapshot of something present in a location.
type Occupant struct {
	ID         ulid.ULID
	Kind       OccupantKind
	Name       string
	Controlled bool // a player is connected to it
}

// IsPlayer reports whether the occupant is a player-controlled character.
func (o Occupant) IsPlayer() bool {
	return o.Kind == OccupantCharacter && o.Controlled
}

// Character is a character placed in the world, either player-controlled or not.
type Character struct {
	ID          ulid.ULID
	Name        string
	Description string
	Controlled  bool
	FullHealth  float64
}

// NewCharacter creates a new Character with a generated ID.
func NewCharacter(name string, fullHealth float64) (*Character, error) {
	return NewCharacterWithID(ulid.Make(), name, fullHealth)
}

// NewCharacterWithID creates a new player-controlled Character with the provided ID.
// The character is validated before being returned.
func NewCharacterWithID(id ulid.ULID, name string, fullHealth float64) (*Character, error) {
	c := &Character{
		ID:         id,
		Name:       name,
		Controlled: true,
		FullHealth: fullHealth,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the character has required fields.
func (c *Character) Validate() error {
	if c.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidateCharacterName(c.Name); err != nil {
		return err
	}
	if c.FullHealth <= 0 {
		return &ValidationError{Field: "full_health", Message: "must be positive"}
	}
	return ValidateDescription(c.Description)
}

// Occupant returns the occupant snapshot for the character.
func (c *Character) Occupant() Occupant {
	return Occupant{ID: c.ID, Kind: OccupantCharacter, Name: c.Name, Controlled: c.Controlled}
}
