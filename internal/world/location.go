// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package world contains the world model domain types and the in-memory
// world that autonomous agents query and move through.
package world

import (
	"github.com/oklog/ulid/v2"
)

// Location represents a room in the game world.
type Location struct {
	ID          ulid.ULID
	Name        string
	Description string
	// ArrivalMessage is shown to player characters entering the location.
	ArrivalMessage string
	// Restorative locations return arriving characters to full health.
	Restorative bool
}

// NewLocation creates a new Location with a generated ID.
func NewLocation(name, description string) (*Location, error) {
	return NewLocationWithID(ulid.Make(), name, description)
}

// NewLocationWithID creates a new Location with the provided ID.
// The location is validated before being returned.
func NewLocationWithID(id ulid.ULID, name, description string) (*Location, error) {
	l := &Location{
		ID:          id,
		Name:        name,
		Description: description,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks that the location has required fields.
func (l *Location) Validate() error {
	if l.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidateName(l.Name); err != nil {
		return err
	}
	if err := ValidateDescription(l.Description); err != nil {
		return err
	}
	return ValidateDescription(l.ArrivalMessage)
}
