// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes returned by the world.
const (
	CodeLocationNotFound   = "LOCATION_NOT_FOUND"
	CodeOccupantNotFound   = "OCCUPANT_NOT_FOUND"
	CodeDuplicateLocation  = "DUPLICATE_LOCATION"
	CodeDuplicateOccupant  = "DUPLICATE_OCCUPANT"
	CodeNotACharacter      = "NOT_A_CHARACTER"
	CodeInvalidWorldObject = "INVALID_WORLD_OBJECT"
)

// ErrNotFound is wrapped by every not-found error so callers can use errors.Is.
var ErrNotFound = errors.New("not found")

func locationNotFound(id ulid.ULID) error {
	return oops.In("world").
		Code(CodeLocationNotFound).
		With("location_id", id.String()).
		Wrap(ErrNotFound)
}

func locationNameNotFound(name string) error {
	return oops.In("world").
		Code(CodeLocationNotFound).
		With("name", name).
		Wrap(ErrNotFound)
}

func occupantNotFound(id ulid.ULID) error {
	return oops.In("world").
		Code(CodeOccupantNotFound).
		With("occupant_id", id.String()).
		Wrap(ErrNotFound)
}

func invalidObject(kind string, err error) error {
	return oops.In("world").
		Code(CodeInvalidWorldObject).
		With("kind", kind).
		Wrap(err)
}

func notACharacter(id ulid.ULID) error {
	return oops.In("world").
		Code(CodeNotACharacter).
		With("occupant_id", id.String()).
		Errorf("occupant is not a character")
}
