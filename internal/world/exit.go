// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"context"
	"errors"
	"slices"

	"github.com/oklog/ulid/v2"
)

// ErrSelfReferentialExit indicates an exit that leads back to its own location.
var ErrSelfReferentialExit = errors.New("exit cannot lead to its own location")

// Lock decides whether an occupant may traverse an exit.
// Locations with special traversal rules attach a Lock instead of
// special-casing the exit type.
type Lock interface {
	Allows(ctx context.Context, exit *Exit, traverser Occupant) bool
}

// LockFunc adapts a function to the Lock interface.
type LockFunc func(ctx context.Context, exit *Exit, traverser Occupant) bool

// Allows implements Lock.
func (f LockFunc) Allows(ctx context.Context, exit *Exit, traverser Occupant) bool {
	return f(ctx, exit, traverser)
}

// DenyKinds returns a lock that refuses the listed occupant kinds.
// A typical use keeps agents inside their patrol area while players pass freely.
func DenyKinds(kinds ...OccupantKind) Lock {
	return LockFunc(func(_ context.Context, _ *Exit, traverser Occupant) bool {
		return !slices.Contains(kinds, traverser.Kind)
	})
}

// Exit represents a one-way connection between two locations.
type Exit struct {
	ID             ulid.ULID
	FromLocationID ulid.ULID
	ToLocationID   ulid.ULID
	Name           string
	Aliases        []string
	Lock           Lock // nil means anyone may traverse
}

// NewExit creates a new Exit with a generated ID.
func NewExit(fromLocationID, toLocationID ulid.ULID, name string) (*Exit, error) {
	return NewExitWithID(ulid.Make(), fromLocationID, toLocationID, name)
}

// NewExitWithID creates a new Exit with the provided ID.
// The exit is validated before being returned.
func NewExitWithID(id, fromLocationID, toLocationID ulid.ULID, name string) (*Exit, error) {
	e := &Exit{
		ID:             id,
		FromLocationID: fromLocationID,
		ToLocationID:   toLocationID,
		Name:           name,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate validates the exit's fields.
// Returns ErrSelfReferentialExit if from and to locations are the same.
func (e *Exit) Validate() error {
	if e.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if e.FromLocationID.IsZero() {
		return &ValidationError{Field: "from_location_id", Message: "cannot be zero"}
	}
	if e.ToLocationID.IsZero() {
		return &ValidationError{Field: "to_location_id", Message: "cannot be zero"}
	}
	if e.FromLocationID == e.ToLocationID {
		return ErrSelfReferentialExit
	}
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	return ValidateAliases(e.Aliases)
}

// CanTraverse reports whether traverser may pass through the exit.
func (e *Exit) CanTraverse(ctx context.Context, traverser Occupant) bool {
	if e.Lock == nil {
		return true
	}
	return e.Lock.Allows(ctx, e, traverser)
}

// Route pairs a traversable exit with the location it leads to.
type Route struct {
	Exit        Exit
	Destination Location
}
