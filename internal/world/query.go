// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Target addresses a notification at a single occupant or a whole location.
type Target struct {
	Occupant ulid.ULID
	Location ulid.ULID
}

// ToOccupant targets a single occupant.
func ToOccupant(id ulid.ULID) Target {
	return Target{Occupant: id}
}

// ToLocation targets everyone in a location.
func ToLocation(id ulid.ULID) Target {
	return Target{Location: id}
}

// Query is the narrow view of the world that agents act through.
// Implementations must be safe for concurrent use by many agents.
type Query interface {
	// RegisterAgent makes an agent known to the world without placing it.
	RegisterAgent(ctx context.Context, id ulid.ULID, name string) error

	// ListOccupants returns the occupants of a location in arrival order,
	// omitting any id in exclude.
	ListOccupants(ctx context.Context, locationID ulid.ULID, exclude ...ulid.ULID) ([]Occupant, error)

	// ListTraversableExits returns the exits out of a location that traverser
	// may pass, in enumeration order, paired with their destinations.
	ListTraversableExits(ctx context.Context, locationID, traverserID ulid.ULID) ([]Route, error)

	// Move places an occupant in a location, leaving wherever it was.
	Move(ctx context.Context, occupantID, destinationID ulid.ULID) error

	// Remove takes an occupant out of the world. Removing an occupant that is
	// nowhere is not an error.
	Remove(ctx context.Context, occupantID ulid.ULID) error

	// LocationOf returns the occupant's location, or the zero ULID when it is
	// not placed anywhere.
	LocationOf(ctx context.Context, occupantID ulid.ULID) (ulid.ULID, error)

	// ResolveLocationByName looks a location up by its name (case-insensitive).
	ResolveLocationByName(ctx context.Context, name string) (Location, error)

	// Notify delivers a message to the target, skipping excluded occupants.
	Notify(ctx context.Context, target Target, message string, exclude ...ulid.ULID) error

	// IsProtected reports whether the occupant is exempt from being targeted.
	IsProtected(ctx context.Context, occupant Occupant) bool
}

// ArrivalListener is told when a player character arrives where an agent is.
type ArrivalListener interface {
	OnArrival(ctx context.Context, observerID, arrivingID ulid.ULID) error
}

// ArrivalFunc adapts a function to the ArrivalListener interface.
type ArrivalFunc func(ctx context.Context, observerID, arrivingID ulid.ULID) error

// OnArrival implements ArrivalListener.
func (f ArrivalFunc) OnArrival(ctx context.Context, observerID, arrivingID ulid.ULID) error {
	return f(ctx, observerID, arrivingID)
}
