// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package core contains the event primitives shared by the world model and
// the agent engine.
package core

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// EventType identifies the kind of event.
type EventType string

const (
	EventTypeMessage EventType = "message"
	EventTypeArrive  EventType = "arrive"
	EventTypeLeave   EventType = "leave"
	EventTypeCombat  EventType = "combat"
	EventTypeSystem  EventType = "system"
)

// ActorKind identifies what type of entity caused an event.
type ActorKind uint8

const (
	ActorCharacter ActorKind = iota
	ActorAgent
	ActorSystem
)

func (a ActorKind) String() string {
	switch a {
	case ActorCharacter:
		return "character"
	case ActorAgent:
		return "agent"
	case ActorSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Actor represents who or what caused an event.
type Actor struct {
	Kind ActorKind
	ID   string // Occupant ID or "system"
}

// SystemActor is the actor used for engine-originated messages.
var SystemActor = Actor{Kind: ActorSystem, ID: "system"}

// Event represents something delivered to an occupant or observed in a location.
type Event struct {
	ID        ulid.ULID
	Stream    string // e.g., "occupant:01ABC", "location:01XYZ"
	Type      EventType
	Timestamp time.Time
	Actor     Actor
	Payload   []byte // JSON
}

// MessagePayload is the JSON payload for message events.
type MessagePayload struct {
	Message string `json:"message"`
}

// OccupantStream returns the personal stream of an occupant.
func OccupantStream(id ulid.ULID) string {
	return "occupant:" + id.String()
}

// LocationStream returns the stream of a location.
func LocationStream(id ulid.ULID) string {
	return "location:" + id.String()
}

// NewMessageEvent builds a message event for a stream.
func NewMessageEvent(stream string, actor Actor, message string) Event {
	//nolint:errcheck // json.Marshal cannot fail for a struct of strings
	payload, _ := json.Marshal(MessagePayload{Message: message})
	return Event{
		ID:        NewULID(),
		Stream:    stream,
		Type:      EventTypeMessage,
		Timestamp: time.Now(),
		Actor:     actor,
		Payload:   payload,
	}
}

// Message decodes the text of a message event.
func (e Event) Message() (string, error) {
	if e.Type != EventTypeMessage {
		return "", oops.Code("NOT_A_MESSAGE").
			With("event_id", e.ID.String()).
			With("event_type", string(e.Type)).
			Errorf("event is not a message")
	}
	var p MessagePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return "", oops.With("event_id", e.ID.String()).Wrapf(err, "decode message payload")
	}
	return p.Message, nil
}
