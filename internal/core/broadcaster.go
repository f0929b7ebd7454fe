// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// subscriberBuffer is the channel capacity of each subscription.
const subscriberBuffer = 100

// EventsDropped counts events that could not be delivered because a
// subscriber's buffer was full.
var EventsDropped = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "holomob_events_dropped_total",
		Help: "Total number of events dropped because a subscriber buffer was full",
	},
	[]string{"type"},
)

// RegisterMetrics registers core package metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsDropped)
}

// Broadcaster distributes events to subscribers.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string][]chan Event),
	}
}

// Subscribe creates a channel for receiving events on a stream.
func (b *Broadcaster) Subscribe(stream string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	b.subs[stream] = append(b.subs[stream], ch)
	return ch
}

// Unsubscribe removes a channel from a stream and closes it.
func (b *Broadcaster) Unsubscribe(stream string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[stream]
	for i, sub := range subs {
		if sub == ch {
			b.subs[stream] = append(subs[:i], subs[i+1:]...)
			if len(b.subs[stream]) == 0 {
				delete(b.subs, stream)
			}
			close(ch)
			return
		}
	}
}

// Subscribers returns the number of subscriptions on a stream.
func (b *Broadcaster) Subscribers(stream string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[stream])
}

// Broadcast sends an event to all subscribers of its stream without blocking.
// Events for subscribers whose buffer is full are dropped and counted.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.Stream] {
		select {
		case ch <- event:
		default:
			EventsDropped.WithLabelValues(string(event.Type)).Inc()
			slog.Warn("event dropped: subscriber buffer full",
				"stream", event.Stream,
				"event_id", event.ID.String(),
				"event_type", event.Type,
			)
		}
	}
}
