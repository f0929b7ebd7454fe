// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ambient sends periodic flavor lines to locations.
package ambient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/world"
	"github.com/holomush/holomob/pkg/errutil"
)

// HookAmbient names ambient timers in the scheduler.
const HookAmbient = "ambient"

// CodeInvalidAmbient marks rejected ambient settings.
const CodeInvalidAmbient = "INVALID_AMBIENT"

// Lines counts ambient lines sent.
var Lines = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "holomob_ambient_lines_total",
	Help: "Total ambient lines sent to locations",
})

// RegisterMetrics registers ambient metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Lines)
}

// Settings describe one location's ambience.
type Settings struct {
	Lines    []string
	Interval time.Duration
	// Chance is the probability in [0, 1] that a tick sends a line.
	Chance float64
}

// Validate checks the settings.
func (s Settings) Validate() error {
	switch {
	case len(s.Lines) == 0:
		return oops.Code(CodeInvalidAmbient).With("field", "lines").Errorf("ambient lines cannot be empty")
	case s.Interval <= 0:
		return oops.Code(CodeInvalidAmbient).With("field", "interval").Errorf("ambient interval must be positive")
	case s.Chance < 0 || s.Chance > 1:
		return oops.Code(CodeInvalidAmbient).With("field", "chance").Errorf("ambient chance must be between 0 and 1")
	}
	return nil
}

// Option configures a Runner.
type Option func(*Runner)

// WithRand sets the random source.
func WithRand(r core.Rand) Option {
	return func(rn *Runner) { rn.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(rn *Runner) { rn.logger = l }
}

// Runner owns one scheduler timer per ambient location.
type Runner struct {
	world  world.Query
	sched  *scheduler.Scheduler
	rand   core.Rand
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[ulid.ULID]Settings
}

// NewRunner creates a Runner.
func NewRunner(w world.Query, s *scheduler.Scheduler, opts ...Option) *Runner {
	r := &Runner{
		world: w,
		sched: s,
		rooms: make(map[ulid.ULID]Settings),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rand == nil {
		r.rand = core.DefaultRand()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Add starts ambience for a location, replacing any earlier settings.
func (r *Runner) Add(locationID ulid.ULID, s Settings) error {
	if err := s.Validate(); err != nil {
		return oops.In("ambient").With("location_id", locationID.String()).Wrap(err)
	}
	s.Lines = append([]string(nil), s.Lines...)

	r.mu.Lock()
	r.rooms[locationID] = s
	r.mu.Unlock()

	r.sched.Schedule(locationID, s.Interval, HookAmbient, r.tick)
	return nil
}

// Remove stops ambience for a location.
func (r *Runner) Remove(locationID ulid.ULID) bool {
	r.mu.Lock()
	_, ok := r.rooms[locationID]
	delete(r.rooms, locationID)
	r.mu.Unlock()
	r.sched.Cancel(locationID)
	return ok
}

// Len returns the number of ambient locations.
func (r *Runner) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Stop removes every ambient timer.
func (r *Runner) Stop() {
	r.mu.Lock()
	ids := make([]ulid.ULID, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	clear(r.rooms)
	r.mu.Unlock()
	for _, id := range ids {
		r.sched.Cancel(id)
	}
}

func (r *Runner) tick(ctx context.Context, h scheduler.Handle) {
	r.mu.RLock()
	s, ok := r.rooms[h.Agent()]
	r.mu.RUnlock()
	if !ok || r.rand.Float64() >= s.Chance {
		return
	}

	line := s.Lines[r.rand.IntN(len(s.Lines))]
	if err := r.world.Notify(ctx, world.ToLocation(h.Agent()), line); err != nil {
		errutil.LogError(ctx, r.logger, "ambient line failed", err, "location_id", h.Agent().String())
		return
	}
	Lines.Inc()
}
