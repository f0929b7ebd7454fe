// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scheduler runs one repeating timer per agent.
//
// Each agent owns at most one live timer. Installing a timer replaces the
// previous one in a single critical section, and firings for the same agent
// never overlap, including across a replacement. A hook receives only the
// Handle of the timer that fired; the owner compares it with its current
// handle to discard stale ticks.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Hook is invoked on every tick of a timer.
type Hook func(ctx context.Context, h Handle)

// Handle identifies one installed timer. The zero Handle is never live.
type Handle struct {
	agent ulid.ULID
	seq   uint64
}

// Agent returns the agent the timer belongs to.
func (h Handle) Agent() ulid.ULID {
	return h.agent
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.seq == 0
}

// Timer describes a live timer.
type Timer struct {
	Interval time.Duration
	Hook     string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock tickers are created from.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

type timer struct {
	handle   Handle
	interval time.Duration
	hook     string
	fn       Hook
	ticker   Ticker
	done     chan struct{}
}

// slot outlives the timers installed in it so firings stay serialized
// across replacements.
type slot struct {
	fire sync.Mutex
	cur  *timer
}

// Scheduler manages per-agent repeating timers.
type Scheduler struct {
	clock  Clock
	logger *slog.Logger

	mu      sync.Mutex
	slots   map[ulid.ULID]*slot
	seq     uint64
	live    int
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. Call Stop to release its goroutines.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		slots: make(map[ulid.ULID]*slot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Schedule installs a repeating timer for agent, replacing any existing one.
// The first tick happens one interval from now. An interval of zero or less
// only cancels. The returned Handle is zero when no timer was installed.
func (s *Scheduler) Schedule(agent ulid.ULID, interval time.Duration, hook string, fn Hook) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slot(agent)
	s.cancelLocked(sl)
	if interval <= 0 || fn == nil || s.stopped {
		return Handle{}
	}

	s.seq++
	t := &timer{
		handle:   Handle{agent: agent, seq: s.seq},
		interval: interval,
		hook:     hook,
		fn:       fn,
		ticker:   s.clock.NewTicker(interval),
		done:     make(chan struct{}),
	}
	sl.cur = t
	s.live++
	Timers.Inc()

	s.wg.Add(1)
	go s.run(sl, t)
	return t.handle
}

// Reschedule is Schedule under the name used when an owner swaps its timer.
func (s *Scheduler) Reschedule(agent ulid.ULID, interval time.Duration, hook string, fn Hook) Handle {
	return s.Schedule(agent, interval, hook, fn)
}

// Cancel removes the agent's timer. No firing starts after Cancel returns.
// It reports whether a timer was removed.
func (s *Scheduler) Cancel(agent ulid.ULID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[agent]
	if !ok {
		return false
	}
	return s.cancelLocked(sl)
}

// Live reports whether h is still the agent's installed timer.
func (s *Scheduler) Live(h Handle) bool {
	if h.IsZero() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[h.agent]
	return ok && sl.cur != nil && sl.cur.handle == h
}

// Lookup returns the agent's live timer.
func (s *Scheduler) Lookup(agent ulid.ULID) (Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[agent]
	if !ok || sl.cur == nil {
		return Timer{}, false
	}
	return Timer{Interval: sl.cur.interval, Hook: sl.cur.hook}, true
}

// Len returns the number of live timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Stop cancels every timer and waits for in-flight firings to finish.
// Schedule after Stop installs nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, sl := range s.slots {
		s.cancelLocked(sl)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) slot(agent ulid.ULID) *slot {
	sl, ok := s.slots[agent]
	if !ok {
		sl = &slot{}
		s.slots[agent] = sl
	}
	return sl
}

// cancelLocked must be called with s.mu held.
func (s *Scheduler) cancelLocked(sl *slot) bool {
	if sl.cur == nil {
		return false
	}
	close(sl.cur.done)
	sl.cur = nil
	s.live--
	Timers.Dec()
	return true
}

func (s *Scheduler) run(sl *slot, t *timer) {
	defer s.wg.Done()
	defer t.ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-s.ctx.Done():
			return
		case <-t.ticker.C():
			s.fire(sl, t)
		}
	}
}

func (s *Scheduler) fire(sl *slot, t *timer) {
	sl.fire.Lock()
	defer sl.fire.Unlock()

	// Replaced or cancelled while waiting for the previous firing.
	if !s.Live(t.handle) {
		return
	}
	s.invoke(t)
}

func (s *Scheduler) invoke(t *timer) {
	start := time.Now()
	defer func() {
		FireDuration.WithLabelValues(t.hook).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			Panics.Inc()
			s.logger.Error("scheduled hook panicked",
				"agent_id", t.handle.agent.String(),
				"hook", t.hook,
				"panic", r)
		}
	}()
	Fires.WithLabelValues(t.hook).Inc()
	t.fn(s.ctx, t.handle)
}
