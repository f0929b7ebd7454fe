// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/admin"
	"github.com/holomush/holomob/internal/ambient"
	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/config"
	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/internal/mob"
	"github.com/holomush/holomob/internal/observability"
	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/world"
)

// runtime is the wired set of components serving one configuration.
type runtime struct {
	access  *access.StaticAccessControl
	world   *world.Memory
	sched   *scheduler.Scheduler
	engine  *mob.Engine
	admin   *admin.Controller
	ambient *ambient.Runner
	seeded  *config.Seeded
	agents  []ulid.ULID
	ready   atomic.Bool
}

// runtimeOption adjusts how the runtime is built.
type runtimeOption func(*runtimeOptions)

type runtimeOptions struct {
	clock scheduler.Clock
}

// withClock replaces the scheduler clock.
func withClock(c scheduler.Clock) runtimeOption {
	return func(o *runtimeOptions) { o.clock = c }
}

// buildRuntime wires the world, scheduler, combat resolver, engine, admin
// controller and ambience, then seeds them from cfg. The configuration must
// already be valid. Close releases everything.
func buildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...runtimeOption) (*runtime, error) {
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}

	ac, err := access.NewStaticAccessControlWithRoles(cfg.RoleDefinitions())
	if err != nil {
		return nil, oops.In("runtime").Wrap(err)
	}

	var rnd core.Rand = core.DefaultRand()
	if cfg.Seed != 0 {
		rnd = core.NewSeededRand(cfg.Seed)
	}

	schedOpts := []scheduler.Option{scheduler.WithLogger(logger)}
	if o.clock != nil {
		schedOpts = append(schedOpts, scheduler.WithClock(o.clock))
	}

	rt := &runtime{
		access: ac,
		world: world.NewMemory(
			world.WithAccessControl(ac),
			world.WithLogger(logger),
			world.WithArrivalQueueSize(cfg.ArrivalQueueSize),
		),
		sched: scheduler.New(schedOpts...),
	}

	resolver := combat.NewResolver(rt.world, rt.world, combat.WithRand(rnd), combat.WithLogger(logger))
	rt.engine, err = mob.NewEngine(mob.EngineConfig{
		World:     rt.world,
		Scheduler: rt.sched,
		Combat:    resolver,
		Rand:      rnd,
		Logger:    logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.world.SetArrivalListener(rt.engine)
	rt.admin = admin.NewController(rt.engine, ac, logger)
	rt.ambient = ambient.NewRunner(rt.world, rt.sched, ambient.WithRand(rnd), ambient.WithLogger(logger))

	if rt.seeded, err = cfg.SeedWorld(ctx, rt.world, ac); err != nil {
		rt.Close()
		return nil, err
	}
	if rt.agents, err = cfg.SpawnMobs(ctx, rt.engine); err != nil {
		rt.Close()
		return nil, err
	}
	if err := cfg.StartAmbience(rt.ambient, rt.seeded); err != nil {
		rt.Close()
		return nil, err
	}

	rt.ready.Store(true)
	logger.InfoContext(ctx, "runtime ready",
		"locations", len(rt.seeded.Locations),
		"characters", len(rt.seeded.Characters),
		"agents", len(rt.agents),
		"ambient_locations", rt.ambient.Len())
	return rt, nil
}

// Ready reports whether the runtime finished seeding and is not closed.
func (r *runtime) Ready() bool {
	return r.ready.Load()
}

// Close stops timers and the world's arrival dispatcher.
func (r *runtime) Close() {
	r.ready.Store(false)
	if r.ambient != nil {
		r.ambient.Stop()
	}
	r.sched.Stop()
	r.world.Close()
}

// metricRegistrars lists every package whose collectors are exported.
func metricRegistrars() []observability.Registrar {
	return []observability.Registrar{
		core.RegisterMetrics,
		world.RegisterMetrics,
		scheduler.RegisterMetrics,
		combat.RegisterMetrics,
		mob.RegisterMetrics,
		ambient.RegisterMetrics,
	}
}
