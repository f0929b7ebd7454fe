// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/scheduler/schedulertest"
	"github.com/holomush/holomob/internal/world"
)

// scriptedRand skips ambient lines and picks a fixed index unless told otherwise.
type scriptedRand struct {
	mu    sync.Mutex
	float float64
	index int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.float
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index % n
}

func (r *scriptedRand) set(float float64, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.float, r.index = float, index
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	world  *world.Memory
	access *access.StaticAccessControl
	sched  *scheduler.Scheduler
	engine *Engine
	rand   *scriptedRand
	locs   map[string]world.Location
}

func newHarness(t *testing.T, locations ...string) *harness {
	t.Helper()
	ac := access.NewStaticAccessControl()
	w := world.NewMemory(world.WithAccessControl(ac))
	t.Cleanup(w.Close)
	s := scheduler.New(scheduler.WithClock(schedulertest.NewClock()))
	t.Cleanup(s.Stop)
	r := &scriptedRand{float: 0.99}

	e, err := NewEngine(EngineConfig{
		World:     w,
		Scheduler: s,
		Combat:    combat.NewResolver(w, w, combat.WithRand(r)),
		Rand:      r,
	})
	require.NoError(t, err)

	h := &harness{
		t:      t,
		ctx:    context.Background(),
		world:  w,
		access: ac,
		sched:  s,
		engine: e,
		rand:   r,
		locs:   make(map[string]world.Location),
	}
	for _, name := range append([]string{"Plaza", "Recovery Bay"}, locations...) {
		loc, err := world.NewLocation(name, "")
		require.NoError(t, err)
		require.NoError(t, w.AddLocation(*loc))
		h.locs[name] = *loc
	}
	return h
}

func (h *harness) link(from, to, name string) {
	h.t.Helper()
	exit, err := world.NewExit(h.locs[from].ID, h.locs[to].ID, name)
	require.NoError(h.t, err)
	require.NoError(h.t, h.world.AddExit(*exit))
}

func testConfig(name string) Config {
	cfg := DefaultConfig(name, "Plaza")
	cfg.Weapon = combat.Weapon{Name: "a laser", Potency: 10}
	cfg.Defeat = combat.Defeat{
		Message:     "Your HUD flickers and fades.",
		RoomMessage: "{name} drops to the ground.",
		SendTo:      "Recovery Bay",
	}
	cfg.Messages = Messages{
		Ineffective: "Your rounds spark harmlessly off {name}.",
		Hit:         "{name} jerks as the blow lands!",
		Death:       "{name} collapses into molten alloy.",
		DeathRoom:   "{name} sparks violently and goes dark.",
	}
	return cfg
}

func (h *harness) spawn(cfg Config) ulid.ULID {
	h.t.Helper()
	id, err := h.engine.Spawn(h.ctx, cfg)
	require.NoError(h.t, err)
	return id
}

func (h *harness) activate(cfg Config) ulid.ULID {
	h.t.Helper()
	id := h.spawn(cfg)
	require.NoError(h.t, h.engine.Activate(h.ctx, id))
	return id
}

func (h *harness) player(name, at string) world.Character {
	h.t.Helper()
	c, err := world.NewCharacter(name, 100)
	require.NoError(h.t, err)
	require.NoError(h.t, h.world.AddCharacter(h.ctx, *c, h.locs[at].ID))
	return *c
}

func (h *harness) place(id ulid.ULID, at string) {
	h.t.Helper()
	require.NoError(h.t, h.world.Move(h.ctx, id, h.locs[at].ID))
}

func (h *harness) snapshot(id ulid.ULID) Snapshot {
	h.t.Helper()
	snap, err := h.engine.Agent(id)
	require.NoError(h.t, err)
	return snap
}

// tick fires the agent's live timer once, as the scheduler would.
func (h *harness) tick(id ulid.ULID) {
	h.t.Helper()
	snap := h.snapshot(id)
	require.False(h.t, snap.Timer.IsZero(), "agent %s has no timer", snap.Name)
	h.engine.tick(h.ctx, snap.Timer)
}

func (h *harness) where(id ulid.ULID) string {
	h.t.Helper()
	at, err := h.world.LocationOf(h.ctx, id)
	require.NoError(h.t, err)
	for name, loc := range h.locs {
		if loc.ID == at {
			return name
		}
	}
	return ""
}

func (h *harness) inbox(id ulid.ULID) chan core.Event {
	return h.world.Broadcaster().Subscribe(core.OccupantStream(id))
}

// assertTimerMatchesState checks that a Dormant agent has no timer or only its
// revive timer, and that any other state has exactly the timer for its pace.
func (h *harness) assertTimerMatchesState(id ulid.ULID) {
	h.t.Helper()
	snap := h.snapshot(id)
	cfg := h.engine.agents[id].cfg
	timer, live := h.sched.Lookup(id)

	if snap.State == Dormant {
		if !live {
			assert.True(h.t, snap.Timer.IsZero())
			return
		}
		assert.False(h.t, snap.Alive, "only a dead agent keeps a timer while Dormant")
		assert.Equal(h.t, scheduler.Timer{Interval: cfg.DeathPace, Hook: HookRevive}, timer)
		assert.True(h.t, h.sched.Live(snap.Timer))
		return
	}

	require.True(h.t, live, "%s agent must have a timer", snap.State)
	assert.True(h.t, h.sched.Live(snap.Timer))
	assert.True(h.t, snap.Alive)
	assert.Greater(h.t, snap.Health, 0.0)

	want := map[State]scheduler.Timer{
		Patrolling: {Interval: cfg.PatrolPace, Hook: HookPatrol},
		Hunting:    {Interval: cfg.HuntPace, Hook: HookHunt},
		Attacking:  {Interval: cfg.AttackPace, Hook: HookAttack},
	}[snap.State]
	assert.Equal(h.t, want, timer)
}

func receive(t *testing.T, ch <-chan core.Event) string {
	t.Helper()
	select {
	case ev := <-ch:
		msg, err := ev.Message()
		require.NoError(t, err)
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func drain(ch <-chan core.Event) []string {
	var out []string
	for {
		select {
		case ev := <-ch:
			msg, _ := ev.Message()
			out = append(out, msg)
		default:
			return out
		}
	}
}
