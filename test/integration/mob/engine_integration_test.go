// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package mob_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/admin"
	"github.com/holomush/holomob/internal/ambient"
	"github.com/holomush/holomob/internal/combat"
	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/internal/mob"
	"github.com/holomush/holomob/internal/scheduler"
	"github.com/holomush/holomob/internal/world"
)

const (
	fast = 10 * time.Millisecond
	wait = 2 * time.Second
)

// env is a fully wired world running on the real clock.
type env struct {
	ctx     context.Context
	access  *access.StaticAccessControl
	world   *world.Memory
	sched   *scheduler.Scheduler
	engine  *mob.Engine
	admin   *admin.Controller
	ambient *ambient.Runner
	locs    map[string]world.Location
}

func newEnv() *env {
	ac := access.NewStaticAccessControl()
	w := world.NewMemory(world.WithAccessControl(ac))
	s := scheduler.New()
	rnd := core.NewSeededRand(1)

	engine, err := mob.NewEngine(mob.EngineConfig{
		World:     w,
		Scheduler: s,
		Combat:    combat.NewResolver(w, w, combat.WithRand(rnd)),
		Rand:      rnd,
	})
	Expect(err).NotTo(HaveOccurred())
	w.SetArrivalListener(engine)

	e := &env{
		ctx:     context.Background(),
		access:  ac,
		world:   w,
		sched:   s,
		engine:  engine,
		admin:   admin.NewController(engine, ac, nil),
		ambient: ambient.NewRunner(w, s, ambient.WithRand(rnd)),
		locs:    make(map[string]world.Location),
	}
	for _, name := range []string{"Hangar", "Catwalk", "Recovery Bay"} {
		loc, err := world.NewLocation(name, "")
		Expect(err).NotTo(HaveOccurred())
		if name == "Recovery Bay" {
			loc.Restorative = true
		}
		Expect(w.AddLocation(*loc)).To(Succeed())
		e.locs[name] = *loc
	}
	e.link("Hangar", "Catwalk", "up")
	e.link("Catwalk", "Hangar", "down")

	DeferCleanup(func() {
		e.ambient.Stop()
		s.Stop()
		w.Close()
	})
	return e
}

func (e *env) link(from, to, name string) {
	exit, err := world.NewExit(e.locs[from].ID, e.locs[to].ID, name)
	Expect(err).NotTo(HaveOccurred())
	Expect(e.world.AddExit(*exit)).To(Succeed())
}

func (e *env) drone(name string, potency float64) mob.Config {
	cfg := mob.DefaultConfig(name, "Hangar")
	cfg.PatrolPace = fast
	cfg.HuntPace = fast
	cfg.AttackPace = fast
	cfg.DeathPace = 5 * fast
	cfg.AmbientChance = 0
	cfg.Weapon = combat.Weapon{Name: "a plasma cutter", Potency: potency}
	cfg.Defeat = combat.Defeat{
		Message:     "Your vision goes dark.",
		RoomMessage: "{name} drags a body away.",
		SendTo:      "Recovery Bay",
	}
	cfg.Messages = mob.Messages{
		Ineffective: "Sparks fly off {name}.",
		Death:       "{name} falls apart.",
	}
	return cfg
}

func (e *env) spawn(cfg mob.Config) ulid.ULID {
	id, err := e.engine.Spawn(e.ctx, cfg)
	Expect(err).NotTo(HaveOccurred())
	return id
}

func (e *env) player(name, at string) world.Character {
	c, err := world.NewCharacter(name, 100)
	Expect(err).NotTo(HaveOccurred())
	Expect(e.world.AddCharacter(e.ctx, *c, e.locs[at].ID)).To(Succeed())
	return *c
}

func (e *env) state(id ulid.ULID) func() mob.State {
	return func() mob.State {
		snap, err := e.engine.Agent(id)
		Expect(err).NotTo(HaveOccurred())
		return snap.State
	}
}

func (e *env) locationOf(id ulid.ULID) func() ulid.ULID {
	return func() ulid.ULID {
		at, err := e.world.LocationOf(e.ctx, id)
		Expect(err).NotTo(HaveOccurred())
		return at
	}
}

var _ = Describe("Agents on the real clock", func() {
	var e *env

	BeforeEach(func() {
		e = newEnv()
	})

	Describe("Patrol and attack", func() {
		It("defeats an arriving player and sends them to the fallback location", func() {
			cfg := e.drone("Sentinel", 150)
			cfg.Patrolling = false
			cfg.Home = "Catwalk"
			sentinel := e.spawn(cfg)
			Expect(e.engine.Activate(e.ctx, sentinel)).To(Succeed())

			ada := e.player("Ada", "Hangar")
			inbox := e.world.Broadcaster().Subscribe(core.OccupantStream(ada.ID))
			Expect(e.world.Move(e.ctx, ada.ID, e.locs["Catwalk"].ID)).To(Succeed())

			Eventually(e.locationOf(ada.ID), wait).Should(Equal(e.locs["Recovery Bay"].ID))
			Eventually(func() float64 {
				h, err := e.world.Health(e.ctx, ada.ID)
				Expect(err).NotTo(HaveOccurred())
				return h
			}, wait).Should(BeNumerically("==", 100), "restorative location heals the defeated")

			Eventually(inbox, wait).Should(Receive(WithTransform(func(ev core.Event) string {
				msg, _ := ev.Message()
				return msg
			}, Equal("Your vision goes dark."))))
		})
	})

	Describe("Death and revival", func() {
		It("revives a killed agent at home after its death pace", func() {
			drone := e.spawn(e.drone("Drone", 1))
			Expect(e.engine.Activate(e.ctx, drone)).To(Succeed())
			ada := e.player("Ada", "Recovery Bay")

			res, err := e.engine.OnHit(e.ctx, drone, combat.Weapon{Name: "a rune blade", Empowered: true}, ada.ID, 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Killed).To(BeTrue())
			Expect(e.state(drone)()).To(Equal(mob.Dormant))
			Expect(e.locationOf(drone)()).To(Equal(ulid.ULID{}))

			Eventually(e.state(drone), wait).Should(Equal(mob.Patrolling))
			snap, err := e.engine.Agent(drone)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Health).To(BeNumerically("==", mob.DefaultFullHealth))
			Expect(e.locationOf(drone)()).NotTo(Equal(ulid.ULID{}))
		})
	})

	Describe("Admin control", func() {
		It("deactivates a ticking agent immediately and reactivates it by name", func() {
			drone := e.spawn(e.drone("Drone", 1))
			Expect(e.admin.Toggle(e.ctx, access.SubjectSystem, admin.CommandOn, "drone")).To(Succeed())
			Expect(e.state(drone)()).To(Equal(mob.Patrolling))

			Expect(e.admin.Toggle(e.ctx, access.SubjectSystem, admin.CommandOff, "Drone")).To(Succeed())
			Expect(e.state(drone)()).To(Equal(mob.Dormant))
			Expect(e.locationOf(drone)()).To(Equal(ulid.ULID{}))
			timer, live := e.sched.Lookup(drone)
			Expect(live).To(BeTrue())
			Expect(timer.Hook).To(Equal(mob.HookRevive))

			Expect(e.admin.Toggle(e.ctx, access.SubjectSystem, admin.CommandOn, "Drone")).To(Succeed())
			Expect(e.state(drone)()).To(Equal(mob.Patrolling))
			Expect(e.locationOf(drone)()).NotTo(Equal(ulid.ULID{}))
		})

		It("refuses players", func() {
			drone := e.spawn(e.drone("Drone", 1))
			ada := e.player("Ada", "Hangar")

			err := e.admin.Activate(e.ctx, access.CharacterSubject(ada.ID), drone)
			Expect(admin.PlayerMessage(err)).To(Equal("You don't have permission to do that."))
			Expect(e.state(drone)()).To(Equal(mob.Dormant))
		})
	})

	Describe("Ambience", func() {
		It("delivers lines to everyone in the location", func() {
			ada := e.player("Ada", "Catwalk")
			inbox := e.world.Broadcaster().Subscribe(core.OccupantStream(ada.ID))

			Expect(e.ambient.Add(e.locs["Catwalk"].ID, ambient.Settings{
				Lines:    []string{"Wind howls through the gantry."},
				Interval: fast,
				Chance:   1,
			})).To(Succeed())

			Eventually(inbox, wait).Should(Receive())
		})
	})

	Describe("Concurrent toggling", func() {
		It("keeps every agent consistent under concurrent activation and hits", func() {
			const agents = 10
			ids := make([]ulid.ULID, agents)
			for i := range agents {
				cfg := e.drone(fmt.Sprintf("Drone %d", i), 1)
				cfg.Hunting = true
				cfg.DeathPace = time.Hour
				ids[i] = e.spawn(cfg)
			}
			ada := e.player("Ada", "Recovery Bay")

			var wg sync.WaitGroup
			for i := range 50 {
				wg.Add(1)
				go func(n int) {
					defer GinkgoRecover()
					defer wg.Done()
					id := ids[n%agents]
					switch n % 3 {
					case 0:
						Expect(e.engine.Activate(e.ctx, id)).To(Succeed())
					case 1:
						Expect(e.engine.Deactivate(e.ctx, id)).To(Succeed())
					default:
						_, err := e.engine.OnHit(e.ctx, id, combat.Weapon{Name: "a pipe"}, ada.ID, 5)
						Expect(err).NotTo(HaveOccurred())
					}
				}(i)
			}
			wg.Wait()

			for _, id := range ids {
				snap, err := e.engine.Agent(id)
				Expect(err).NotTo(HaveOccurred())
				timer, live := e.sched.Lookup(id)
				if snap.State == mob.Dormant {
					if live {
						Expect(snap.Alive).To(BeFalse())
						Expect(timer.Hook).To(Equal(mob.HookRevive))
					}
					continue
				}
				Expect(live).To(BeTrue())
				Expect(snap.Alive).To(BeTrue())
				Expect(snap.Health).To(BeNumerically(">", 0))
			}
		})
	})
})
