// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/core"
	"github.com/holomush/holomob/pkg/errutil"
)

// DefaultArrivalQueueSize bounds pending arrival notifications.
const DefaultArrivalQueueSize = 256

// ArrivalsDropped counts arrival notifications dropped because the queue was full.
var ArrivalsDropped = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "holomob_world_arrivals_dropped_total",
	Help: "Arrival notifications dropped because the dispatch queue was full",
})

// RegisterMetrics registers world metrics with the given registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ArrivalsDropped)
}

// Option configures a Memory world.
type Option func(*Memory)

// WithAccessControl sets the access control used by IsProtected.
func WithAccessControl(ac access.AccessControl) Option {
	return func(m *Memory) { m.access = ac }
}

// WithBroadcaster sets the broadcaster notifications are delivered through.
func WithBroadcaster(b *core.Broadcaster) Option {
	return func(m *Memory) { m.broadcaster = b }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Memory) { m.logger = l }
}

// WithArrivalQueueSize sets the capacity of the arrival queue.
func WithArrivalQueueSize(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.queueSize = n
		}
	}
}

// room is one location and its contents. mu guards exits and occupants.
type room struct {
	mu        sync.RWMutex
	loc       Location
	exits     []Exit
	occupants []*entity
}

func (r *room) remove(e *entity) {
	for i, o := range r.occupants {
		if o == e {
			r.occupants = append(r.occupants[:i], r.occupants[i+1:]...)
			return
		}
	}
}

// entity is a character or agent known to the world.
type entity struct {
	id         ulid.ULID
	kind       OccupantKind
	name       string
	controlled atomic.Bool
	at         atomic.Pointer[room]

	mu         sync.Mutex // guards health
	health     float64
	fullHealth float64
}

func (e *entity) occupant() Occupant {
	return Occupant{ID: e.id, Kind: e.kind, Name: e.name, Controlled: e.controlled.Load()}
}

type arrival struct {
	observer ulid.ULID
	arriving ulid.ULID
}

// Memory is an in-memory world. Each location has its own lock; a move locks
// the source and destination in id order.
type Memory struct {
	mu       sync.RWMutex // guards the maps, not their values
	rooms    map[ulid.ULID]*room
	byName   map[string]*room
	entities map[ulid.ULID]*entity

	access      access.AccessControl
	broadcaster *core.Broadcaster
	logger      *slog.Logger

	listenerMu sync.RWMutex
	listener   ArrivalListener

	queueSize int
	arrivals  chan arrival
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewMemory creates an empty world and starts its arrival dispatcher.
// Call Close to stop the dispatcher.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		rooms:     make(map[ulid.ULID]*room),
		byName:    make(map[string]*room),
		entities:  make(map[ulid.ULID]*entity),
		queueSize: DefaultArrivalQueueSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.broadcaster == nil {
		m.broadcaster = core.NewBroadcaster()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.arrivals = make(chan arrival, m.queueSize)
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.wg.Add(1)
	go m.dispatch()
	return m
}

// Close stops the arrival dispatcher. Pending notifications are discarded.
func (m *Memory) Close() {
	m.cancel()
	m.wg.Wait()
}

// Broadcaster returns the broadcaster notifications are delivered through.
func (m *Memory) Broadcaster() *core.Broadcaster {
	return m.broadcaster
}

// SetArrivalListener sets who is told about player arrivals.
func (m *Memory) SetArrivalListener(l ArrivalListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listener = l
}

func (m *Memory) arrivalListener() ArrivalListener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.listener
}

// AddLocation adds a location. Names are unique regardless of case.
func (m *Memory) AddLocation(loc Location) error {
	if err := loc.Validate(); err != nil {
		return invalidObject("location", err)
	}
	key := nameKey(loc.Name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[loc.ID]; ok {
		return oops.In("world").Code(CodeDuplicateLocation).
			With("location_id", loc.ID.String()).
			Errorf("location already exists")
	}
	if _, ok := m.byName[key]; ok {
		return oops.In("world").Code(CodeDuplicateLocation).
			With("name", loc.Name).
			Errorf("location name already in use")
	}
	r := &room{loc: loc}
	m.rooms[loc.ID] = r
	m.byName[key] = r
	return nil
}

// AddExit adds an exit. Both ends must already exist.
func (m *Memory) AddExit(exit Exit) error {
	if err := exit.Validate(); err != nil {
		return invalidObject("exit", err)
	}
	from, err := m.room(exit.FromLocationID)
	if err != nil {
		return err
	}
	if _, err := m.room(exit.ToLocationID); err != nil {
		return err
	}
	from.mu.Lock()
	defer from.mu.Unlock()
	from.exits = append(from.exits, exit)
	return nil
}

// AddCharacter adds a character at full health and places it in locationID
// when that is non-zero.
func (m *Memory) AddCharacter(ctx context.Context, c Character, locationID ulid.ULID) error {
	if err := c.Validate(); err != nil {
		return invalidObject("character", err)
	}
	e := &entity{id: c.ID, kind: OccupantCharacter, name: c.Name, health: c.FullHealth, fullHealth: c.FullHealth}
	e.controlled.Store(c.Controlled)
	if err := m.addEntity(e); err != nil {
		return err
	}
	if locationID.IsZero() {
		return nil
	}
	return m.Move(ctx, c.ID, locationID)
}

// RegisterAgent implements Query.
func (m *Memory) RegisterAgent(_ context.Context, id ulid.ULID, name string) error {
	if id.IsZero() {
		return invalidObject("agent", &ValidationError{Field: "id", Message: "cannot be zero"})
	}
	if err := ValidateName(name); err != nil {
		return invalidObject("agent", err)
	}
	return m.addEntity(&entity{id: id, kind: OccupantAgent, name: name})
}

func (m *Memory) addEntity(e *entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[e.id]; ok {
		return oops.In("world").Code(CodeDuplicateOccupant).
			With("occupant_id", e.id.String()).
			Errorf("occupant already exists")
	}
	m.entities[e.id] = e
	return nil
}

// SetControlled marks whether a player is connected to a character.
func (m *Memory) SetControlled(_ context.Context, id ulid.ULID, controlled bool) error {
	e, err := m.entity(id)
	if err != nil {
		return err
	}
	if e.kind != OccupantCharacter {
		return notACharacter(id)
	}
	e.controlled.Store(controlled)
	return nil
}

// Location returns a location by id.
func (m *Memory) Location(_ context.Context, id ulid.ULID) (Location, error) {
	r, err := m.room(id)
	if err != nil {
		return Location{}, err
	}
	return r.loc, nil
}

// Occupant returns the current snapshot of an occupant.
func (m *Memory) Occupant(_ context.Context, id ulid.ULID) (Occupant, error) {
	e, err := m.entity(id)
	if err != nil {
		return Occupant{}, err
	}
	return e.occupant(), nil
}

// Health returns a character's current health.
func (m *Memory) Health(_ context.Context, id ulid.ULID) (float64, error) {
	e, err := m.character(id)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.health, nil
}

// ReceiveHit subtracts damage from a character's health and returns what is left.
func (m *Memory) ReceiveHit(_ context.Context, defenderID ulid.ULID, damage float64) (float64, error) {
	e, err := m.character(defenderID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.health -= damage
	return e.health, nil
}

// Restore returns a character to full health.
func (m *Memory) Restore(_ context.Context, id ulid.ULID) error {
	e, err := m.character(id)
	if err != nil {
		return err
	}
	e.restore()
	return nil
}

func (e *entity) restore() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.health = e.fullHealth
}

// ListOccupants implements Query.
func (m *Memory) ListOccupants(_ context.Context, locationID ulid.ULID, exclude ...ulid.ULID) ([]Occupant, error) {
	r, err := m.room(locationID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Occupant, 0, len(r.occupants))
	for _, e := range r.occupants {
		if excluded(e.id, exclude) {
			continue
		}
		out = append(out, e.occupant())
	}
	return out, nil
}

// ListTraversableExits implements Query.
func (m *Memory) ListTraversableExits(ctx context.Context, locationID, traverserID ulid.ULID) ([]Route, error) {
	r, err := m.room(locationID)
	if err != nil {
		return nil, err
	}
	traverser, err := m.entity(traverserID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	exits := make([]Exit, len(r.exits))
	copy(exits, r.exits)
	r.mu.RUnlock()

	who := traverser.occupant()
	routes := make([]Route, 0, len(exits))
	for i := range exits {
		if !exits[i].CanTraverse(ctx, who) {
			continue
		}
		dest, err := m.room(exits[i].ToLocationID)
		if err != nil {
			return nil, err
		}
		routes = append(routes, Route{Exit: exits[i], Destination: dest.loc})
	}
	return routes, nil
}

// Move implements Query. Moving an occupant to where it already is does nothing.
func (m *Memory) Move(ctx context.Context, occupantID, destinationID ulid.ULID) error {
	e, err := m.entity(occupantID)
	if err != nil {
		return err
	}
	to, err := m.room(destinationID)
	if err != nil {
		return err
	}
	observers, moved := relocate(e, to)
	if moved {
		m.arrived(ctx, e, to, observers)
	}
	return nil
}

// Remove implements Query.
func (m *Memory) Remove(_ context.Context, occupantID ulid.ULID) error {
	e, err := m.entity(occupantID)
	if err != nil {
		return err
	}
	relocate(e, nil)
	return nil
}

// LocationOf implements Query.
func (m *Memory) LocationOf(_ context.Context, occupantID ulid.ULID) (ulid.ULID, error) {
	e, err := m.entity(occupantID)
	if err != nil {
		return ulid.ULID{}, err
	}
	if r := e.at.Load(); r != nil {
		return r.loc.ID, nil
	}
	return ulid.ULID{}, nil
}

// ResolveLocationByName implements Query.
func (m *Memory) ResolveLocationByName(_ context.Context, name string) (Location, error) {
	m.mu.RLock()
	r, ok := m.byName[nameKey(name)]
	m.mu.RUnlock()
	if !ok {
		return Location{}, locationNameNotFound(name)
	}
	return r.loc, nil
}

// Notify implements Query.
func (m *Memory) Notify(_ context.Context, target Target, message string, exclude ...ulid.ULID) error {
	switch {
	case !target.Occupant.IsZero():
		if _, err := m.entity(target.Occupant); err != nil {
			return err
		}
		if !excluded(target.Occupant, exclude) {
			m.send(target.Occupant, message)
		}
		return nil
	case !target.Location.IsZero():
		r, err := m.room(target.Location)
		if err != nil {
			return err
		}
		r.mu.RLock()
		recipients := make([]ulid.ULID, 0, len(r.occupants))
		for _, e := range r.occupants {
			if !excluded(e.id, exclude) {
				recipients = append(recipients, e.id)
			}
		}
		r.mu.RUnlock()
		for _, id := range recipients {
			m.send(id, message)
		}
		return nil
	default:
		return oops.In("world").Code("INVALID_TARGET").Errorf("notification target is empty")
	}
}

// IsProtected implements Query.
func (m *Memory) IsProtected(ctx context.Context, occupant Occupant) bool {
	if m.access == nil {
		return false
	}
	return m.access.Check(ctx, access.CharacterSubject(occupant.ID), access.ActionExempt, access.ResourceMobTarget)
}

func (m *Memory) send(id ulid.ULID, message string) {
	m.broadcaster.Broadcast(core.NewMessageEvent(core.OccupantStream(id), core.SystemActor, message))
}

// arrived runs the effects of e entering r: restoration, the arrival
// message, and arrival notifications to agents already there.
func (m *Memory) arrived(ctx context.Context, e *entity, r *room, observers []ulid.ULID) {
	if e.kind != OccupantCharacter {
		return
	}
	if r.loc.Restorative {
		e.restore()
	}
	who := e.occupant()
	if !who.IsPlayer() {
		return
	}
	if r.loc.ArrivalMessage != "" {
		m.send(e.id, r.loc.ArrivalMessage)
	}
	if len(observers) == 0 || m.IsProtected(ctx, who) {
		return
	}
	for _, obs := range observers {
		m.enqueue(ctx, arrival{observer: obs, arriving: e.id})
	}
}

func (m *Memory) enqueue(ctx context.Context, a arrival) {
	if m.ctx.Err() != nil {
		return
	}
	select {
	case m.arrivals <- a:
	default:
		ArrivalsDropped.Inc()
		m.logger.WarnContext(ctx, "arrival queue full, dropping notification",
			"observer_id", a.observer.String(),
			"arriving_id", a.arriving.String())
	}
}

func (m *Memory) dispatch() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case a := <-m.arrivals:
			l := m.arrivalListener()
			if l == nil {
				continue
			}
			if err := l.OnArrival(m.ctx, a.observer, a.arriving); err != nil {
				errutil.LogError(m.ctx, m.logger, "arrival notification failed", err,
					"observer_id", a.observer.String(),
					"arriving_id", a.arriving.String())
			}
		}
	}
}

// relocate moves e into to (nil removes it) and returns the agents already
// present at the destination. The second result is false when e was already there.
func relocate(e *entity, to *room) ([]ulid.ULID, bool) {
	for {
		from := e.at.Load()
		if from == to {
			return nil, false
		}
		unlock := lockRooms(from, to)
		if e.at.Load() != from {
			// Moved concurrently; retry from its new location.
			unlock()
			continue
		}
		if from != nil {
			from.remove(e)
		}
		var observers []ulid.ULID
		if to != nil {
			for _, o := range to.occupants {
				if o.kind == OccupantAgent {
					observers = append(observers, o.id)
				}
			}
			to.occupants = append(to.occupants, e)
		}
		e.at.Store(to)
		unlock()
		return observers, true
	}
}

// lockRooms write-locks both rooms in id order. Either may be nil.
func lockRooms(a, b *room) func() {
	switch {
	case a == nil && b == nil:
		return func() {}
	case a == nil:
		b.mu.Lock()
		return b.mu.Unlock
	case b == nil:
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if b.loc.ID.Compare(a.loc.ID) < 0 {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

func (m *Memory) room(id ulid.ULID) (*room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, locationNotFound(id)
	}
	return r, nil
}

func (m *Memory) entity(id ulid.ULID) (*entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return nil, occupantNotFound(id)
	}
	return e, nil
}

func (m *Memory) character(id ulid.ULID) (*entity, error) {
	e, err := m.entity(id)
	if err != nil {
		return nil, err
	}
	if e.kind != OccupantCharacter {
		return nil, notACharacter(id)
	}
	return e, nil
}

func excluded(id ulid.ULID, exclude []ulid.ULID) bool {
	return slices.Contains(exclude, id)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var _ Query = (*Memory)(nil)
