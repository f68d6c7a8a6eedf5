// Package registry keeps the authoritative set of celestial bodies: the
// single source of truth the flight modes, collision detection and HUD
// read from. Bodies are stored by pointer so ephemeris updates apply
// in-place; iteration follows catalog insertion order so collision
// checks and panel rows are deterministic.
package registry

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/model"
	"github.com/helioforge/exploration-simulator/scene"
)

var (
	// ErrBodyNotFound is returned when a lookup names an unregistered body.
	ErrBodyNotFound = errors.New("body not found")
	// ErrBodyExists is returned when adding a body whose name is taken.
	ErrBodyExists = errors.New("body already exists")
	// ErrInvalidRadius is returned when a body is added with a non-positive radius.
	ErrInvalidRadius = errors.New("body radius must be positive")
)

// EventType indicates what kind of change happened in the registry.
type EventType int

const (
	EventBodyAdded EventType = iota
	EventBodiesMoved
	EventScaleChanged
)

// Event is emitted to subscribers when the registry changes.
type Event struct {
	Type EventType
	Body model.Body // copy; populated for EventBodyAdded
	Time time.Time  // populated for EventBodiesMoved
}

// Config holds the scaling parameters shared by every body.
type Config struct {
	// KmPerUnit fixes the scene scale. Defaults to one AU per unit.
	KmPerUnit float64
	// SizeScale exaggerates body radii for visibility. Defaults to 1.
	SizeScale float64
	// CollisionMargin is added to each scaled radius to form the camera
	// standoff, in scene units.
	CollisionMargin float64
}

// DefaultCollisionMargin is roughly 3000 km at the default scene scale.
const DefaultCollisionMargin = 2e-5

func (c *Config) applyDefaults() {
	if c.KmPerUnit <= 0 {
		c.KmPerUnit = model.DefaultKmPerUnit
	}
	if c.SizeScale <= 0 {
		c.SizeScale = 1
	}
	if c.CollisionMargin <= 0 {
		c.CollisionMargin = DefaultCollisionMargin
	}
}

// Registry is the in-memory, thread-safe body store.
type Registry struct {
	mu sync.RWMutex

	cfg    Config
	bodies map[string]*model.Body
	order  []string

	subs map[int]func(Event)
	next int
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig overrides the default scaling configuration.
func WithConfig(cfg Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		bodies: make(map[string]*model.Body),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cfg.applyDefaults()
	return r
}

// KmPerUnit returns the scene scale in kilometres per unit.
func (r *Registry) KmPerUnit() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.KmPerUnit
}

// SizeScale returns the current radius exaggeration factor.
func (r *Registry) SizeScale() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.SizeScale
}

// Add registers a body. The body's scaled radius and collision distance
// are computed here and kept current by SetSizeScale.
func (r *Registry) Add(b *model.Body) error {
	if b.Name == "" {
		return fmt.Errorf("body with empty name")
	}
	if b.RadiusKm <= 0 {
		return fmt.Errorf("body %q: %w", b.Name, ErrInvalidRadius)
	}

	r.mu.Lock()
	if _, exists := r.bodies[b.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("body %q: %w", b.Name, ErrBodyExists)
	}
	r.rescale(b)
	r.bodies[b.Name] = b
	r.order = append(r.order, b.Name)
	event := Event{Type: EventBodyAdded, Body: *b}
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, event)
	return nil
}

// Body returns the body with the given name.
func (r *Registry) Body(name string) (*model.Body, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bodies[name]
	if !ok {
		return nil, fmt.Errorf("body %q: %w", name, ErrBodyNotFound)
	}
	return b, nil
}

// Bodies returns all bodies in insertion order.
func (r *Registry) Bodies() []*model.Body {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.Body, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.bodies[name])
	}
	return res
}

// CollideableBodies returns the bodies flagged as obstacles, in insertion
// order.
func (r *Registry) CollideableBodies() []*model.Body {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*model.Body
	for _, name := range r.order {
		if b := r.bodies[name]; b.Collideable {
			res = append(res, b)
		}
	}
	return res
}

// ColliderHandles snapshots the collideable bodies as scene colliders at
// their current positions.
func (r *Registry) ColliderHandles() []scene.Collider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []scene.Collider
	for _, name := range r.order {
		b := r.bodies[name]
		if !b.Collideable {
			continue
		}
		res = append(res, scene.Collider{
			Name:   b.Name,
			Center: b.Position,
			Radius: b.ScaledRadius,
		})
	}
	return res
}

// Count returns the number of registered bodies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bodies)
}

// ClosestDistance returns the smallest Euclidean distance from the given
// point to any named body's center, or to every collideable body's
// center when no names are given. Unknown names are skipped. With no
// candidates at all it returns +Inf, which callers treat as "nothing
// nearby".
func (r *Registry) ClosestDistance(from mgl64.Vec3, names ...string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	closest := math.Inf(1)
	consider := func(b *model.Body) {
		if d := from.Sub(b.Position).Len(); d < closest {
			closest = d
		}
	}

	if len(names) == 0 {
		for _, name := range r.order {
			if b := r.bodies[name]; b.Collideable {
				consider(b)
			}
		}
		return closest
	}

	for _, name := range names {
		if b, ok := r.bodies[name]; ok {
			consider(b)
		}
	}
	return closest
}

// MoveBodies repositions every body that has an ephemeris at the given
// simulated instant, then emits a single EventBodiesMoved.
func (r *Registry) MoveBodies(t time.Time) {
	r.mu.Lock()
	for _, name := range r.order {
		b := r.bodies[name]
		if b.Ephemeris != nil {
			b.Position = b.Ephemeris(t)
		}
	}
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, Event{Type: EventBodiesMoved, Time: t})
}

// RotateBodies advances each body's spin by simSeconds of simulated time.
func (r *Registry) RotateBodies(simSeconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		b := r.bodies[name]
		if rate := b.SpinRate(); rate != 0 {
			b.Spin = math.Mod(b.Spin+rate*simSeconds, 2*math.Pi)
		}
	}
}

// MoveBodyChildren re-anchors every child object to its parent's current
// position.
func (r *Registry) MoveBodyChildren() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		b := r.bodies[name]
		for i := range b.Children {
			b.Children[i].Position = b.Position.Add(b.Children[i].Offset)
		}
	}
}

// SetSizeScale changes the radius exaggeration factor and recomputes
// every body's scaled radius and collision distance. Non-positive
// factors are ignored.
func (r *Registry) SetSizeScale(factor float64) {
	if factor <= 0 {
		return
	}

	r.mu.Lock()
	r.cfg.SizeScale = factor
	for _, name := range r.order {
		r.rescale(r.bodies[name])
	}
	subs := r.snapshotSubs()
	r.mu.Unlock()

	notify(subs, Event{Type: EventScaleChanged})
}

// Subscribe registers a callback for registry events. It returns an
// unsubscribe function.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// rescale recomputes the derived scaling fields. Caller holds the lock.
func (r *Registry) rescale(b *model.Body) {
	b.ScaledRadius = model.KmToUnits(b.RadiusKm, r.cfg.KmPerUnit) * r.cfg.SizeScale
	b.CollisionDistance = b.ScaledRadius + r.cfg.CollisionMargin
}

// snapshotSubs copies the subscriber set. Caller holds the lock.
func (r *Registry) snapshotSubs() []func(Event) {
	subs := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	return subs
}

// Events are delivered outside the registry lock to avoid deadlocks when
// subscribers call back into the registry.
func notify(subs []func(Event), event Event) {
	for _, fn := range subs {
		fn(event)
	}
}
