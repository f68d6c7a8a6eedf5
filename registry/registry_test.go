package registry

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/model"
)

// kmScale makes scene units equal kilometres so test numbers stay round.
var kmScale = Config{KmPerUnit: 1, SizeScale: 1, CollisionMargin: 0.5}

func newKmRegistry() *Registry {
	return New(WithConfig(kmScale))
}

func addBody(t *testing.T, r *Registry, b *model.Body) {
	t.Helper()
	if err := r.Add(b); err != nil {
		t.Fatalf("Add(%s): %v", b.Name, err)
	}
}

func TestAddComputesDerivedFields(t *testing.T) {
	r := newKmRegistry()
	b := &model.Body{Name: "earth", RadiusKm: 2, Collideable: true}
	addBody(t, r, b)

	if b.ScaledRadius != 2 {
		t.Fatalf("ScaledRadius = %v, want 2", b.ScaledRadius)
	}
	if b.CollisionDistance != 2.5 {
		t.Fatalf("CollisionDistance = %v, want scaled radius + margin = 2.5", b.CollisionDistance)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	r := newKmRegistry()
	addBody(t, r, &model.Body{Name: "earth", RadiusKm: 1})

	err := r.Add(&model.Body{Name: "earth", RadiusKm: 1})
	if !errors.Is(err, ErrBodyExists) {
		t.Fatalf("duplicate Add error = %v, want ErrBodyExists", err)
	}
}

func TestAddRejectsNonPositiveRadius(t *testing.T) {
	r := newKmRegistry()
	if err := r.Add(&model.Body{Name: "ghost"}); !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("zero-radius Add error = %v, want ErrInvalidRadius", err)
	}
	if err := r.Add(&model.Body{Name: "ghost", RadiusKm: -3}); !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("negative-radius Add error = %v, want ErrInvalidRadius", err)
	}
}

func TestBodyNotFound(t *testing.T) {
	r := newKmRegistry()
	if _, err := r.Body("phobos"); !errors.Is(err, ErrBodyNotFound) {
		t.Fatalf("lookup error = %v, want ErrBodyNotFound", err)
	}
}

func TestBodiesKeepInsertionOrder(t *testing.T) {
	r := newKmRegistry()
	for _, name := range []string{"sun", "mercury", "venus", "earth"} {
		addBody(t, r, &model.Body{Name: name, RadiusKm: 1})
	}

	bodies := r.Bodies()
	want := []string{"sun", "mercury", "venus", "earth"}
	if len(bodies) != len(want) {
		t.Fatalf("got %d bodies, want %d", len(bodies), len(want))
	}
	for i, b := range bodies {
		if b.Name != want[i] {
			t.Fatalf("bodies[%d] = %s, want %s", i, b.Name, want[i])
		}
	}
}

func TestCollideableBodiesFilters(t *testing.T) {
	r := newKmRegistry()
	addBody(t, r, &model.Body{Name: "earth", RadiusKm: 1, Collideable: true})
	addBody(t, r, &model.Body{Name: "waypoint", RadiusKm: 1})
	addBody(t, r, &model.Body{Name: "mars", RadiusKm: 1, Collideable: true})

	got := r.CollideableBodies()
	if len(got) != 2 || got[0].Name != "earth" || got[1].Name != "mars" {
		t.Fatalf("CollideableBodies = %v, want [earth mars]", names(got))
	}
}

func TestColliderHandlesSnapshotPositions(t *testing.T) {
	r := newKmRegistry()
	b := &model.Body{Name: "earth", RadiusKm: 2, Collideable: true, Position: mgl64.Vec3{5, 0, 0}}
	addBody(t, r, b)
	addBody(t, r, &model.Body{Name: "waypoint", RadiusKm: 1})

	handles := r.ColliderHandles()
	if len(handles) != 1 {
		t.Fatalf("got %d collider handles, want 1", len(handles))
	}
	h := handles[0]
	if h.Name != "earth" || h.Center != (mgl64.Vec3{5, 0, 0}) || h.Radius != 2 {
		t.Fatalf("handle = %+v, want earth at {5 0 0} radius 2", h)
	}
}

func TestClosestDistanceCenterMeasure(t *testing.T) {
	r := newKmRegistry()
	addBody(t, r, &model.Body{Name: "earth", RadiusKm: 2, Collideable: true, Position: mgl64.Vec3{10, 0, 0}})
	addBody(t, r, &model.Body{Name: "mars", RadiusKm: 1, Collideable: true, Position: mgl64.Vec3{0, 20, 0}})

	// Default set: all collideable bodies; earth's center is nearest.
	// The measure is to body centers, independent of radius.
	if d := r.ClosestDistance(mgl64.Vec3{}); math.Abs(d-10) > 1e-12 {
		t.Fatalf("ClosestDistance = %v, want 10", d)
	}

	// Named subset restricts the candidates.
	if d := r.ClosestDistance(mgl64.Vec3{}, "mars"); math.Abs(d-20) > 1e-12 {
		t.Fatalf("ClosestDistance(mars) = %v, want 20", d)
	}
}

func TestClosestDistanceEmptySetIsInfinite(t *testing.T) {
	r := newKmRegistry()

	if d := r.ClosestDistance(mgl64.Vec3{}); !math.IsInf(d, 1) {
		t.Fatalf("ClosestDistance on empty registry = %v, want +Inf", d)
	}

	addBody(t, r, &model.Body{Name: "earth", RadiusKm: 1, Collideable: true})
	if d := r.ClosestDistance(mgl64.Vec3{}, "no-such-body"); !math.IsInf(d, 1) {
		t.Fatalf("ClosestDistance over unknown names = %v, want +Inf", d)
	}
}

func TestMoveBodiesAppliesEphemeris(t *testing.T) {
	r := newKmRegistry()
	moving := &model.Body{
		Name:     "probe-target",
		RadiusKm: 1,
		Ephemeris: func(at time.Time) mgl64.Vec3 {
			return mgl64.Vec3{float64(at.Unix()), 0, 0}
		},
	}
	static := &model.Body{Name: "sun", RadiusKm: 1, Position: mgl64.Vec3{1, 2, 3}}
	addBody(t, r, moving)
	addBody(t, r, static)

	at := time.Unix(42, 0)
	r.MoveBodies(at)

	if moving.Position != (mgl64.Vec3{42, 0, 0}) {
		t.Fatalf("moving body position = %v, want {42 0 0}", moving.Position)
	}
	if static.Position != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("static body moved to %v", static.Position)
	}
}

func TestRotateBodies(t *testing.T) {
	r := newKmRegistry()
	spinning := &model.Body{Name: "earth", RadiusKm: 1, RotationPeriodDays: 1}
	inert := &model.Body{Name: "waypoint", RadiusKm: 1}
	addBody(t, r, spinning)
	addBody(t, r, inert)

	quarter := model.SecondsPerDay / 4
	r.RotateBodies(quarter)

	if math.Abs(spinning.Spin-math.Pi/2) > 1e-9 {
		t.Fatalf("Spin after a quarter day = %v, want pi/2", spinning.Spin)
	}
	if inert.Spin != 0 {
		t.Fatalf("non-rotating body spun to %v", inert.Spin)
	}
}

func TestMoveBodyChildren(t *testing.T) {
	r := newKmRegistry()
	b := &model.Body{
		Name:     "earth",
		RadiusKm: 1,
		Position: mgl64.Vec3{10, 0, 0},
		Children: []model.Child{{Name: "earth-label", Offset: mgl64.Vec3{0, 3, 0}}},
	}
	addBody(t, r, b)

	r.MoveBodyChildren()
	if b.Children[0].Position != (mgl64.Vec3{10, 3, 0}) {
		t.Fatalf("child position = %v, want {10 3 0}", b.Children[0].Position)
	}
}

func TestSetSizeScaleRecomputes(t *testing.T) {
	r := newKmRegistry()
	b := &model.Body{Name: "earth", RadiusKm: 2, Collideable: true}
	addBody(t, r, b)

	r.SetSizeScale(10)
	if b.ScaledRadius != 20 {
		t.Fatalf("ScaledRadius after scale = %v, want 20", b.ScaledRadius)
	}
	if b.CollisionDistance != 20.5 {
		t.Fatalf("CollisionDistance after scale = %v, want 20.5", b.CollisionDistance)
	}

	// Non-positive factors are ignored.
	r.SetSizeScale(0)
	r.SetSizeScale(-1)
	if r.SizeScale() != 10 {
		t.Fatalf("SizeScale = %v, want 10", r.SizeScale())
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	r := newKmRegistry()

	var events []Event
	unsubscribe := r.Subscribe(func(e Event) { events = append(events, e) })

	addBody(t, r, &model.Body{Name: "earth", RadiusKm: 1})
	r.MoveBodies(time.Unix(0, 0))
	r.SetSizeScale(2)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != EventBodyAdded || events[0].Body.Name != "earth" {
		t.Fatalf("first event = %+v, want EventBodyAdded for earth", events[0])
	}
	if events[1].Type != EventBodiesMoved {
		t.Fatalf("second event type = %v, want EventBodiesMoved", events[1].Type)
	}
	if events[2].Type != EventScaleChanged {
		t.Fatalf("third event type = %v, want EventScaleChanged", events[2].Type)
	}

	unsubscribe()
	r.MoveBodies(time.Unix(1, 0))
	if len(events) != 3 {
		t.Fatal("subscriber kept receiving events after unsubscribe")
	}
}

func names(bodies []*model.Body) []string {
	res := make([]string, len(bodies))
	for i, b := range bodies {
		res[i] = b.Name
	}
	return res
}
