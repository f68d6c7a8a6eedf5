// Package scene is the minimal geometric stand-in for the render scene:
// every collideable body is a sphere, and the flight core casts rays
// against the current set of spheres to detect obstructions.
package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Collider is a sphere obstacle snapshot: the body's name, its current
// scene-space centre and its scaled radius.
type Collider struct {
	Name   string
	Center mgl64.Vec3
	Radius float64
}

// Hit is one ray-sphere intersection. Distance is measured along the
// normalized ray direction from its origin.
type Hit struct {
	Name     string
	Distance float64
	Point    mgl64.Vec3
}

// Raycaster intersects a ray with the scene's obstacles, nearest first.
type Raycaster interface {
	Intersect(origin, dir mgl64.Vec3) []Hit
}

// SphereScene casts rays against colliders pulled fresh from a source on
// every cast, so moving bodies are always tested at their current
// positions.
type SphereScene struct {
	source func() []Collider
}

// NewSphereScene constructs a scene over a collider source. The body
// registry's ColliderHandles method is the usual source.
func NewSphereScene(source func() []Collider) *SphereScene {
	return &SphereScene{source: source}
}

// Intersect implements Raycaster. The direction need not be normalized;
// a zero direction yields no hits. When the origin is inside a sphere
// the reported distance is to the exit point.
func (s *SphereScene) Intersect(origin, dir mgl64.Vec3) []Hit {
	if dir.Len() == 0 {
		return nil
	}
	d := dir.Normalize()

	var hits []Hit
	for _, c := range s.source() {
		oc := origin.Sub(c.Center)
		b := d.Dot(oc)
		disc := b*b - (oc.Dot(oc) - c.Radius*c.Radius)
		if disc < 0 {
			continue
		}

		sqrtDisc := math.Sqrt(disc)
		t := -b - sqrtDisc
		if t < 0 {
			t = -b + sqrtDisc // origin inside the sphere
		}
		if t < 0 {
			continue // sphere entirely behind the ray
		}

		hits = append(hits, Hit{
			Name:     c.Name,
			Distance: t,
			Point:    origin.Add(d.Mul(t)),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
