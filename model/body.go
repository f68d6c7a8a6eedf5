package model

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyKind classifies a celestial body for display and catalog purposes.
type BodyKind int

const (
	KindUnknown BodyKind = iota
	KindStar
	KindPlanet
	KindDwarfPlanet
	KindMoon
	KindStation // artificial satellite, TLE-propagated
)

// String returns the lowercase catalog name of the kind.
func (k BodyKind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	case KindDwarfPlanet:
		return "dwarf_planet"
	case KindMoon:
		return "moon"
	case KindStation:
		return "station"
	default:
		return "unknown"
	}
}

// PositionFunc computes a body's scene-space position at a simulated instant.
// Ephemeris providers satisfy this with a bound method value.
type PositionFunc func(t time.Time) mgl64.Vec3

// Child is a scene object anchored to a body (label, marker, orbit line).
// Offset is expressed in scene units relative to the parent's center;
// Position is the derived world-space location, refreshed every frame.
type Child struct {
	Name     string
	Offset   mgl64.Vec3
	Position mgl64.Vec3
}

// Body is a single entry in the body registry. The registry stores bodies
// by pointer so that ephemeris providers and the frame loop update them
// in-place; fields derived from scaling (ScaledRadius, CollisionDistance)
// are maintained by the registry, not by callers.
type Body struct {
	Name string
	Kind BodyKind

	// RadiusKm is the physical mean radius. Must be positive.
	RadiusKm float64

	// RotationPeriodDays is the sidereal spin period. Zero means the body
	// does not rotate; negative means retrograde spin.
	RotationPeriodDays float64

	// Collideable marks the body as an obstacle for camera translation.
	Collideable bool

	// Ephemeris positions the body over simulated time. Nil for static
	// bodies (the body keeps its initial Position).
	Ephemeris PositionFunc

	Position mgl64.Vec3
	Spin     float64 // accumulated rotation about +Y, radians

	// ScaledRadius is RadiusKm converted to scene units and multiplied by
	// the registry's size-scale factor.
	ScaledRadius float64

	// CollisionDistance is the camera standoff: ScaledRadius plus the
	// registry's fixed collision margin.
	CollisionDistance float64

	Children []Child
}

// SpinRate returns the body's angular velocity in radians per simulated
// second, signed for retrograde rotation. Zero for non-rotating bodies.
func (b *Body) SpinRate() float64 {
	if b.RotationPeriodDays == 0 {
		return 0
	}
	return 2 * pi / (b.RotationPeriodDays * SecondsPerDay)
}

// Orientation returns the body's current rotation as a quaternion about +Y.
func (b *Body) Orientation() mgl64.Quat {
	return mgl64.QuatRotate(b.Spin, mgl64.Vec3{0, 1, 0})
}

// SurfaceDistance returns the distance from p to the body's scaled surface.
// Negative when p is inside the body.
func (b *Body) SurfaceDistance(p mgl64.Vec3) float64 {
	return p.Sub(b.Position).Len() - b.ScaledRadius
}

// WithinCollisionDistance reports whether p has crossed the body's
// collision standoff.
func (b *Body) WithinCollisionDistance(p mgl64.Vec3) bool {
	return p.Sub(b.Position).Len() < b.CollisionDistance
}
