package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/registry"
)

// SpeedMultiplier scales camera translation by proximity: far from
// everything the camera crosses interplanetary gulfs in seconds, close
// to a body it slows to a crawl.
type SpeedMultiplier struct {
	registry *registry.Registry
	max      float64
}

// NewSpeedMultiplier constructs a multiplier capped at max. The cap is
// also the fallback when no candidate bodies exist, so an empty set
// degrades to "no slowdown" instead of an infinite factor.
func NewSpeedMultiplier(reg *registry.Registry, max float64) *SpeedMultiplier {
	if max <= 0 {
		max = DefaultMaxSpeedMultiplier
	}
	return &SpeedMultiplier{registry: reg, max: max}
}

// DefaultMaxSpeedMultiplier bounds the factor far from any body.
const DefaultMaxSpeedMultiplier = 1e6

// Factor returns the translation speed scale for a camera at pos: the
// distance to the nearest center of the named bodies, or of every
// collideable body when no names are given, clamped to max.
func (s *SpeedMultiplier) Factor(pos mgl64.Vec3, names ...string) float64 {
	d := s.registry.ClosestDistance(pos, names...)
	if math.IsInf(d, 1) || d > s.max {
		return s.max
	}
	return d
}
