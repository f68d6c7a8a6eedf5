package ephem

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// CircularOrbit positions a body on an idealized circular path around its
// parent, in the scene XZ plane. Moons whose catalog entries request a
// generated orbit instead of full elements use this.
type CircularOrbit struct {
	parent        Provider
	radiusUnits   float64
	periodSeconds float64
	phase         float64
}

// NewCircularOrbit constructs a provider orbiting parent at a fixed radius
// (scene units) with the given period. phase offsets the starting angle in
// radians so co-orbiting bodies do not overlap at the epoch.
func NewCircularOrbit(parent Provider, radiusUnits, periodSeconds, phase float64) *CircularOrbit {
	return &CircularOrbit{
		parent:        parent,
		radiusUnits:   radiusUnits,
		periodSeconds: periodSeconds,
		phase:         phase,
	}
}

// Position implements Provider. The angle is an absolute function of time
// since J2000, so positions are reproducible for any simulated instant.
func (o *CircularOrbit) Position(t time.Time) mgl64.Vec3 {
	var angle float64
	if o.periodSeconds > 0 {
		elapsed := (julianDate(t) - j2000Epoch) * 86400.0
		angle = 2*math.Pi*elapsed/o.periodSeconds + o.phase
	} else {
		angle = o.phase
	}

	offset := mgl64.Vec3{
		o.radiusUnits * math.Cos(angle),
		0,
		o.radiusUnits * math.Sin(angle),
	}

	if o.parent == nil {
		return offset
	}
	return o.parent.Position(t).Add(offset)
}
