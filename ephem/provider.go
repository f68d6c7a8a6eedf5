// Package ephem computes scene-space body positions over simulated time.
//
// Scene axes are Y-up: the ecliptic plane maps to the scene XZ plane, so
// a heliocentric ecliptic position (x, y, z) becomes (x, z, -y) in scene
// units. Providers are pure functions of the simulated instant, which
// keeps body motion deterministic and replayable.
package ephem

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Provider yields a body's scene-space position at a simulated instant.
type Provider interface {
	Position(t time.Time) mgl64.Vec3
}

// Static pins a body at a fixed scene position. The Sun and scene markers
// use this.
type Static struct {
	At mgl64.Vec3
}

// Position implements Provider.
func (s Static) Position(time.Time) mgl64.Vec3 { return s.At }

// eclipticToScene converts a right-handed z-up ecliptic vector to the
// y-up scene frame.
func eclipticToScene(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, z, -y}
}
