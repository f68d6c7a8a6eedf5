package flight

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/internal/logging"
	"github.com/helioforge/exploration-simulator/registry"
	"github.com/helioforge/exploration-simulator/scene"
)

// Detector answers whether a camera translation is blocked by a body. It
// casts a ray along the world-space movement direction and compares each
// intersection against that body's collision distance.
type Detector struct {
	registry *registry.Registry
	scene    scene.Raycaster
	log      logging.Logger
}

// NewDetector constructs a collision detector over the registry and the
// scene raycaster.
func NewDetector(reg *registry.Registry, rc scene.Raycaster, log logging.Logger) *Detector {
	if log == nil {
		log = logging.Noop()
	}
	return &Detector{registry: reg, scene: rc, log: log}
}

// Obstructed reports whether moving from origin along worldDir would
// bring the camera inside a body's collision distance. A zero direction
// is never obstructed. The nearest qualifying hit decides, so a distant
// body behind a near one cannot mask it.
//
// A hit whose body is missing from the registry is logged and skipped;
// stale scene objects must not halt the camera.
func (d *Detector) Obstructed(ctx context.Context, origin, worldDir mgl64.Vec3) bool {
	if worldDir.Len() == 0 {
		return false
	}

	for _, hit := range d.scene.Intersect(origin, worldDir) {
		b, err := d.registry.Body(hit.Name)
		if err != nil {
			d.log.Warn(ctx, "collider has no registry entry",
				logging.String("body", hit.Name),
				logging.Any("error", err))
			continue
		}
		if hit.Distance < b.CollisionDistance {
			return true
		}
	}
	return false
}
