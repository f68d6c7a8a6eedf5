package flight

import "github.com/go-gl/mathgl/mgl64"

// Camera is the explorer's viewpoint: a scene-space position and a world
// orientation. The camera looks along its local -Z axis, matching the
// render scene's convention.
type Camera struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// NewCamera constructs a camera at the origin facing -Z.
func NewCamera() *Camera {
	return &Camera{Orientation: mgl64.QuatIdent()}
}

// Forward returns the camera's world-space view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
}

// WorldDirection maps a camera-local vector into world space.
func (c *Camera) WorldDirection(local mgl64.Vec3) mgl64.Vec3 {
	return c.Orientation.Rotate(local)
}

// TranslateLocal moves the camera by a camera-local offset.
func (c *Camera) TranslateLocal(local mgl64.Vec3) {
	c.Position = c.Position.Add(c.Orientation.Rotate(local))
}

// LookAtOrientation returns the world orientation that points a camera at
// target from eye with the given up hint. QuatLookAtV yields the view
// (world-to-eye) rotation, so the camera's own orientation is its
// inverse.
func LookAtOrientation(eye, target, up mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatLookAtV(eye, target, up).Inverse()
}
