// Package flight implements the exploration camera's flight modes: free
// flight under direct input, automated fly-to maneuvers, and the paused
// menu. A mode machine owns the transitions; rendering, input devices
// and UI widgets stay behind small collaborator interfaces so the whole
// package runs headless.
package flight

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/model"
)

// Signal tells the animator whether to keep scheduling a frame callback.
type Signal int

const (
	Continue Signal = iota
	Stop
)

// FrameFunc is a per-frame callback. delta is the wall-clock time since
// the previous frame, in seconds.
type FrameFunc func(delta float64) Signal

// Animator is the render-loop collaborator. Animate registers a callback
// to be driven every frame until it returns Stop.
type Animator interface {
	Animate(fn FrameFunc)
}

// KeyEdge is a single Escape key transition reported by the input
// collaborator.
type KeyEdge int

const (
	KeyDown KeyEdge = iota
	KeyUp
)

// Input is the device collaborator. Capture requests are fire-and-forget:
// the host environment decides asynchronously and reports the outcome
// through the capture-change handler.
type Input interface {
	// TranslationVector returns the camera-local translation currently
	// requested by held keys, in units per second. Zero means idle.
	TranslationVector() mgl64.Vec3

	RequestCapture()
	ReleaseCapture()

	// BindEscape routes Escape key edges to handler, replacing any
	// previous binding. UnbindEscape stops delivery.
	BindEscape(handler func(KeyEdge))
	UnbindEscape()

	// BindCaptureChange routes pointer-capture outcome events to handler.
	BindCaptureChange(handler func(captured bool))
}

// BodyDistance is one row of the menu's body panel.
type BodyDistance struct {
	Name     string
	Kind     model.BodyKind
	Distance float64 // camera to body surface, scene units
}

// UI is the one-way display collaborator. Calls never fail and never
// call back into the flight package.
type UI interface {
	UpdateHUD(speed float64, position mgl64.Vec3)
	ShowHUD()
	HideHUD()

	ShowNotice(text string)
	ClearNotice()

	ShowOverlay()
	HideOverlay()
	RefreshPanel(rows []BodyDistance)
}

// Clock is the simulated-time collaborator; timectrl.TimeController
// satisfies it.
type Clock interface {
	Now() time.Time
	Advance(wallSeconds float64) float64
	ScaledSeconds(wallSeconds float64) float64
	Pause()
	Resume()
}
