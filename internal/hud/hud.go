// Package hud presents flight feedback as structured log lines: the
// headless stand-in for the DOM overlay of a graphical build.
package hud

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/flight"
	"github.com/helioforge/exploration-simulator/internal/logging"
)

// LogUI implements flight.UI by logging. HUD updates arrive every frame,
// so they are sampled; everything else logs as it happens.
type LogUI struct {
	ctx context.Context
	log logging.Logger

	sampleEvery int
	updates     int
}

var _ flight.UI = (*LogUI)(nil)

// Option configures a LogUI.
type Option func(*LogUI)

// WithSampleEvery logs one HUD update out of every n. Values below 1
// are ignored.
func WithSampleEvery(n int) Option {
	return func(u *LogUI) {
		if n >= 1 {
			u.sampleEvery = n
		}
	}
}

// New constructs a LogUI writing through log.
func New(ctx context.Context, log logging.Logger, opts ...Option) *LogUI {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logging.Noop()
	}
	u := &LogUI{ctx: ctx, log: log, sampleEvery: 60}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *LogUI) UpdateHUD(speed float64, position mgl64.Vec3) {
	u.updates++
	if (u.updates-1)%u.sampleEvery != 0 {
		return
	}
	u.log.Debug(u.ctx, "hud",
		logging.Float64("speed", speed),
		logging.Float64("x", position.X()),
		logging.Float64("y", position.Y()),
		logging.Float64("z", position.Z()))
}

func (u *LogUI) ShowHUD() { u.log.Info(u.ctx, "hud shown") }
func (u *LogUI) HideHUD() { u.log.Info(u.ctx, "hud hidden") }

func (u *LogUI) ShowNotice(text string) {
	u.log.Info(u.ctx, "notice", logging.String("text", text))
}

func (u *LogUI) ClearNotice() { u.log.Debug(u.ctx, "notice cleared") }

func (u *LogUI) ShowOverlay() { u.log.Info(u.ctx, "menu opened") }
func (u *LogUI) HideOverlay() { u.log.Info(u.ctx, "menu closed") }

func (u *LogUI) RefreshPanel(rows []flight.BodyDistance) {
	u.log.Info(u.ctx, "body panel", logging.Int("bodies", len(rows)))
	for _, row := range rows {
		u.log.Debug(u.ctx, "body distance",
			logging.String("body", row.Name),
			logging.String("kind", row.Kind.String()),
			logging.Float64("distance", row.Distance))
	}
}
