package flight

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/helioforge/exploration-simulator/internal/logging"
	"github.com/helioforge/exploration-simulator/model"
)

var tracer = otel.Tracer("flight")

type autoPhase int

const (
	phasePanning autoPhase = iota
	phaseTranslating
)

// maneuver tracks one fly-to from request until arrival, interruption
// or replacement.
type maneuver struct {
	ctx    context.Context
	log    logging.Logger
	span   trace.Span
	target *model.Body

	initial mgl64.Quat
	goal    mgl64.Quat
	t       float64

	phase       autoPhase
	pausedClock bool
}

// autoFlight pans the camera toward a target body, then translates
// forward until the camera crosses the body's collision distance.
type autoFlight struct {
	m       *Machine
	enabled bool
	esc     *escapeDebounce
	mv      *maneuver
}

func newAutoFlight(m *Machine) *autoFlight { return &autoFlight{m: m} }

func (a *autoFlight) id() ModeID   { return ModeAuto }
func (a *autoFlight) active() bool { return a.enabled }

func (a *autoFlight) enable() {
	a.enabled = true
	a.esc = newEscapeDebounce(func() { _ = a.m.SetMode(ModeMenu) })
	a.m.deps.Input.BindEscape(a.esc.handle)
}

func (a *autoFlight) disable() {
	a.enabled = false
	a.m.deps.Input.UnbindEscape()
	a.finishManeuver("interrupted")
	a.m.deps.UI.ClearNotice()
}

// begin starts a maneuver toward target, replacing any maneuver already
// in progress. The camera orientation at this instant is the pan start.
func (a *autoFlight) begin(target *model.Body) {
	a.finishManeuver("superseded")

	ctx, log := logging.WithManeuverLogger(a.m.ctx, a.m.log)
	ctx, span := tracer.Start(ctx, "maneuver",
		trace.WithAttributes(attribute.String("body", target.Name)))

	cam := a.m.deps.Camera
	mv := &maneuver{
		ctx:     ctx,
		log:     log,
		span:    span,
		target:  target,
		initial: cam.Orientation,
		goal:    LookAtOrientation(cam.Position, target.Position, mgl64.Vec3{0, 1, 0}),
		phase:   phasePanning,
	}
	if a.m.cfg.PauseClockInFlight {
		a.m.deps.Clock.Pause()
		mv.pausedClock = true
	}
	a.mv = mv

	a.m.deps.UI.ShowNotice("Flying to " + target.Name)
	log.Info(ctx, "maneuver started",
		logging.String("body", target.Name),
		logging.Float64("distance", target.SurfaceDistance(cam.Position)))
}

func (a *autoFlight) frame(delta float64) Signal {
	if a.mv == nil {
		return Continue
	}
	if a.mv.phase == phasePanning {
		return a.panFrame()
	}
	return a.translateFrame(delta)
}

// autoUpdate runs the per-tick side effects shared by both phases:
// children follow their bodies and the HUD reflects the current motion.
func (a *autoFlight) autoUpdate(speed float64) {
	a.m.deps.Registry.MoveBodyChildren()
	a.m.deps.UI.UpdateHUD(speed, a.m.deps.Camera.Position)
	if a.m.collector != nil {
		a.m.collector.SetSpeed(speed)
	}
}

// panFrame advances the orientation interpolation by one step. The final
// interpolation frame lands exactly on the goal orientation; the frame
// after that switches to translation.
func (a *autoFlight) panFrame() Signal {
	mv := a.mv
	cam := a.m.deps.Camera

	mv.t += a.m.cfg.PanStep
	if mv.t >= 1 {
		if mv.t-1 < a.m.cfg.PanStep {
			mv.t = 1
			cam.Orientation = mv.goal
			a.autoUpdate(0)
			return Continue
		}
		mv.phase = phaseTranslating
		mv.log.Debug(mv.ctx, "pan complete",
			logging.String("body", mv.target.Name))
		a.autoUpdate(0)
		return Continue
	}
	cam.Orientation = mgl64.QuatSlerp(mv.initial, mv.goal, mv.t)
	a.autoUpdate(0)
	return Continue
}

// translateFrame moves the camera along its forward axis, scaled by
// proximity to the target, and hands off to the menu on arrival.
func (a *autoFlight) translateFrame(delta float64) Signal {
	mv := a.mv
	cam := a.m.deps.Camera

	if mv.target.WithinCollisionDistance(cam.Position) {
		a.finishManeuver("completed")
		_ = a.m.SetMode(ModeMenu)
		return Stop
	}

	mult := a.m.speed.Factor(cam.Position, mv.target.Name)
	cam.TranslateLocal(mgl64.Vec3{0, 0, -a.m.cfg.AutoSpeed * delta * mult})
	a.autoUpdate(a.m.cfg.AutoSpeed * mult)
	return Continue
}

// finishManeuver closes out the current maneuver, if any: the clock is
// resumed when this maneuver paused it, the span ends with the outcome,
// and the maneuver state is dropped.
func (a *autoFlight) finishManeuver(outcome string) {
	mv := a.mv
	if mv == nil {
		return
	}
	a.mv = nil

	if mv.pausedClock {
		a.m.deps.Clock.Resume()
	}
	mv.span.SetAttributes(attribute.String("outcome", outcome))
	mv.span.End()
	if a.m.collector != nil {
		a.m.collector.RecordManeuver(outcome)
	}
	mv.log.Info(mv.ctx, "maneuver finished",
		logging.String("body", mv.target.Name),
		logging.String("outcome", outcome))
}
