package flight

import "github.com/go-gl/mathgl/mgl64"

// freeFlight translates the camera by the player's input vector each
// frame, blocked by collision checks, while advancing simulated time.
type freeFlight struct {
	m       *Machine
	enabled bool
}

func newFreeFlight(m *Machine) *freeFlight { return &freeFlight{m: m} }

func (f *freeFlight) id() ModeID   { return ModeFree }
func (f *freeFlight) active() bool { return f.enabled }

func (f *freeFlight) enable() {
	f.enabled = true
	f.m.deps.Input.RequestCapture()
	f.m.deps.UI.ShowHUD()
}

func (f *freeFlight) disable() {
	f.enabled = false
	f.m.deps.Input.ReleaseCapture()
	f.m.deps.UI.HideHUD()
}

func (f *freeFlight) frame(delta float64) Signal {
	deps := f.m.deps

	speed := 0.0
	if v := deps.Input.TranslationVector(); !isZeroVec(v) {
		worldDir := deps.Camera.WorldDirection(v)
		if f.m.detector.Obstructed(f.m.ctx, deps.Camera.Position, worldDir) {
			if f.m.collector != nil {
				f.m.collector.RecordCollisionBlock()
			}
		} else {
			mult := f.m.speed.Factor(deps.Camera.Position)
			deps.Camera.TranslateLocal(v.Mul(delta * mult))
			speed = v.Len() * mult
		}
	}

	if f.m.cfg.AdvanceTime {
		deps.Clock.Advance(delta)
		deps.Registry.MoveBodies(deps.Clock.Now())
	}
	if f.m.cfg.RotateBodies {
		deps.Registry.RotateBodies(deps.Clock.ScaledSeconds(delta))
	}
	deps.Registry.MoveBodyChildren()

	deps.UI.UpdateHUD(speed, deps.Camera.Position)
	if f.m.collector != nil {
		f.m.collector.SetSpeed(speed)
	}
	return Continue
}

func isZeroVec(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}
