package flight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helioforge/exploration-simulator/internal/logging"
	"github.com/helioforge/exploration-simulator/internal/observability"
	"github.com/helioforge/exploration-simulator/registry"
	"github.com/helioforge/exploration-simulator/scene"
)

// ModeID identifies a flight mode.
type ModeID int

const (
	ModeNone ModeID = iota
	ModeFree
	ModeAuto
	ModeMenu
)

// String returns the lowercase mode name used in logs and metric labels.
func (id ModeID) String() string {
	switch id {
	case ModeFree:
		return "free"
	case ModeAuto:
		return "auto"
	case ModeMenu:
		return "menu"
	default:
		return "none"
	}
}

// ErrUnknownMode is returned by SetMode for an ID outside the known set.
var ErrUnknownMode = errors.New("unknown flight mode")

// mode is the internal contract each flight mode implements. enable and
// disable perform the mode's side effects; frame drives one animation
// tick and must return Stop once the mode has been disabled.
type mode interface {
	id() ModeID
	enable()
	disable()
	active() bool
	frame(delta float64) Signal
}

// Config tunes mode behaviour. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	// AdvanceTime lets free flight advance the simulation clock and
	// recompute body positions every frame.
	AdvanceTime bool
	// RotateBodies lets free flight spin bodies by the scaled frame delta.
	RotateBodies bool
	// PanStep is the auto-flight orientation interpolation increment per
	// frame. The snap window at the end of panning is one step wide.
	PanStep float64
	// AutoSpeed scales auto-flight forward translation.
	AutoSpeed float64
	// PauseClockInFlight suspends simulated time during a maneuver so the
	// target holds still.
	PauseClockInFlight bool
	// MaxSpeedMultiplier bounds the proximity speed factor.
	MaxSpeedMultiplier float64
}

// DefaultConfig returns the standard exploration tuning.
func DefaultConfig() Config {
	return Config{
		AdvanceTime:        true,
		RotateBodies:       true,
		PanStep:            0.05,
		AutoSpeed:          1.0,
		PauseClockInFlight: true,
		MaxSpeedMultiplier: DefaultMaxSpeedMultiplier,
	}
}

func (c *Config) applyDefaults() {
	if c.PanStep <= 0 || c.PanStep > 1 {
		c.PanStep = 0.05
	}
	if c.AutoSpeed <= 0 {
		c.AutoSpeed = 1.0
	}
	if c.MaxSpeedMultiplier <= 0 {
		c.MaxSpeedMultiplier = DefaultMaxSpeedMultiplier
	}
}

// Deps are the collaborators every machine needs. All fields are
// required.
type Deps struct {
	Registry *registry.Registry
	Clock    Clock
	Camera   *Camera
	Animator Animator
	Input    Input
	UI       UI
	Scene    scene.Raycaster
}

func (d Deps) validate() error {
	switch {
	case d.Registry == nil:
		return fmt.Errorf("NewMachine: nil registry")
	case d.Clock == nil:
		return fmt.Errorf("NewMachine: nil clock")
	case d.Camera == nil:
		return fmt.Errorf("NewMachine: nil camera")
	case d.Animator == nil:
		return fmt.Errorf("NewMachine: nil animator")
	case d.Input == nil:
		return fmt.Errorf("NewMachine: nil input")
	case d.UI == nil:
		return fmt.Errorf("NewMachine: nil ui")
	case d.Scene == nil:
		return fmt.Errorf("NewMachine: nil scene")
	}
	return nil
}

// Machine owns the three flight modes and guarantees at most one is
// active. All methods are intended for the single simulation goroutine;
// a mode's frame callback may itself request a transition.
type Machine struct {
	ctx  context.Context
	cfg  Config
	deps Deps
	log  logging.Logger

	collector    *observability.FlightCollector
	onTransition func(from, to ModeID)

	detector *Detector
	speed    *SpeedMultiplier

	free *freeFlight
	auto *autoFlight
	menu *menuMode

	current mode
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the machine's logger; defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// WithCollector wires flight metrics.
func WithCollector(c *observability.FlightCollector) Option {
	return func(m *Machine) { m.collector = c }
}

// WithConfig overrides the default tuning.
func WithConfig(cfg Config) Option {
	return func(m *Machine) { m.cfg = cfg }
}

// WithContext sets the context used for machine-scoped logging and
// maneuver spans.
func WithContext(ctx context.Context) Option {
	return func(m *Machine) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithTransitionHook registers a callback invoked after every completed
// mode change. The hook may itself call SetMode or FlyTo.
func WithTransitionHook(fn func(from, to ModeID)) Option {
	return func(m *Machine) { m.onTransition = fn }
}

// NewMachine constructs the mode machine. No mode is active until the
// first SetMode call.
func NewMachine(deps Deps, opts ...Option) (*Machine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		ctx:  context.Background(),
		cfg:  DefaultConfig(),
		deps: deps,
		log:  logging.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cfg.applyDefaults()

	m.detector = NewDetector(deps.Registry, deps.Scene, m.log)
	m.speed = NewSpeedMultiplier(deps.Registry, m.cfg.MaxSpeedMultiplier)

	m.free = newFreeFlight(m)
	m.auto = newAutoFlight(m)
	m.menu = newMenuMode(m)

	deps.Input.BindCaptureChange(m.handleCaptureChange)
	return m, nil
}

// Current returns the active mode's ID, or ModeNone before the first
// transition.
func (m *Machine) Current() ModeID {
	if m.current == nil {
		return ModeNone
	}
	return m.current.id()
}

// SetMode switches the active mode. Requesting the current mode is a
// no-op; otherwise the current mode is disabled before the target is
// enabled, so two modes are never active at once.
func (m *Machine) SetMode(id ModeID) error {
	target, err := m.mode(id)
	if err != nil {
		return err
	}
	if m.current != nil && m.current.id() == id {
		return nil
	}

	from := ModeNone
	prev := m.current
	// The current pointer must change before prev.disable() runs:
	// disable releases input capture, and a synchronous capture-change
	// echo consults m.current to decide whether to switch modes.
	m.current = target
	if prev != nil {
		from = prev.id()
		prev.disable()
	}
	target.enable()
	m.scheduleFrames(target)

	m.log.Info(m.ctx, "flight mode changed",
		logging.String("from", from.String()),
		logging.String("to", id.String()))
	if m.collector != nil {
		m.collector.RecordTransition(from.String(), id.String())
	}
	if m.onTransition != nil {
		m.onTransition(from, id)
	}
	return nil
}

// FlyTo switches to auto-flight aimed at the named body. An unknown name
// is logged and returned without changing the current mode. Calling
// FlyTo while a maneuver is already running replaces it.
func (m *Machine) FlyTo(name string) error {
	body, err := m.deps.Registry.Body(name)
	if err != nil {
		m.log.Warn(m.ctx, "fly-to target not in registry",
			logging.String("body", name),
			logging.Any("error", err))
		return err
	}
	if err := m.SetMode(ModeAuto); err != nil {
		return err
	}
	m.auto.begin(body)
	return nil
}

func (m *Machine) mode(id ModeID) (mode, error) {
	switch id {
	case ModeFree:
		return m.free, nil
	case ModeAuto:
		return m.auto, nil
	case ModeMenu:
		return m.menu, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, id)
	}
}

// scheduleFrames hands the mode's frame function to the animator, with
// the enabled check and frame metrics wrapped around it.
func (m *Machine) scheduleFrames(md mode) {
	m.deps.Animator.Animate(func(delta float64) Signal {
		if !md.active() {
			return Stop
		}
		start := time.Now()
		sig := md.frame(delta)
		if m.collector != nil {
			m.collector.ObserveFrame(md.id().String(), time.Since(start))
		}
		return sig
	})
}

// handleCaptureChange maps pointer-capture outcomes onto transitions:
// capture granted while the menu is up starts free flight, capture lost
// during free flight falls back to the menu.
func (m *Machine) handleCaptureChange(captured bool) {
	switch {
	case captured && m.Current() == ModeMenu:
		_ = m.SetMode(ModeFree)
	case !captured && m.Current() == ModeFree:
		_ = m.SetMode(ModeMenu)
	}
}

// panelRows snapshots every body's surface distance from the camera for
// the menu panel.
func (m *Machine) panelRows() []BodyDistance {
	bodies := m.deps.Registry.Bodies()
	rows := make([]BodyDistance, 0, len(bodies))
	for _, b := range bodies {
		rows = append(rows, BodyDistance{
			Name:     b.Name,
			Kind:     b.Kind,
			Distance: b.SurfaceDistance(m.deps.Camera.Position),
		})
	}
	return rows
}
