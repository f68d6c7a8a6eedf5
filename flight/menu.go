package flight

// menuMode pauses the simulation behind an overlay listing every body's
// distance from the camera. Escape requests pointer capture; the grant
// flows back through the capture-change binding and restarts free
// flight.
type menuMode struct {
	m       *Machine
	enabled bool
	esc     *escapeDebounce
}

func newMenuMode(m *Machine) *menuMode { return &menuMode{m: m} }

func (mm *menuMode) id() ModeID   { return ModeMenu }
func (mm *menuMode) active() bool { return mm.enabled }

func (mm *menuMode) enable() {
	mm.enabled = true
	mm.m.deps.Clock.Pause()
	mm.m.deps.UI.RefreshPanel(mm.m.panelRows())
	mm.m.deps.UI.ShowOverlay()
	mm.esc = newEscapeDebounce(mm.m.deps.Input.RequestCapture)
	mm.m.deps.Input.BindEscape(mm.esc.handle)
}

func (mm *menuMode) disable() {
	mm.enabled = false
	mm.m.deps.Input.UnbindEscape()
	mm.m.deps.UI.HideOverlay()
	mm.m.deps.Clock.Resume()
}

// The menu runs no per-frame work; its scheduled frame stops itself.
func (mm *menuMode) frame(float64) Signal { return Stop }
