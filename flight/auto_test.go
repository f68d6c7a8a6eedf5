package flight

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/helioforge/exploration-simulator/internal/observability"
	"github.com/helioforge/exploration-simulator/model"
)

func TestFlyToPansToTargetExactly(t *testing.T) {
	h := newHarness(t)
	h.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)

	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}
	if got := h.machine.Current(); got != ModeAuto {
		t.Fatalf("Current() = %v, want auto", got)
	}
	if h.ui.notice != "Flying to titan" {
		t.Fatalf("notice = %q, want %q", h.ui.notice, "Flying to titan")
	}
	if !h.clock.Paused() {
		t.Fatal("clock should pause during a maneuver")
	}

	goal := LookAtOrientation(mgl64.Vec3{}, mgl64.Vec3{50, 0, 0}, mgl64.Vec3{0, 1, 0})

	// Ten interpolation steps cover half the pan.
	for i := 0; i < 10; i++ {
		h.animator.step(0.016)
	}
	halfway := mgl64.QuatSlerp(mgl64.QuatIdent(), goal, 0.5)
	if !h.camera.Orientation.OrientationEqualThreshold(halfway, 1e-9) {
		t.Fatalf("Orientation after 10 steps = %v, want ~%v", h.camera.Orientation, halfway)
	}

	for i := 0; i < 9; i++ {
		h.animator.step(0.016)
	}
	if h.camera.Orientation == goal {
		t.Fatal("orientation reached the goal a frame early")
	}
	if h.camera.Position != (mgl64.Vec3{}) {
		t.Fatalf("camera translated during pan: %v", h.camera.Position)
	}

	// The 20th step lands exactly on the goal orientation.
	h.animator.step(0.016)
	if h.camera.Orientation != goal {
		t.Fatalf("Orientation = %v, want exact goal %v", h.camera.Orientation, goal)
	}

	// Next frame switches phases without moving yet.
	h.animator.step(0.016)
	if h.camera.Position != (mgl64.Vec3{}) {
		t.Fatalf("camera translated on the phase switch frame: %v", h.camera.Position)
	}

	// Translation moves along the camera's forward axis, scaled by the
	// 50-unit center distance.
	h.animator.step(0.1)
	want := mgl64.Vec3{5, 0, 0}
	if !h.camera.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("Position = %v, want %v", h.camera.Position, want)
	}
}

func TestAutoArrivalOpensMenu(t *testing.T) {
	collector, err := observability.NewFlightCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}
	h := newHarness(t, WithCollector(collector))
	titan := h.addBody(t, "titan", mgl64.Vec3{0, 0, -3}, 1)

	if err := h.machine.SetMode(ModeMenu); err != nil {
		t.Fatalf("SetMode(menu): %v", err)
	}
	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}
	for i := 0; i < 40 && h.machine.Current() == ModeAuto; i++ {
		h.animator.step(0.5)
	}

	if got := h.machine.Current(); got != ModeMenu {
		t.Fatalf("Current() = %v, want menu after arrival", got)
	}
	if !titan.WithinCollisionDistance(h.camera.Position) {
		t.Fatalf("camera stopped at %v, outside collision distance", h.camera.Position)
	}
	if !h.ui.overlayShown {
		t.Fatal("menu overlay should be shown after arrival")
	}
	if h.ui.notice != "" {
		t.Fatalf("notice = %q, want cleared", h.ui.notice)
	}
	if h.ui.hudShown || h.input.captureReqs != 0 {
		t.Fatal("free flight must not activate between arrival and menu")
	}
	if !h.clock.Paused() {
		t.Fatal("clock should stay paused in the menu")
	}

	if got := testutil.ToFloat64(collector.Maneuvers.WithLabelValues("completed")); got != 1 {
		t.Fatalf("maneuvers{completed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ModeTransitions.WithLabelValues("auto", "menu")); got != 1 {
		t.Fatalf("transitions{auto,menu} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ModeTransitions.WithLabelValues("menu", "free")); got != 0 {
		t.Fatalf("transitions{menu,free} = %v, want 0", got)
	}
}

func TestAutoEscapeInterruptsManeuver(t *testing.T) {
	collector, err := observability.NewFlightCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}
	h := newHarness(t, WithCollector(collector))
	h.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)

	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}
	for i := 0; i < 5; i++ {
		h.animator.step(0.016)
	}
	midPan := h.camera.Orientation

	h.input.pressEscape(t)

	if got := h.machine.Current(); got != ModeMenu {
		t.Fatalf("Current() = %v, want menu after escape", got)
	}
	if h.ui.notice != "" {
		t.Fatalf("notice = %q, want cleared", h.ui.notice)
	}
	if got := testutil.ToFloat64(collector.Maneuvers.WithLabelValues("interrupted")); got != 1 {
		t.Fatalf("maneuvers{interrupted} = %v, want 1", got)
	}

	// The abandoned pan leaves the camera where it was.
	h.animator.step(0.016)
	if h.camera.Orientation != midPan {
		t.Fatalf("Orientation = %v, want frozen at %v", h.camera.Orientation, midPan)
	}
}

func TestAutoIgnoresStaleKeyRelease(t *testing.T) {
	h := newHarness(t)
	h.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)

	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}
	// A key-up without a preceding key-down is a press that started
	// before the maneuver; it must not cancel anything.
	h.input.escape(KeyUp)
	if got := h.machine.Current(); got != ModeAuto {
		t.Fatalf("Current() = %v, want auto after stale key-up", got)
	}

	h.input.pressEscape(t)
	if got := h.machine.Current(); got != ModeMenu {
		t.Fatalf("Current() = %v, want menu after full press", got)
	}
}

func TestFlyToSupersedesActiveManeuver(t *testing.T) {
	collector, err := observability.NewFlightCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}
	h := newHarness(t, WithCollector(collector))
	h.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)
	h.addBody(t, "rhea", mgl64.Vec3{0, 0, -50}, 1)

	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo(titan): %v", err)
	}
	for i := 0; i < 5; i++ {
		h.animator.step(0.016)
	}
	if err := h.machine.FlyTo("rhea"); err != nil {
		t.Fatalf("FlyTo(rhea): %v", err)
	}

	if got := h.machine.Current(); got != ModeAuto {
		t.Fatalf("Current() = %v, want auto", got)
	}
	if h.ui.notice != "Flying to rhea" {
		t.Fatalf("notice = %q, want %q", h.ui.notice, "Flying to rhea")
	}
	if got := testutil.ToFloat64(collector.Maneuvers.WithLabelValues("superseded")); got != 1 {
		t.Fatalf("maneuvers{superseded} = %v, want 1", got)
	}

	// The replacement pan restarts and converges on the new target.
	goal := LookAtOrientation(mgl64.Vec3{}, mgl64.Vec3{0, 0, -50}, mgl64.Vec3{0, 1, 0})
	for i := 0; i < 20; i++ {
		h.animator.step(0.016)
	}
	if h.camera.Orientation != goal {
		t.Fatalf("Orientation = %v, want exact goal %v", h.camera.Orientation, goal)
	}
}

func TestAutoClockPauseLifecycle(t *testing.T) {
	h := newHarness(t)
	h.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)

	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}
	if !h.clock.Paused() {
		t.Fatal("clock should pause when the maneuver starts")
	}
	if err := h.machine.SetMode(ModeFree); err != nil {
		t.Fatalf("SetMode(free): %v", err)
	}
	if h.clock.Paused() {
		t.Fatal("clock should resume when the maneuver is interrupted")
	}

	cfg := DefaultConfig()
	cfg.PauseClockInFlight = false
	h2 := newHarness(t, WithConfig(cfg))
	h2.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)
	if err := h2.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}
	if h2.clock.Paused() {
		t.Fatal("clock should keep running when pausing is disabled")
	}
}

func TestAutoFramesCarryBodyChildrenAndHUD(t *testing.T) {
	h := newHarness(t)
	titan := h.addBody(t, "titan", mgl64.Vec3{50, 0, 0}, 1)
	titan.Children = append(titan.Children, model.Child{
		Name:   "titan-label",
		Offset: mgl64.Vec3{0, 2, 0},
	})

	if err := h.machine.FlyTo("titan"); err != nil {
		t.Fatalf("FlyTo: %v", err)
	}

	h.animator.step(0.016)
	wantChild := titan.Position.Add(mgl64.Vec3{0, 2, 0})
	if titan.Children[0].Position != wantChild {
		t.Fatalf("child position = %v, want %v", titan.Children[0].Position, wantChild)
	}
	if h.ui.hudUpdates != 1 {
		t.Fatalf("hudUpdates = %d, want 1 per pan frame", h.ui.hudUpdates)
	}
	if h.ui.lastSpeed != 0 {
		t.Fatalf("pan speed = %v, want 0 (panning never translates)", h.ui.lastSpeed)
	}

	// Finish the pan, cross the phase switch, then translate once.
	for i := 0; i < 20; i++ {
		h.animator.step(0.016)
	}
	h.animator.step(0.1)
	if h.ui.lastSpeed <= 0 {
		t.Fatalf("translate speed = %v, want > 0", h.ui.lastSpeed)
	}
	if h.ui.lastPosition != h.camera.Position {
		t.Fatalf("HUD position = %v, want camera position %v", h.ui.lastPosition, h.camera.Position)
	}
}

func TestAutoModeIdlesWithoutManeuver(t *testing.T) {
	h := newHarness(t)

	if err := h.machine.SetMode(ModeAuto); err != nil {
		t.Fatalf("SetMode(auto): %v", err)
	}
	h.animator.step(0.016)

	if got := h.machine.Current(); got != ModeAuto {
		t.Fatalf("Current() = %v, want auto", got)
	}
	if h.camera.Position != (mgl64.Vec3{}) {
		t.Fatalf("camera moved without a maneuver: %v", h.camera.Position)
	}
	if got := len(h.animator.callbacks); got != 1 {
		t.Fatalf("callbacks = %d, want 1 (frame keeps running)", got)
	}
}
