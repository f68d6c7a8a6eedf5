package timectrl

import (
	"sync"
	"time"
)

// SimClock is a read-only view of simulation time. Components that only
// display or sample the clock depend on this instead of the concrete
// controller, which keeps them testable with a fixed fake.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// TimeController owns the simulated clock. Wall-clock frame deltas are
// scaled by a rate factor and accumulated into simulation time; pausing
// freezes accumulation without losing the current instant. Menu mode
// pauses the controller so bodies hold still behind the overlay.
type TimeController struct {
	mu sync.RWMutex

	currentTime time.Time
	rate        float64
	paused      bool

	listeners []func(time.Time)
}

// Option configures a TimeController.
type Option func(*TimeController)

// WithRate sets the initial simulation rate: simulated seconds advanced
// per wall second. Non-positive rates are ignored.
func WithRate(rate float64) Option {
	return func(tc *TimeController) {
		if rate > 0 {
			tc.rate = rate
		}
	}
}

// WithPaused starts the controller paused.
func WithPaused() Option {
	return func(tc *TimeController) { tc.paused = true }
}

// NewTimeController constructs a controller starting at the given simulated
// instant, advancing at rate 1 unless configured otherwise.
func NewTimeController(start time.Time, opts ...Option) *TimeController {
	tc := &TimeController{
		currentTime: start,
		rate:        1,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps the simulated clock to t without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// Rate returns the current simulation rate.
func (tc *TimeController) Rate() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.rate
}

// SetRate changes the simulation rate. Non-positive rates are ignored.
func (tc *TimeController) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.rate = rate
}

// Pause freezes simulation time. Advancing while paused is a no-op.
func (tc *TimeController) Pause() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.paused = true
}

// Resume re-enables time advancement.
func (tc *TimeController) Resume() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.paused = false
}

// Paused reports whether the clock is currently frozen.
func (tc *TimeController) Paused() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.paused
}

// ScaledSeconds converts a wall-clock frame delta to simulated seconds at
// the current rate. Returns 0 while paused.
func (tc *TimeController) ScaledSeconds(wallSeconds float64) float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	if tc.paused {
		return 0
	}
	return wallSeconds * tc.rate
}

// Advance moves simulation time forward by wallSeconds of wall-clock time
// scaled by the current rate, returning the simulated seconds applied.
// While paused it applies nothing and returns 0. Listeners are notified
// outside the lock.
func (tc *TimeController) Advance(wallSeconds float64) float64 {
	tc.mu.Lock()
	if tc.paused || wallSeconds <= 0 {
		tc.mu.Unlock()
		return 0
	}
	simSeconds := wallSeconds * tc.rate
	tc.currentTime = tc.currentTime.Add(time.Duration(simSeconds * float64(time.Second)))
	now := tc.currentTime
	listeners := append([]func(time.Time){}, tc.listeners...)
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	return simSeconds
}

// AddListener registers a callback invoked after every time advancement.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}
