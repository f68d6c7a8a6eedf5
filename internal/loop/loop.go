// Package loop drives animation callbacks from a paced wall-clock
// loop, standing in for the render loop of a graphical build.
package loop

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/helioforge/exploration-simulator/flight"
	"github.com/helioforge/exploration-simulator/internal/logging"
	"github.com/helioforge/exploration-simulator/internal/observability"
)

// FrameLoop implements flight.Animator. Callbacks scheduled during a
// frame are picked up on the following frame; a callback that panics is
// logged and dropped so one bad frame cannot take the loop down.
type FrameLoop struct {
	mu        sync.Mutex
	callbacks []flight.FrameFunc
	seeded    bool

	limiter   *rate.Limiter
	log       logging.Logger
	collector *observability.LoopCollector
	exitIdle  bool
}

// Option configures a FrameLoop.
type Option func(*FrameLoop)

// WithFPS paces the loop at the given frames per second. Zero or
// negative runs frames back to back.
func WithFPS(fps float64) Option {
	return func(l *FrameLoop) {
		if fps > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(fps), 1)
		}
	}
}

// WithLogger sets the loop's logger; defaults to a no-op logger.
func WithLogger(log logging.Logger) Option {
	return func(l *FrameLoop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithCollector wires loop metrics.
func WithCollector(c *observability.LoopCollector) Option {
	return func(l *FrameLoop) { l.collector = c }
}

// WithExitWhenIdle makes Run return once every scheduled callback has
// stopped. Without it the loop keeps pacing until the context ends.
func WithExitWhenIdle() Option {
	return func(l *FrameLoop) { l.exitIdle = true }
}

// NewFrameLoop constructs an unpaced loop; use WithFPS to pace it.
func NewFrameLoop(opts ...Option) *FrameLoop {
	l := &FrameLoop{log: logging.Noop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Animate schedules a callback starting from the next frame.
func (l *FrameLoop) Animate(fn flight.FrameFunc) {
	l.mu.Lock()
	l.callbacks = append(l.callbacks, fn)
	l.seeded = true
	n := len(l.callbacks)
	l.mu.Unlock()

	l.collector.SetActiveCallbacks(n)
}

// Run paces frames until the context ends, delivering each callback the
// wall-clock seconds elapsed since the previous frame.
func (l *FrameLoop) Run(ctx context.Context) error {
	last := time.Now()
	for {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				// The limiter fails early when the next slot would land
				// past the context deadline; hold until the context
				// actually ends so callers always see a context error.
				<-ctx.Done()
				return ctx.Err()
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		now := time.Now()
		interval := now.Sub(last)
		last = now
		l.collector.ObserveFrameInterval(interval)
		l.collector.IncFrames()

		remaining, seeded := l.runFrame(ctx, interval.Seconds())
		if l.exitIdle && seeded && remaining == 0 {
			return nil
		}
	}
}

func (l *FrameLoop) runFrame(ctx context.Context, delta float64) (int, bool) {
	l.mu.Lock()
	current := l.callbacks
	l.callbacks = nil
	seeded := l.seeded
	l.mu.Unlock()

	var kept []flight.FrameFunc
	for _, fn := range current {
		if l.invoke(ctx, fn, delta) == flight.Continue {
			kept = append(kept, fn)
		}
	}

	l.mu.Lock()
	l.callbacks = append(kept, l.callbacks...)
	n := len(l.callbacks)
	l.mu.Unlock()

	l.collector.SetActiveCallbacks(n)
	return n, seeded
}

func (l *FrameLoop) invoke(ctx context.Context, fn flight.FrameFunc, delta float64) (sig flight.Signal) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error(ctx, "frame callback panicked", logging.Any("panic", r))
			l.collector.IncCallbackPanics()
			sig = flight.Stop
		}
	}()
	return fn(delta)
}
