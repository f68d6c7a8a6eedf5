package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoopCollector exposes frame-loop-specific Prometheus metrics.
type LoopCollector struct {
	gatherer prometheus.Gatherer

	FrameInterval   prometheus.Histogram
	ActiveCallbacks prometheus.Gauge
	FramesTotal     prometheus.Counter
	CallbackPanics  prometheus.Counter
}

// NewLoopCollector registers frame-loop metrics against the provided registerer.
func NewLoopCollector(reg prometheus.Registerer) (*LoopCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	interval := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loop_frame_interval_seconds",
		Help:    "Wall-clock interval between consecutive frames.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.0167, 0.02, 0.033, 0.05, 0.1, 0.25},
	})
	interval, err := registerHistogram(reg, interval, "loop_frame_interval_seconds")
	if err != nil {
		return nil, err
	}

	callbacks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loop_active_callbacks",
		Help: "Number of animation callbacks currently scheduled on the loop.",
	})
	callbacks, err = registerGauge(reg, callbacks, "loop_active_callbacks")
	if err != nil {
		return nil, err
	}

	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loop_frames_total",
		Help: "Cumulative number of frames driven by the loop.",
	})
	frames, err = registerCounter(reg, frames, "loop_frames_total")
	if err != nil {
		return nil, err
	}

	panics := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loop_callback_panics_total",
		Help: "Cumulative number of animation callbacks dropped after panicking.",
	})
	panics, err = registerCounter(reg, panics, "loop_callback_panics_total")
	if err != nil {
		return nil, err
	}

	return &LoopCollector{
		gatherer:        gatherer,
		FrameInterval:   interval,
		ActiveCallbacks: callbacks,
		FramesTotal:     frames,
		CallbackPanics:  panics,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *LoopCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveFrameInterval records the wall-clock gap since the previous frame.
func (c *LoopCollector) ObserveFrameInterval(d time.Duration) {
	if c == nil || c.FrameInterval == nil {
		return
	}
	c.FrameInterval.Observe(d.Seconds())
}

// SetActiveCallbacks updates the scheduled callback gauge.
func (c *LoopCollector) SetActiveCallbacks(count int) {
	if c == nil || c.ActiveCallbacks == nil {
		return
	}
	c.ActiveCallbacks.Set(float64(count))
}

// IncFrames increments the frame counter.
func (c *LoopCollector) IncFrames() {
	if c == nil || c.FramesTotal == nil {
		return
	}
	c.FramesTotal.Inc()
}

// IncCallbackPanics increments the panic counter.
func (c *LoopCollector) IncCallbackPanics() {
	if c == nil || c.CallbackPanics == nil {
		return
	}
	c.CallbackPanics.Inc()
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
