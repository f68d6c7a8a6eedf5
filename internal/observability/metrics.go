package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FlightCollector bundles Prometheus metrics for the flight machine and
// body registry, and provides a ready-to-serve /metrics handler.
type FlightCollector struct {
	gatherer prometheus.Gatherer

	ModeTransitions *prometheus.CounterVec
	FrameDurations  *prometheus.HistogramVec
	CollisionBlocks prometheus.Counter
	Maneuvers       *prometheus.CounterVec

	Bodies prometheus.Gauge
	Speed  prometheus.Gauge
}

// NewFlightCollector registers flight Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewFlightCollector(reg prometheus.Registerer) (*FlightCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_mode_transitions_total",
		Help: "Total number of flight mode transitions, labeled by the modes involved.",
	}, []string{"from", "to"})
	transitions, err := registerCounterVec(reg, transitions, "flight_mode_transitions_total")
	if err != nil {
		return nil, err
	}

	frames := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flight_frame_duration_seconds",
		Help:    "Frame callback latency in seconds, labeled by flight mode.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"mode"})
	frames, err = registerHistogramVec(reg, frames, "flight_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	blocks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flight_collision_blocks_total",
		Help: "Total number of free-flight frames where a collision blocked movement.",
	}), "flight_collision_blocks_total")
	if err != nil {
		return nil, err
	}

	maneuvers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_maneuvers_total",
		Help: "Total number of finished auto-flight maneuvers, labeled by outcome.",
	}, []string{"outcome"})
	maneuvers, err = registerCounterVec(reg, maneuvers, "flight_maneuvers_total")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registry_bodies",
		Help: "Current number of bodies in the registry.",
	}), "registry_bodies")
	if err != nil {
		return nil, err
	}
	speed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flight_speed_units_per_second",
		Help: "Camera translation speed in scene units per second.",
	}), "flight_speed_units_per_second")
	if err != nil {
		return nil, err
	}

	return &FlightCollector{
		gatherer:        gatherer,
		ModeTransitions: transitions,
		FrameDurations:  frames,
		CollisionBlocks: blocks,
		Maneuvers:       maneuvers,
		Bodies:          bodies,
		Speed:           speed,
	}, nil
}

// RecordTransition counts one mode change.
func (c *FlightCollector) RecordTransition(from, to string) {
	if c == nil || c.ModeTransitions == nil {
		return
	}
	c.ModeTransitions.WithLabelValues(from, to).Inc()
}

// ObserveFrame records one frame callback's duration for the given mode.
func (c *FlightCollector) ObserveFrame(mode string, d time.Duration) {
	if c == nil || c.FrameDurations == nil {
		return
	}
	c.FrameDurations.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordCollisionBlock counts one frame where collision stopped movement.
func (c *FlightCollector) RecordCollisionBlock() {
	if c == nil || c.CollisionBlocks == nil {
		return
	}
	c.CollisionBlocks.Inc()
}

// RecordManeuver counts one finished maneuver by outcome.
func (c *FlightCollector) RecordManeuver(outcome string) {
	if c == nil || c.Maneuvers == nil {
		return
	}
	c.Maneuvers.WithLabelValues(outcome).Inc()
}

// SetBodyCount updates the registry size gauge.
func (c *FlightCollector) SetBodyCount(n int) {
	if c == nil || c.Bodies == nil {
		return
	}
	c.Bodies.Set(float64(n))
}

// SetSpeed updates the camera speed gauge.
func (c *FlightCollector) SetSpeed(unitsPerSecond float64) {
	if c == nil || c.Speed == nil {
		return
	}
	c.Speed.Set(unitsPerSecond)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *FlightCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
