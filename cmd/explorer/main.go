// Command explorer runs the flight core headless: it loads the body
// catalog, starts the frame loop and either flies the camera to a
// target body or cruises in free flight until interrupted. Prometheus
// metrics are served over HTTP; tracing is configured from the
// environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/flight"
	"github.com/helioforge/exploration-simulator/internal/hud"
	"github.com/helioforge/exploration-simulator/internal/logging"
	"github.com/helioforge/exploration-simulator/internal/loop"
	"github.com/helioforge/exploration-simulator/internal/observability"
	"github.com/helioforge/exploration-simulator/registry"
	"github.com/helioforge/exploration-simulator/scene"
	"github.com/helioforge/exploration-simulator/timectrl"
)

func main() {
	catalogPath := flag.String("catalog", "configs/bodies.json", "path to the JSON body catalog")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	fps := flag.Float64("fps", 60, "frame rate of the headless loop")
	flyTo := flag.String("fly-to", "mars", "body to fly to on startup; empty starts in free flight")
	duration := flag.Duration("duration", 0, "stop after this much wall time (0 = run until interrupted)")
	timeRate := flag.Float64("time-rate", 86400, "simulated seconds per wall second")
	sizeScale := flag.Float64("size-scale", 100, "body radius exaggeration factor")
	startStr := flag.String("start", "", "simulation start instant, RFC3339 (default: now)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	flightCollector, err := observability.NewFlightCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise flight metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}
	loopCollector, err := observability.NewLoopCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise loop metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	metricsSrv := serveMetrics(*metricsAddr, flightCollector, log)

	start := time.Now().UTC()
	if *startStr != "" {
		start, err = time.Parse(time.RFC3339, *startStr)
		if err != nil {
			log.Error(ctx, "invalid -start", logging.String("value", *startStr), logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	reg := registry.New(registry.WithConfig(registry.Config{SizeScale: *sizeScale}))
	f, err := os.Open(*catalogPath)
	if err != nil {
		log.Error(ctx, "failed to open catalog", logging.String("path", *catalogPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	summary, err := registry.LoadCatalog(reg, f, start)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load catalog", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "catalog loaded",
		logging.Int("bodies", len(summary.BodyNames)),
		logging.String("start", start.Format(time.RFC3339)))
	flightCollector.SetBodyCount(reg.Count())

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, *duration)
		defer cancel()
	}

	cfg := runConfig{
		registry:        reg,
		clock:           timectrl.NewTimeController(start, timectrl.WithRate(*timeRate)),
		fps:             *fps,
		flyTo:           *flyTo,
		flightCollector: flightCollector,
		loopCollector:   loopCollector,
	}
	if err := runExploration(runCtx, cfg, log); err != nil {
		log.Error(ctx, "exploration run failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info(ctx, "shutting down")
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// runConfig carries everything runExploration needs, so tests can build
// the run without flags or the process-global metrics registry.
type runConfig struct {
	registry        *registry.Registry
	clock           *timectrl.TimeController
	fps             float64
	flyTo           string
	flightCollector *observability.FlightCollector
	loopCollector   *observability.LoopCollector
}

// runExploration wires the flight machine to a paced frame loop and runs
// it until the context ends. With a fly-to target the run finishes when
// the maneuver lands in the menu; without one it cruises in free flight.
func runExploration(ctx context.Context, cfg runConfig, log logging.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	frameLoop := loop.NewFrameLoop(
		loop.WithFPS(cfg.fps),
		loop.WithLogger(log),
		loop.WithCollector(cfg.loopCollector),
	)

	input := &scriptInput{cruise: mgl64.Vec3{0, 0, -1}}
	camera := flight.NewCamera()
	camera.Position = mgl64.Vec3{0, 0.3, 2}

	opts := []flight.Option{
		flight.WithLogger(log),
		flight.WithCollector(cfg.flightCollector),
		flight.WithContext(runCtx),
	}
	if cfg.flyTo != "" {
		// Arrival parks the machine in the menu; for a headless demo
		// that is the end of the run.
		opts = append(opts, flight.WithTransitionHook(func(from, to flight.ModeID) {
			if from == flight.ModeAuto && to == flight.ModeMenu {
				cancel()
			}
		}))
	}

	machine, err := flight.NewMachine(flight.Deps{
		Registry: cfg.registry,
		Clock:    cfg.clock,
		Camera:   camera,
		Animator: frameLoop,
		Input:    input,
		UI:       hud.New(runCtx, log),
		Scene:    scene.NewSphereScene(cfg.registry.ColliderHandles),
	}, opts...)
	if err != nil {
		return fmt.Errorf("build flight machine: %w", err)
	}

	if cfg.flyTo != "" {
		if err := machine.FlyTo(cfg.flyTo); err != nil {
			return fmt.Errorf("fly to %q: %w", cfg.flyTo, err)
		}
	} else if err := machine.SetMode(flight.ModeFree); err != nil {
		return err
	}

	err = frameLoop.Run(runCtx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// scriptInput is the headless stand-in for pointer and keyboard input:
// free flight cruises along a fixed camera-local vector, and capture
// requests are granted immediately, the way a browser grants pointer
// lock to a scripted page.
type scriptInput struct {
	cruise        mgl64.Vec3
	escape        func(flight.KeyEdge)
	captureChange func(bool)
}

func (s *scriptInput) TranslationVector() mgl64.Vec3 { return s.cruise }

func (s *scriptInput) RequestCapture() {
	if s.captureChange != nil {
		s.captureChange(true)
	}
}

func (s *scriptInput) ReleaseCapture() {
	if s.captureChange != nil {
		s.captureChange(false)
	}
}

func (s *scriptInput) BindEscape(fn func(flight.KeyEdge)) { s.escape = fn }
func (s *scriptInput) UnbindEscape()                      { s.escape = nil }

func (s *scriptInput) BindCaptureChange(fn func(bool)) { s.captureChange = fn }

func serveMetrics(addr string, collector *observability.FlightCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
