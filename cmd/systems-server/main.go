package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/core"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/api"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/observability"
	"github.com/signalsfoundry/aircraft-systems-simulator/timectrl"
)

const serviceName = "systems-server"

func main() {
	httpAddr := flag.String("http-addr", ":8080", "TCP address the HTTP API listens on")
	scenarioPath := flag.String("scenario", "configs/scenario.yaml", "path to the scenario file (.json, .yaml)")
	tickOverride := flag.Duration("tick", 0, "tick interval override (0 uses the scenario's tick)")
	realTime := flag.Bool("real-time", true, "advance simulation time at wall-clock rate")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	scenario, err := core.LoadScenario(*scenarioPath)
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	engine, err := core.NewEngineFromScenario(scenario, log, core.WithMetrics(collector))
	if err != nil {
		log.Error(ctx, "failed to build simulation", logging.String("error", err.Error()))
		os.Exit(1)
	}

	tick := time.Duration(scenario.TickMs * float64(time.Millisecond))
	if *tickOverride > 0 {
		tick = *tickOverride
	}
	dtMs := float64(tick) / float64(time.Millisecond)

	mode := timectrl.Accelerated
	if *realTime {
		mode = timectrl.RealTime
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), tick, mode)
	tc.AddListener(func(time.Time) {
		engine.Step(dtMs)
	})

	router := api.NewRouter(serviceName, engine, log, collector)
	srv := &http.Server{
		Addr:    *httpAddr,
		Handler: router,
	}

	log.Info(ctx, "starting systems server",
		logging.String("addr", *httpAddr),
		logging.String("scenario", scenario.Name),
		logging.String("tick", tick.String()),
	)

	done := tc.Start(0)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down systems server")
	tc.Stop()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "HTTP shutdown failed", logging.String("error", err.Error()))
	}
}
