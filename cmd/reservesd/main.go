// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command reservesd runs the reservation planner daemon: it loads the
// program catalogue, rule store, and tuner inventory, keeps the
// persisted reservation schedule up to date on a jittered interval,
// and exposes health, readiness, and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/reservesd/reservesd/internal/config"
	"github.com/reservesd/reservesd/internal/daemon"
	xglog "github.com/reservesd/reservesd/internal/log"
	"github.com/reservesd/reservesd/internal/planner"
	"github.com/reservesd/reservesd/internal/telemetry"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{Level: "info", Service: "reserves", Version: version})
	logger := xglog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "config.load_failed").Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: version})
	logger = xglog.WithComponent("main")

	tracerProvider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:      cfg.TracingEnabled,
		ExporterType: cfg.TracingExporter,
		Endpoint:     cfg.TracingEndpoint,
		ServiceName:  cfg.LogService,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("event", "tracing.init_failed").Msg("failed to initialise tracing provider")
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("tracing provider shutdown failed")
		}
	}()

	collaborators, err := daemon.NewCollaborators(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "collaborators.init_failed").Msg("failed to build planner collaborators")
	}
	defer func() {
		if err := collaborators.Close(); err != nil {
			logger.Warn().Err(err).Msg("collaborator shutdown failed")
		}
	}()

	p, err := daemon.NewPlanner(collaborators)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "planner.load_failed").Msg("failed to load reservation store")
	}

	scheduler := planner.NewScheduler(
		p,
		cfg.Scheduler.BaseInterval,
		cfg.Scheduler.MaxInterval,
		cfg.Scheduler.Jitter,
		cfg.Scheduler.StartupDelay,
	)

	// ready flips only once the scheduler's first UpdateAll has
	// actually completed (SPEC_FULL.md §4.I); NewPlanner only runs
	// Load(), so /readyz must not report ready before that first
	// background re-plan finishes.
	var ready atomic.Bool
	scheduler.SetOnFirstUpdate(func() { ready.Store(true) })
	app := daemon.NewApp(cfg, p, scheduler, ready.Load)

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("health_addr", cfg.HealthAddr).
		Str("catalogue", catalogueDescription(cfg)).
		Msg("reservation planner daemon starting")

	if err := app.Run(ctx, strings.TrimSpace(*configPath)); err != nil {
		logger.Fatal().Err(err).Str("event", "daemon.exited").Msg("reservation planner daemon exited with error")
	}

	logger.Info().Msg("reservation planner daemon stopped")
}

func catalogueDescription(cfg config.Config) string {
	if cfg.CatalogueBaseURL == "" {
		return "memory"
	}
	if cfg.CatalogueCacheDir != "" {
		return "http+cache"
	}
	return "http"
}
