// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon owns the long-lived process lifecycle: the HTTP
// health/metrics surface, the background re-plan scheduler, and
// (optionally) a config hot-reload watcher (SPEC_FULL.md §4.I).
package daemon

import (
	"context"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reservesd/reservesd/internal/config"
	"github.com/reservesd/reservesd/internal/log"
	"github.com/reservesd/reservesd/internal/planner"
)

// App wires the planner, its background scheduler, and the HTTP
// health/metrics surface into one process lifecycle.
type App struct {
	logger     zerolog.Logger
	cfg        config.Config
	planner    *planner.Planner
	scheduler  *planner.Scheduler
	httpServer *http.Server
	ready      func() bool
}

// NewApp builds an App. ready reports whether the planner has
// completed its initial load and first re-plan (readiness gate).
func NewApp(cfg config.Config, p *planner.Planner, sched *planner.Scheduler, ready func() bool) *App {
	logger := log.WithComponent("daemon")

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(tracingMiddleware("reservesd.daemon"))
	router.Use(httprate.LimitByIP(100, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("/metrics", promhttp.Handler())

	return &App{
		logger:    logger,
		cfg:       cfg,
		planner:   p,
		scheduler: sched,
		httpServer: &http.Server{
			Addr:              cfg.HealthAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ready: ready,
	}
}

// Run starts the HTTP surface, the background scheduler, and
// (if configPath is non-empty) a config-file watcher, blocking until
// ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context, configPath string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.HealthAddr).Msg("starting health/metrics server")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(shutdownCtx)
	})

	a.scheduler.Start(ctx)

	if configPath != "" {
		g.Go(func() error {
			return a.watchConfig(ctx, configPath)
		})
	}

	return g.Wait()
}

// watchConfig reloads the tuner inventory when configPath changes on
// disk, without a process restart. Only the tuner inventory is
// reloaded: scheduler cadence, rule-store and catalogue settings keep
// their startup values until the process restarts.
func (a *App) watchConfig(ctx context.Context, configPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to start config watcher")
		return nil
	}
	defer watcher.Close()

	if err := watcher.Add(configPath); err != nil {
		a.logger.Warn().Err(err).Str("path", configPath).Msg("failed to watch config file")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			newCfg, err := config.Load(configPath)
			if err != nil {
				a.logger.Warn().Err(err).Msg("config reload failed")
				continue
			}
			a.planner.SetTuners(toDescriptors(newCfg))
			a.logger.Info().Msg("reloaded tuner inventory from config")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
