// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes the planner's Prometheus counters and
// gauges (SPEC_FULL.md §4.K).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolverRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_runs_total",
		Help: "Total number of resolver sweep-line runs.",
	})

	ReservationsScheduled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reservations_scheduled",
		Help: "Current number of reservations neither conflicted nor skipped.",
	})

	ReservationsConflict = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reservations_conflict",
		Help: "Current number of reservations marked as conflict.",
	})

	ReservationsSkipped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reservations_skipped",
		Help: "Current number of reservations marked as skip.",
	})

	CatalogueCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogue_cache_hit_total",
		Help: "Total catalogue lookups served from the local cache, by operation.",
	}, []string{"operation"})

	PlannerAlreadyRunning = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_already_running_total",
		Help: "Total mutating calls rejected because a mutation was already in flight.",
	})
)

// ObserveResolved updates the outcome gauges from a resolved list's
// counts. Callers pass already-computed totals to avoid metrics
// depending on the reservation package's types directly.
func ObserveResolved(scheduled, conflict, skip int) {
	ReservationsScheduled.Set(float64(scheduled))
	ReservationsConflict.Set(float64(conflict))
	ReservationsSkipped.Set(float64(skip))
}
