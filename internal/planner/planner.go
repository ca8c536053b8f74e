// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package planner

import (
	"context"
	"sync"
	"time"

	"github.com/reservesd/reservesd/internal/bus"
	"github.com/reservesd/reservesd/internal/catalogue"
	"github.com/reservesd/reservesd/internal/metrics"
	"github.com/reservesd/reservesd/internal/reservation"
	"github.com/reservesd/reservesd/internal/rulestore"
	"github.com/reservesd/reservesd/internal/store"
	"github.com/reservesd/reservesd/internal/tuner"
)

// Clock abstracts wall-clock time so tests can control "now" without
// real sleeps, matching the teacher's scheduler pattern.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Planner is the process-wide single instance (spec §9): it holds
// the reservation store, tuner inventory, and handles to the three
// out-of-scope collaborators, and exposes every public operation from
// spec §4.E behind a cooperative single-writer guard.
//
// The guard is a plain mutex plus boolean flag, deliberately NOT
// golang.org/x/sync/singleflight: singleflight would join a second
// caller's request to the first in-flight call's result, but spec §5
// requires the second caller to fail fast with AlreadyRunning and
// retry — a stricter contract singleflight does not provide.
type Planner struct {
	catalogueClient catalogue.Client
	ruleStore       rulestore.RuleStore
	reservations    *store.Store
	tuners          *tuner.Inventory
	notifier        bus.Bus
	clock           Clock

	writerMu  sync.Mutex
	isRunning bool

	manualIDMu sync.Mutex
	lastIssued int64
}

// New constructs a Planner. Call Load before first use.
func New(catalogueClient catalogue.Client, ruleStore rulestore.RuleStore, reservations *store.Store, tuners *tuner.Inventory, notifier bus.Bus) *Planner {
	return &Planner{
		catalogueClient: catalogueClient,
		ruleStore:       ruleStore,
		reservations:    reservations,
		tuners:          tuners,
		notifier:        notifier,
		clock:           realClock{},
	}
}

// Load reads the persisted reservation list and seeds the monotonic
// manual id counter from the highest ManualID on disk (spec §9).
func (p *Planner) Load() error {
	if err := p.reservations.Load(); err != nil {
		return err
	}
	p.manualIDMu.Lock()
	p.lastIssued = p.reservations.MaxManualID()
	p.manualIDMu.Unlock()
	return nil
}

// acquire implements the single-writer guard: fails fast if a
// mutation is already in flight, otherwise marks one in flight and
// returns a release function that must run on every exit path.
func (p *Planner) acquire() (func(), error) {
	p.writerMu.Lock()
	defer p.writerMu.Unlock()
	if p.isRunning {
		metrics.PlannerAlreadyRunning.Inc()
		return nil, ErrAlreadyRunning
	}
	p.isRunning = true
	return p.release, nil
}

func (p *Planner) release() {
	p.writerMu.Lock()
	p.isRunning = false
	p.writerMu.Unlock()
}

// nextManualID derives a strictly monotonic manual id across rapid
// successive calls (spec §9: max(now, lastIssued+1)).
func (p *Planner) nextManualID() int64 {
	p.manualIDMu.Lock()
	defer p.manualIDMu.Unlock()
	now := p.clock.Now().UnixMilli()
	id := now
	if p.lastIssued+1 > id {
		id = p.lastIssued + 1
	}
	p.lastIssued = id
	return id
}

// SetTuners replaces the tuner array. No re-plan implicit (spec §4.E).
func (p *Planner) SetTuners(descriptors []tuner.Descriptor) {
	p.tuners.Set(descriptors)
}

// All returns the reservation store's All reader.
func (p *Planner) All(limit, offset *int) ([]reservation.Reservation, int) {
	return p.reservations.All(limit, offset)
}

// Plain returns the reservation store's Plain reader.
func (p *Planner) Plain(limit, offset *int) ([]reservation.Reservation, int) {
	return p.reservations.Plain(limit, offset)
}

// Conflicts returns the reservation store's Conflicts reader.
func (p *Planner) Conflicts(limit, offset *int) ([]reservation.Reservation, int) {
	return p.reservations.Conflicts(limit, offset)
}

// Skips returns the reservation store's Skips reader.
func (p *Planner) Skips(limit, offset *int) ([]reservation.Reservation, int) {
	return p.reservations.Skips(limit, offset)
}

// ByProgramID returns the reservation store's ByProgramID reader.
func (p *Planner) ByProgramID(id int64) (reservation.Reservation, bool) {
	return p.reservations.ByProgramID(id)
}

func (p *Planner) notify(ctx context.Context) {
	if p.notifier != nil {
		p.notifier.Publish(ctx)
	}
}
