// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package planner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reservesd/reservesd/internal/log"
)

// SchedulerClock abstracts timer creation so tests can drive the
// scheduler loop without real sleeps.
type SchedulerClock interface {
	NewTimer(d time.Duration) SchedulerTimer
}

// SchedulerTimer abstracts time.Timer.
type SchedulerTimer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

type realSchedulerClock struct{}

func (realSchedulerClock) NewTimer(d time.Duration) SchedulerTimer {
	return &realSchedulerTimer{t: time.NewTimer(d)}
}

type realSchedulerTimer struct{ t *time.Timer }

func (r *realSchedulerTimer) C() <-chan time.Time        { return r.t.C }
func (r *realSchedulerTimer) Stop() bool                 { return r.t.Stop() }
func (r *realSchedulerTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

// Scheduler periodically triggers Planner.UpdateAll, with jitter and
// exponential backoff while UpdateAll keeps returning an error
// (SPEC_FULL.md §4.I.1). Per-rule collaborator failures are logged and
// skipped inside UpdateAll and do not trigger a backoff.
type Scheduler struct {
	planner *Planner
	logger  zerolog.Logger
	clock   SchedulerClock

	BaseInterval time.Duration
	MaxInterval  time.Duration
	Jitter       time.Duration
	StartupDelay time.Duration

	mu              sync.Mutex
	currentInterval time.Duration
	onFirstUpdate   func()
	firstUpdateOnce sync.Once
}

// NewScheduler builds a Scheduler with the given re-plan cadence.
func NewScheduler(p *Planner, base, max, jitter, startupDelay time.Duration) *Scheduler {
	return &Scheduler{
		planner:      p,
		logger:       log.WithComponent("planner.scheduler"),
		clock:        realSchedulerClock{},
		BaseInterval: base,
		MaxInterval:  max,
		Jitter:       jitter,
		StartupDelay: startupDelay,
	}
}

// Start begins the scheduling loop in a background goroutine and
// returns immediately; the loop stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// SetOnFirstUpdate registers fn to run once, after the scheduler's
// first UpdateAll call returns (success or failure). The daemon uses
// this to flip its readiness gate only once the initial load() and
// first updateAll() have actually completed (SPEC_FULL.md §4.I).
func (s *Scheduler) SetOnFirstUpdate(fn func()) {
	s.mu.Lock()
	s.onFirstUpdate = fn
	s.mu.Unlock()
}

func (s *Scheduler) loop(ctx context.Context) {
	s.logger.Info().Msg("reservation scheduler started")

	timer := s.clock.NewTimer(s.nextDuration(true))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reservation scheduler stopping")
			return
		case <-timer.C():
			resolved, err := s.planner.UpdateAll(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("updateAll failed, backing off")
				s.increaseBackoff()
			} else {
				conflicts := 0
				for _, r := range resolved {
					if r.IsConflict {
						conflicts++
					}
				}
				s.logger.Info().Int("total", len(resolved)).Int("conflicts", conflicts).Msg("scheduled re-plan completed")
				s.resetBackoff()
			}
			s.signalFirstUpdate()
			timer.Reset(s.nextDuration(false))
		}
	}
}

func (s *Scheduler) signalFirstUpdate() {
	s.firstUpdateOnce.Do(func() {
		s.mu.Lock()
		fn := s.onFirstUpdate
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

func (s *Scheduler) nextDuration(isFirst bool) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isFirst {
		return s.StartupDelay + s.jitterDuration()
	}

	interval := s.currentInterval
	if interval == 0 {
		interval = s.BaseInterval
	}
	return interval + s.jitterDuration()
}

func (s *Scheduler) jitterDuration() time.Duration {
	if s.Jitter == 0 {
		return 0
	}
	ms := int64(s.Jitter / time.Millisecond)
	if ms == 0 {
		return 0
	}
	delta := rand.Int63n(ms*2) - ms
	return time.Duration(delta) * time.Millisecond
}

func (s *Scheduler) increaseBackoff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentInterval == 0 {
		s.currentInterval = s.BaseInterval
	}
	s.currentInterval *= 2
	if s.currentInterval > s.MaxInterval {
		s.currentInterval = s.MaxInterval
	}
}

func (s *Scheduler) resetBackoff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentInterval = s.BaseInterval
}
