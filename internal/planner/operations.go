// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package planner

import (
	"context"
	"fmt"

	"github.com/reservesd/reservesd/internal/catalogue"
	"github.com/reservesd/reservesd/internal/log"
	"github.com/reservesd/reservesd/internal/metrics"
	"github.com/reservesd/reservesd/internal/reservation"
	"github.com/reservesd/reservesd/internal/resolver"
	"github.com/reservesd/reservesd/internal/telemetry"
	"github.com/reservesd/reservesd/internal/tuner"
)

var tracer = telemetry.Tracer("reservesd.planner")

// resolveWithSpan runs the resolver inside its own span, tagging it
// with the candidate/conflict/skip counts so a trace shows resolver
// cost and outcome alongside the planner operation that triggered it.
func resolveWithSpan(ctx context.Context, candidates []reservation.Reservation, slots []*tuner.Slot) []reservation.Reservation {
	_, span := tracer.Start(ctx, "resolver.Resolve")
	defer span.End()

	resolved := resolver.Resolve(candidates, slots)

	var conflict, skip int
	for _, r := range resolved {
		switch {
		case r.IsSkip:
			skip++
		case r.IsConflict:
			conflict++
		}
	}
	span.SetAttributes(telemetry.ResolverAttributes(len(candidates), conflict, skip)...)
	return resolved
}

// AddManual implements spec §4.E addManual: validate, fetch the
// program, reject if already reserved, run the resolver against the
// overlapping subset, and only commit if the new program would not
// itself conflict.
func (p *Planner) AddManual(ctx context.Context, programID int64, encodeOpt *reservation.EncodeOption) (reservation.Reservation, error) {
	ctx, span := tracer.Start(ctx, "planner.AddManual")
	defer span.End()
	span.SetAttributes(telemetry.PlannerAttributes("addManual", "")...)

	release, err := p.acquire()
	if err != nil {
		return reservation.Reservation{}, err
	}
	defer release()

	if err := validateEncodeOption(encodeOpt); err != nil {
		return reservation.Reservation{}, fmt.Errorf("%w: %v", ErrInvalidEncodeOption, err)
	}

	if _, ok := p.reservations.ByProgramID(programID); ok {
		return reservation.Reservation{}, ErrAlreadyReserved
	}

	programs, err := p.catalogueClient.FindByID(ctx, programID, false)
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("planner: catalogue lookup failed: %w", err)
	}
	if len(programs) == 0 {
		return reservation.Reservation{}, ErrProgramNotFound
	}
	program := programs[0]

	candidate := reservation.Reservation{
		Program:      program,
		Origin:       reservation.OriginManual,
		ManualID:     p.nextManualID(),
		EncodeOption: encodeOpt,
	}

	all, _ := p.reservations.All(nil, nil)
	overlapping := []reservation.Reservation{candidate}
	for _, r := range all {
		if !r.IsSkip && !r.IsConflict && r.Program.Overlaps(program) {
			overlapping = append(overlapping, r)
		}
	}

	resolved := resolveWithSpan(ctx, overlapping, p.tuners.Slots())
	var resolvedCandidate reservation.Reservation
	for _, r := range resolved {
		if r.Program.ID == program.ID {
			resolvedCandidate = r
			break
		}
	}
	if resolvedCandidate.IsConflict {
		return reservation.Reservation{}, ErrConflict
	}

	merged := append(all, candidate)
	p.reservations.Replace(merged)
	if err := p.reservations.Save(); err != nil {
		return reservation.Reservation{}, fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	log.AuditInfo(ctx, "reservation.manual_added", "manual reservation added", map[string]any{
		"programId": programID,
	})
	p.notify(ctx)

	return candidate, nil
}

// Cancel implements spec §4.E cancel: remove a manual reservation, or
// mark a rule reservation skipped, then fire an asynchronous re-plan.
func (p *Planner) Cancel(ctx context.Context, programID int64) error {
	release, err := p.acquire()
	if err != nil {
		return err
	}

	target, ok := p.reservations.ByProgramID(programID)
	if !ok {
		release()
		return ErrProgramNotFound
	}

	all, _ := p.reservations.All(nil, nil)
	next := make([]reservation.Reservation, 0, len(all))
	for _, r := range all {
		if r.Program.ID != programID {
			next = append(next, r)
			continue
		}
		if r.Origin == reservation.OriginRule {
			r.IsSkip = true
			r.IsConflict = false
			next = append(next, r)
		}
		// manual origin: drop it (not appended).
	}

	p.reservations.Replace(next)
	if err := p.reservations.Save(); err != nil {
		release()
		return fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	log.AuditInfo(ctx, "reservation.canceled", "reservation canceled", map[string]any{
		"programId": programID,
		"origin":    string(target.Origin),
	})

	release()

	// Fire-and-forget re-plan (spec §9): caller gets a fast ack, the
	// re-plan runs subsequently under its own single-writer guard.
	go func() {
		if _, err := p.UpdateAll(context.WithoutCancel(ctx)); err != nil {
			log.WithComponent("planner").Warn().Err(err).Msg("post-cancel updateAll failed")
		}
	}()

	return nil
}

// Unskip implements spec §4.E unskip: clear the skip flag; if the
// reservation is rule-origin, trigger a re-plan of that rule.
func (p *Planner) Unskip(ctx context.Context, programID int64) error {
	release, err := p.acquire()
	if err != nil {
		return err
	}

	target, ok := p.reservations.ByProgramID(programID)
	if !ok {
		release()
		return ErrProgramNotFound
	}

	all, _ := p.reservations.All(nil, nil)
	for i := range all {
		if all[i].Program.ID == programID {
			all[i].IsSkip = false
		}
	}
	p.reservations.Replace(all)
	if err := p.reservations.Save(); err != nil {
		release()
		return fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	log.AuditInfo(ctx, "reservation.unskipped", "reservation unskipped", map[string]any{
		"programId": programID,
		"origin":    string(target.Origin),
	})

	release()

	if target.Origin == reservation.OriginRule {
		go func() {
			if _, err := p.UpdateRule(context.WithoutCancel(ctx), target.RuleID); err != nil {
				log.WithComponent("planner").Warn().Err(err).Msg("post-unskip updateRule failed")
			}
		}()
	}
	return nil
}

// UpdateAll implements spec §4.E updateAll: refresh manual
// reservations from the catalogue (dropping any whose program no
// longer exists), collect matches of every enabled rule, union them,
// reapply skip flags, resolve, commit, persist, notify.
func (p *Planner) UpdateAll(ctx context.Context) ([]reservation.Reservation, error) {
	ctx, span := tracer.Start(ctx, "planner.UpdateAll")
	defer span.End()
	span.SetAttributes(telemetry.PlannerAttributes("updateAll", "")...)

	release, err := p.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	existing, _ := p.reservations.All(nil, nil)
	skipByProgramID := skipFlags(existing)

	candidates, err := p.collectManual(ctx, existing)
	if err != nil {
		return nil, err
	}

	rules, err := p.ruleStore.FindAll(ctx)
	if err != nil {
		log.WithComponent("planner").Warn().Err(err).Msg("failed to list rules during updateAll")
	}
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		matches, err := p.fetchRuleMatches(ctx, rule)
		if err != nil {
			log.WithComponent("planner").Warn().Err(err).Str("ruleId", rule.ID).Msg("rule fetch failed, skipping")
			continue
		}
		candidates = append(candidates, matches...)
	}

	applySkipFlags(candidates, skipByProgramID)

	resolved := resolveWithSpan(ctx, candidates, p.tuners.Slots())
	recordResolverMetrics(resolved)
	p.reservations.Replace(resolved)
	if err := p.reservations.Save(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	logConflicts(ctx, resolved)
	p.notify(ctx)
	return resolved, nil
}

// UpdateRule implements spec §4.E updateRule: like updateAll but
// scoped to one rule; other rules' reservations and all manual
// reservations are preserved untouched.
func (p *Planner) UpdateRule(ctx context.Context, ruleID string) ([]reservation.Reservation, error) {
	ctx, span := tracer.Start(ctx, "planner.UpdateRule")
	defer span.End()
	span.SetAttributes(telemetry.PlannerAttributes("updateRule", ruleID)...)

	release, err := p.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	existing, _ := p.reservations.All(nil, nil)
	skipByProgramID := skipFlags(existing)

	var candidates []reservation.Reservation
	for _, r := range existing {
		if r.Origin == reservation.OriginRule && r.RuleID == ruleID {
			continue
		}
		r.IsConflict = false
		candidates = append(candidates, r)
	}

	rule, err := p.ruleStore.FindByID(ctx, ruleID)
	if err != nil {
		log.WithComponent("planner").Warn().Err(err).Str("ruleId", ruleID).Msg("rule lookup failed during updateRule")
	} else if rule.Enabled {
		matches, err := p.fetchRuleMatches(ctx, rule)
		if err != nil {
			log.WithComponent("planner").Warn().Err(err).Str("ruleId", ruleID).Msg("rule fetch failed during updateRule")
		} else {
			candidates = append(candidates, matches...)
		}
	}

	applySkipFlags(candidates, skipByProgramID)

	resolved := resolveWithSpan(ctx, candidates, p.tuners.Slots())
	recordResolverMetrics(resolved)
	p.reservations.Replace(resolved)
	if err := p.reservations.Save(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	logConflicts(ctx, resolved)
	p.notify(ctx)
	return resolved, nil
}

// Clean implements spec §4.E clean: drop reservations whose endAt is
// already in the past. Deviating from the source (spec §9 open
// question), this persists the eviction for crash-safety.
func (p *Planner) Clean(ctx context.Context) error {
	release, err := p.acquire()
	if err != nil {
		return err
	}
	defer release()

	now := p.clock.Now().UnixMilli()
	all, _ := p.reservations.All(nil, nil)
	kept := make([]reservation.Reservation, 0, len(all))
	for _, r := range all {
		if r.Program.EndAt >= now {
			kept = append(kept, r)
		}
	}
	p.reservations.Replace(kept)
	if err := p.reservations.Save(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}
	return nil
}

func (p *Planner) collectManual(ctx context.Context, existing []reservation.Reservation) ([]reservation.Reservation, error) {
	var manual []reservation.Reservation
	for _, r := range existing {
		if r.Origin != reservation.OriginManual {
			continue
		}
		programs, err := p.catalogueClient.FindByID(ctx, r.Program.ID, false)
		if err != nil {
			log.WithComponent("planner").Warn().Err(err).Int64("programId", r.Program.ID).Msg("failed to refresh manual reservation")
			continue
		}
		if len(programs) == 0 {
			continue
		}
		refreshed := r
		refreshed.Program = programs[0]
		manual = append(manual, refreshed)
	}
	return manual, nil
}

func (p *Planner) fetchRuleMatches(ctx context.Context, rule catalogue.Rule) ([]reservation.Reservation, error) {
	programs, err := p.catalogueClient.FindByRule(ctx, rule.ToSearchOption())
	if err != nil {
		return nil, err
	}
	ruleOpt := catalogue.ToRuleOption(rule.RuleOptionInput)
	encodeOpt := catalogue.ToEncodeOption(rule.EncodeOptionInput)

	out := make([]reservation.Reservation, 0, len(programs))
	for _, prog := range programs {
		out = append(out, reservation.Reservation{
			Program:      prog,
			Origin:       reservation.OriginRule,
			RuleID:       rule.ID,
			RuleOption:   &ruleOpt,
			EncodeOption: encodeOpt,
		})
	}
	return out, nil
}

func skipFlags(existing []reservation.Reservation) map[int64]bool {
	m := make(map[int64]bool, len(existing))
	for _, r := range existing {
		if r.IsSkip {
			m[r.Program.ID] = true
		}
	}
	return m
}

func applySkipFlags(candidates []reservation.Reservation, skipByProgramID map[int64]bool) {
	for i := range candidates {
		if skipByProgramID[candidates[i].Program.ID] {
			candidates[i].IsSkip = true
		}
	}
}

func logConflicts(ctx context.Context, resolved []reservation.Reservation) {
	logger := log.WithComponent("planner")
	for _, r := range resolved {
		if r.IsConflict {
			logger.Warn().Int64("programId", r.Program.ID).Str("origin", string(r.Origin)).Msg("reservation could not be scheduled")
		}
	}
	_ = ctx
}

func recordResolverMetrics(resolved []reservation.Reservation) {
	metrics.ResolverRuns.Inc()
	var scheduled, conflict, skip int
	for _, r := range resolved {
		switch {
		case r.IsSkip:
			skip++
		case r.IsConflict:
			conflict++
		default:
			scheduled++
		}
	}
	metrics.ObserveResolved(scheduled, conflict, skip)
}

func validateEncodeOption(opt *reservation.EncodeOption) error {
	if opt == nil {
		return nil
	}
	for _, pair := range opt.Pairs {
		if pair.Mode == "" || pair.Directory == "" {
			return fmt.Errorf("encode option pair requires both mode and directory")
		}
	}
	return nil
}
