// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resolver implements the conflict resolver (spec §4.D): the
// sweep-line allocation that turns a multiset of candidate
// reservations into the tri-partitioned schedule (scheduled,
// conflict, skip).
package resolver

import (
	"sort"

	"github.com/reservesd/reservesd/internal/reservation"
	"github.com/reservesd/reservesd/internal/tuner"
)

type eventKind int

const (
	eventEnd eventKind = iota
	eventStart
)

// eventKind ordering matters: eventEnd < eventStart so that, sorted
// ascending by (time, kind), an END at time t sorts before a START at
// the same t. This is the chosen resolution of the open question in
// spec §9: a program ending exactly when another starts does not
// spuriously conflict.
type sweepEvent struct {
	at   int64
	kind eventKind
	idx  int
}

// Resolve runs the full sweep-line allocation described in spec §4.D
// against candidates and the given tuner slots, returning the
// deduplicated set in startAt order with final IsConflict/IsSkip
// flags. slots are reset (Clear) repeatedly during the sweep; callers
// must not rely on their state afterward.
func Resolve(candidates []reservation.Reservation, slots []*tuner.Slot) []reservation.Reservation {
	deduped := deduplicate(candidates)
	if len(deduped) == 0 {
		return deduped
	}

	events := buildEvents(deduped)

	active := make([]int, 0, len(deduped))
	activeSet := make(map[int]bool, len(deduped))

	for _, ev := range events {
		switch ev.kind {
		case eventStart:
			if deduped[ev.idx].IsSkip {
				continue
			}
			active = append(active, ev.idx)
			activeSet[ev.idx] = true
		case eventEnd:
			if !activeSet[ev.idx] {
				continue
			}
			delete(activeSet, ev.idx)
			active = removeIdx(active, ev.idx)
		}
		reassign(deduped, active, slots)
	}

	sort.Stable(reservation.ByStartAt(deduped))
	return deduped
}

// deduplicate implements stage 1: sort by authority order, keep the
// first occurrence of each program id. The returned slice is in
// authority order, not startAt order.
func deduplicate(candidates []reservation.Reservation) []reservation.Reservation {
	sorted := make([]reservation.Reservation, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return reservation.Less(sorted[i], sorted[j])
	})

	seen := make(map[int64]bool, len(sorted))
	out := make([]reservation.Reservation, 0, len(sorted))
	for _, r := range sorted {
		if seen[r.Program.ID] {
			continue
		}
		seen[r.Program.ID] = true
		r.IsConflict = false
		out = append(out, r)
	}
	return out
}

// buildEvents implements stage 2: one START and one END event per
// candidate, sorted ascending by time with END before START at equal
// timestamps.
func buildEvents(deduped []reservation.Reservation) []sweepEvent {
	events := make([]sweepEvent, 0, len(deduped)*2)
	for i, r := range deduped {
		events = append(events,
			sweepEvent{at: r.Program.StartAt, kind: eventStart, idx: i},
			sweepEvent{at: r.Program.EndAt, kind: eventEnd, idx: i},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].kind < events[j].kind
	})
	return events
}

// reassign implements stage 3.4: re-sort the active set by authority
// order, clear every tuner, then greedily place each active candidate
// in authority order, marking conflicts. A candidate marked conflict
// stays so for the rest of the sweep and holds no tuner, so a
// preempted program is not re-placed once its blocker ends.
func reassign(deduped []reservation.Reservation, active []int, slots []*tuner.Slot) {
	ordered := make([]int, len(active))
	copy(ordered, active)
	sort.SliceStable(ordered, func(i, j int) bool {
		return reservation.Less(deduped[ordered[i]], deduped[ordered[j]])
	})

	tuner.ClearAll(slots)

	for _, idx := range ordered {
		if deduped[idx].IsConflict {
			continue
		}
		if !tuner.TryAssign(slots, deduped[idx].Program) {
			deduped[idx].IsConflict = true
		}
	}
}

func removeIdx(active []int, idx int) []int {
	for i, v := range active {
		if v == idx {
			return append(active[:i], active[i+1:]...)
		}
	}
	return active
}
