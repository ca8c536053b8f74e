// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resolver

import (
	"testing"

	"github.com/reservesd/reservesd/internal/reservation"
	"github.com/reservesd/reservesd/internal/tuner"
)

func manual(id int64, programID int64, start, end int64, ct reservation.ChannelType) reservation.Reservation {
	return reservation.Reservation{
		Program: reservation.Program{ID: programID, StartAt: start, EndAt: end, ChannelType: ct},
		Origin:  reservation.OriginManual,
		ManualID: id,
	}
}

func rule(id string, programID int64, start, end int64, ct reservation.ChannelType) reservation.Reservation {
	return reservation.Reservation{
		Program: reservation.Program{ID: programID, StartAt: start, EndAt: end, ChannelType: ct},
		Origin:  reservation.OriginRule,
		RuleID:  id,
	}
}

func slotsFor(descriptors ...tuner.Descriptor) []*tuner.Slot {
	inv := tuner.NewInventory(descriptors)
	return inv.Slots()
}

func findByProgramID(rs []reservation.Reservation, id int64) reservation.Reservation {
	for _, r := range rs {
		if r.Program.ID == id {
			return r
		}
	}
	panic("not found")
}

// S1 - no overlap.
func TestS1NoOverlap(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	candidates := []reservation.Reservation{
		manual(1, 1, 100, 200, reservation.ChannelGR),
		manual(2, 2, 200, 300, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if findByProgramID(out, 1).IsConflict || findByProgramID(out, 2).IsConflict {
		t.Fatalf("expected neither to conflict: %+v", out)
	}
}

// S2 - simple conflict.
func TestS2SimpleConflict(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	candidates := []reservation.Reservation{
		manual(1, 1, 100, 300, reservation.ChannelGR),
		manual(2, 2, 150, 250, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if findByProgramID(out, 1).IsConflict {
		t.Fatalf("expected P1 kept")
	}
	if !findByProgramID(out, 2).IsConflict {
		t.Fatalf("expected P2 marked conflict")
	}
}

// S3 - priority preemption: manual beats rule regardless of arrival order.
func TestS3PriorityPreemption(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	candidates := []reservation.Reservation{
		rule("5", 1, 100, 300, reservation.ChannelGR),
		manual(1, 2, 150, 250, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if findByProgramID(out, 2).IsConflict {
		t.Fatalf("expected manual P2 kept")
	}
	if !findByProgramID(out, 1).IsConflict {
		t.Fatalf("expected rule P1 marked conflict")
	}
}

// S4 - two tuners, mixed types.
func TestS4TwoTunersMixedTypes(t *testing.T) {
	slots := slotsFor(
		tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}},
		tuner.Descriptor{Index: 1, Types: []reservation.ChannelType{reservation.ChannelBS}},
	)
	candidates := []reservation.Reservation{
		manual(1, 1, 100, 300, reservation.ChannelGR),
		manual(2, 2, 150, 250, reservation.ChannelBS),
		manual(3, 3, 200, 400, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if findByProgramID(out, 1).IsConflict {
		t.Fatalf("expected P1 on T0")
	}
	if findByProgramID(out, 2).IsConflict {
		t.Fatalf("expected P2 on T1")
	}
	if !findByProgramID(out, 3).IsConflict {
		t.Fatalf("expected P3 conflict (T0 busy, T1 wrong type)")
	}
}

// S5 - skip ignored by allocator.
func TestS5SkipIgnoredByAllocator(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	skipped := manual(1, 1, 100, 300, reservation.ChannelGR)
	skipped.IsSkip = true
	candidates := []reservation.Reservation{
		skipped,
		manual(2, 2, 100, 300, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	p2 := findByProgramID(out, 2)
	if p2.IsConflict {
		t.Fatalf("expected P2 scheduled, not conflict")
	}
	p1 := findByProgramID(out, 1)
	if !p1.IsSkip || p1.IsConflict {
		t.Fatalf("expected P1 retained as skip, never conflict")
	}
}

// Boundary: a program ending exactly when another starts must not conflict.
func TestAdjacentIntervalsDoNotConflict(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	candidates := []reservation.Reservation{
		manual(1, 1, 100, 200, reservation.ChannelGR),
		manual(2, 2, 200, 300, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	for _, r := range out {
		if r.IsConflict {
			t.Fatalf("adjacent intervals must not conflict: %+v", out)
		}
	}
}

func TestResolveDeduplicatesByProgramIDKeepingHigherAuthority(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	candidates := []reservation.Reservation{
		rule("5", 1, 100, 300, reservation.ChannelGR),
		manual(1, 1, 100, 300, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if len(out) != 1 {
		t.Fatalf("expected dedup to one reservation, got %d", len(out))
	}
	if out[0].Origin != reservation.OriginManual {
		t.Fatalf("expected manual origin to win dedup, got %v", out[0].Origin)
	}
}

func TestResolveOutputSortedByStartAt(t *testing.T) {
	slots := slotsFor(tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	candidates := []reservation.Reservation{
		manual(2, 2, 300, 400, reservation.ChannelGR),
		manual(1, 1, 100, 200, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if out[0].Program.ID != 1 || out[1].Program.ID != 2 {
		t.Fatalf("expected output sorted by startAt, got %+v", out)
	}
}

func TestResolveNoOverlappingNonConflictSharesSameTuner(t *testing.T) {
	// Quantified invariant 4: any two non-conflict overlapping reservations
	// must have been placed on distinct tuners that each accept their type.
	slots := slotsFor(
		tuner.Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}},
		tuner.Descriptor{Index: 1, Types: []reservation.ChannelType{reservation.ChannelGR}},
	)
	candidates := []reservation.Reservation{
		manual(1, 1, 100, 300, reservation.ChannelGR),
		manual(2, 2, 150, 250, reservation.ChannelGR),
	}
	out := Resolve(candidates, slots)
	if findByProgramID(out, 1).IsConflict || findByProgramID(out, 2).IsConflict {
		t.Fatalf("expected both scheduled with two compatible tuners available")
	}
}
