// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package tuner

import (
	"testing"

	"github.com/reservesd/reservesd/internal/reservation"
)

func TestSlotTryAddRejectsWrongChannelType(t *testing.T) {
	s := newSlot(Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	ok := s.TryAdd(reservation.Program{ID: 1, StartAt: 0, EndAt: 100, ChannelType: reservation.ChannelBS})
	if ok {
		t.Fatalf("expected rejection for unsupported channel type")
	}
}

func TestSlotTryAddRejectsOverlap(t *testing.T) {
	s := newSlot(Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	if !s.TryAdd(reservation.Program{ID: 1, StartAt: 100, EndAt: 300, ChannelType: reservation.ChannelGR}) {
		t.Fatalf("expected first add to succeed")
	}
	if s.TryAdd(reservation.Program{ID: 2, StartAt: 150, EndAt: 250, ChannelType: reservation.ChannelGR}) {
		t.Fatalf("expected overlapping add to fail")
	}
}

func TestSlotTryAddAllowsAdjacentHalfOpen(t *testing.T) {
	s := newSlot(Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	if !s.TryAdd(reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR}) {
		t.Fatalf("expected first add to succeed")
	}
	if !s.TryAdd(reservation.Program{ID: 2, StartAt: 200, EndAt: 300, ChannelType: reservation.ChannelGR}) {
		t.Fatalf("expected back-to-back program to succeed under half-open interval")
	}
}

func TestSlotClearDiscardsHeldPrograms(t *testing.T) {
	s := newSlot(Descriptor{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}})
	s.TryAdd(reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR})
	s.Clear()
	if !s.TryAdd(reservation.Program{ID: 2, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelGR}) {
		t.Fatalf("expected slot to accept after clear")
	}
}

func TestInventorySetReplacesSlots(t *testing.T) {
	inv := NewInventory([]Descriptor{{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}}})
	inv.Set([]Descriptor{
		{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}},
		{Index: 1, Types: []reservation.ChannelType{reservation.ChannelBS}},
	})
	slots := inv.Slots()
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots after Set, got %d", len(slots))
	}
}

func TestTryAssignPicksFirstAcceptingTunerInIndexOrder(t *testing.T) {
	inv := NewInventory([]Descriptor{
		{Index: 0, Types: []reservation.ChannelType{reservation.ChannelGR}},
		{Index: 1, Types: []reservation.ChannelType{reservation.ChannelBS}},
	})
	slots := inv.Slots()
	p := reservation.Program{ID: 1, StartAt: 100, EndAt: 200, ChannelType: reservation.ChannelBS}
	if !TryAssign(slots, p) {
		t.Fatalf("expected assignment to succeed")
	}
	if slots[0].held != nil {
		t.Fatalf("expected slot 0 (GR) to remain empty")
	}
}
