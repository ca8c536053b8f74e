// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package tuner implements the tuner slot (spec §4.A): an immutable
// descriptor plus transient, non-persisted allocation state that the
// resolver assigns candidates to during one sweep.
package tuner

import (
	"sync"

	"github.com/reservesd/reservesd/internal/reservation"
)

// Descriptor is the configuration-time shape of one tuner (spec §6):
// an index and the set of channel types it can receive.
type Descriptor struct {
	Index int
	Types []reservation.ChannelType
}

// Slot is one physical tuner: an immutable descriptor plus the
// sequence of programs tentatively held during one resolver run.
// Slot state is never observed outside a resolver invocation and is
// never persisted (spec §5).
type Slot struct {
	index int
	types map[reservation.ChannelType]struct{}
	held  []reservation.Program
}

func newSlot(d Descriptor) *Slot {
	types := make(map[reservation.ChannelType]struct{}, len(d.Types))
	for _, t := range d.Types {
		types[t] = struct{}{}
	}
	return &Slot{index: d.Index, types: types}
}

// Index returns the tuner's configured index.
func (s *Slot) Index() int { return s.index }

// Accepts reports whether the slot's channel-type set includes ct.
func (s *Slot) Accepts(ct reservation.ChannelType) bool {
	_, ok := s.types[ct]
	return ok
}

// TryAdd succeeds iff p's channel type is acceptable and p does not
// time-overlap any program already held (half-open intervals). On
// success p is appended; on failure the slot is left unchanged.
func (s *Slot) TryAdd(p reservation.Program) bool {
	if !s.Accepts(p.ChannelType) {
		return false
	}
	for _, held := range s.held {
		if held.Overlaps(p) {
			return false
		}
	}
	s.held = append(s.held, p)
	return true
}

// Clear discards all held programs.
func (s *Slot) Clear() {
	s.held = s.held[:0]
}

// Inventory is the ordered array of tuners the resolver assigns
// against, guarded for concurrent reads while setTuners (spec §4.E)
// replaces it.
type Inventory struct {
	mu    sync.RWMutex
	slots []*Slot
}

// NewInventory builds an Inventory from the given descriptors, one
// Slot per descriptor, preserving index order.
func NewInventory(descriptors []Descriptor) *Inventory {
	slots := make([]*Slot, len(descriptors))
	for i, d := range descriptors {
		slots[i] = newSlot(d)
	}
	return &Inventory{slots: slots}
}

// Set replaces the tuner array. No re-plan is implied; the caller
// (planner façade, spec §4.E setTuners) is responsible for that.
func (inv *Inventory) Set(descriptors []Descriptor) {
	slots := make([]*Slot, len(descriptors))
	for i, d := range descriptors {
		slots[i] = newSlot(d)
	}
	inv.mu.Lock()
	inv.slots = slots
	inv.mu.Unlock()
}

// Slots returns the current tuner array in index order. The caller
// must not retain the returned slice across a concurrent Set.
func (inv *Inventory) Slots() []*Slot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]*Slot, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// ClearAll resets every slot's transient state, the first step of
// each full reassignment pass (spec §4.D stage 3.4).
func ClearAll(slots []*Slot) {
	for _, s := range slots {
		s.Clear()
	}
}

// TryAssign attempts to place p on the first tuner (in index order)
// that accepts it, returning whether any tuner did.
func TryAssign(slots []*Slot, p reservation.Program) bool {
	for _, s := range slots {
		if s.TryAdd(p) {
			return true
		}
	}
	return false
}
