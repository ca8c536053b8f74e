// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store implements the reservation store (spec §4.B): an
// in-memory ordered list of reservations with atomic persistence to
// a single JSON document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/reservesd/reservesd/internal/log"
	"github.com/reservesd/reservesd/internal/reservation"
)

// ErrPersistenceFatal is returned by Load when the document exists
// but cannot be parsed. Spec §7: malformed on-disk state is fatal,
// the caller must not silently discard user data.
var ErrPersistenceFatal = errors.New("reservation store: persisted document is unparseable")

// Store holds the authoritative reservation list and its file path.
// The list is replaced by reference on every mutation (spec §5) so a
// reader holding an older slice stays consistent for its call
// duration; callers serialize mutations externally (the planner's
// single-writer guard), Store itself adds only the mutex needed to
// make concurrent reads safe.
type Store struct {
	mu   sync.RWMutex
	path string
	list []reservation.Reservation
}

// New creates a Store bound to path. Call Load before first use.
// The parent directory is created eagerly so Save can always find a
// place for renameio's temporary sibling file, even on a fresh
// DataDir that nothing has written to yet.
func New(path string) *Store {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return &Store{path: path}
}

// Load reads the persisted document. A missing file starts the store
// empty and logs a warning (spec §6); a present-but-unparseable file
// is fatal.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithComponent("store").Warn().Str("path", s.path).Msg("reservation document missing, starting empty")
			s.mu.Lock()
			s.list = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	var list []reservation.Reservation
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFatal, err)
	}

	sort.Stable(reservation.ByStartAt(list))

	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	return nil
}

// Save atomically overwrites the document with the current list.
func (s *Store) Save() error {
	s.mu.RLock()
	list := make([]reservation.Reservation, len(s.list))
	copy(list, s.list)
	s.mu.RUnlock()

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal reservations: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending reservation file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write reservation data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace reservation file: %w", err)
	}
	return nil
}

// Replace installs a new reservation list by reference, sorted
// ascending by startAt (spec §3 invariant 4). Callers (the planner)
// are responsible for holding the single-writer guard around this
// plus the following Save.
func (s *Store) Replace(list []reservation.Reservation) {
	sorted := make([]reservation.Reservation, len(list))
	copy(sorted, list)
	sort.Stable(reservation.ByStartAt(sorted))

	s.mu.Lock()
	s.list = sorted
	s.mu.Unlock()
}

// All returns the filtered readers' common slicing semantics: if
// limit is nil, the whole sequence; otherwise sequence[offset:offset+limit].
func (s *Store) All(limit, offset *int) ([]reservation.Reservation, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slice(s.list, limit, offset)
}

// Plain returns reservations that are neither skipped nor conflicted.
func (s *Store) Plain(limit, offset *int) ([]reservation.Reservation, int) {
	return s.filtered(limit, offset, func(r reservation.Reservation) bool {
		return !r.IsSkip && !r.IsConflict
	})
}

// Conflicts returns reservations currently marked IsConflict.
func (s *Store) Conflicts(limit, offset *int) ([]reservation.Reservation, int) {
	return s.filtered(limit, offset, func(r reservation.Reservation) bool {
		return r.IsConflict
	})
}

// Skips returns reservations currently marked IsSkip.
func (s *Store) Skips(limit, offset *int) ([]reservation.Reservation, int) {
	return s.filtered(limit, offset, func(r reservation.Reservation) bool {
		return r.IsSkip
	})
}

// ByProgramID returns the reservation for programID, if any.
func (s *Store) ByProgramID(id int64) (reservation.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.list {
		if r.Program.ID == id {
			return r, true
		}
	}
	return reservation.Reservation{}, false
}

// MaxManualID returns the highest ManualID currently present, used by
// the planner to derive a monotonic id across restarts (spec §9).
func (s *Store) MaxManualID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, r := range s.list {
		if r.Origin == reservation.OriginManual && r.ManualID > max {
			max = r.ManualID
		}
	}
	return max
}

func (s *Store) filtered(limit, offset *int, keep func(reservation.Reservation) bool) ([]reservation.Reservation, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]reservation.Reservation, 0, len(s.list))
	for _, r := range s.list {
		if keep(r) {
			matched = append(matched, r)
		}
	}
	return slice(matched, limit, offset)
}

func slice(list []reservation.Reservation, limit, offset *int) ([]reservation.Reservation, int) {
	total := len(list)
	out := make([]reservation.Reservation, len(list))
	copy(out, list)

	if limit == nil {
		return out, total
	}

	off := 0
	if offset != nil {
		off = *offset
	}
	if off > len(out) {
		off = len(out)
	}
	end := off + *limit
	if end > len(out) {
		end = len(out)
	}
	return out[off:end], total
}
