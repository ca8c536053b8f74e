// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rulestore

import (
	"context"
	"sync"

	"github.com/reservesd/reservesd/internal/catalogue"
)

// MemoryStore is an in-memory rule store fake for tests and
// local/demo wiring, satisfying the same contract as Store.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[string]catalogue.Rule
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[string]catalogue.Rule)}
}

func (m *MemoryStore) FindAll(_ context.Context) ([]catalogue.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalogue.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (catalogue.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rules[id]
	if !ok {
		return catalogue.Rule{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) Upsert(_ context.Context, r catalogue.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.ID] = r
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, id)
	return nil
}
