// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rulestore

import (
	"context"

	"github.com/reservesd/reservesd/internal/catalogue"
)

// RuleStore is the rule-store collaborator contract (spec §6),
// satisfied by both Store (SQLite) and MemoryStore.
type RuleStore interface {
	FindAll(ctx context.Context) ([]catalogue.Rule, error)
	FindByID(ctx context.Context, id string) (catalogue.Rule, error)
	Upsert(ctx context.Context, r catalogue.Rule) error
	Delete(ctx context.Context, id string) error
}

var (
	_ RuleStore = (*Store)(nil)
	_ RuleStore = (*MemoryStore)(nil)
)
