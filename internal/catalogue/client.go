// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalogue

import (
	"context"

	"github.com/reservesd/reservesd/internal/reservation"
)

// Client is the catalogue collaborator contract consumed by the
// planner (spec §6): lookup by program id, and lookup by rule query.
type Client interface {
	// FindByID returns the program with id, or an empty slice if it no
	// longer exists in the catalogue.
	FindByID(ctx context.Context, id int64, withExtended bool) ([]reservation.Program, error)
	// FindByRule returns every program matching opt.
	FindByRule(ctx context.Context, opt SearchOption) ([]reservation.Program, error)
}
