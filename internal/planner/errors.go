// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package planner implements the planner façade (spec §4.E): the
// public mutating/query operations, the single-writer guard, and the
// orchestration of the catalogue, rule store, resolver, reservation
// store, and IPC bus collaborators.
package planner

import "errors"

// Error kinds from spec §6/§7. Names are stable across language
// targets; callers should use errors.Is.
var (
	ErrAlreadyRunning      = errors.New("planner: already running")
	ErrProgramNotFound     = errors.New("planner: program not found")
	ErrAlreadyReserved     = errors.New("planner: program already reserved")
	ErrConflict            = errors.New("planner: program would conflict")
	ErrInvalidEncodeOption = errors.New("planner: invalid encode option")
	ErrPersistenceFatal    = errors.New("planner: persistence fatal")
)
