// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalogue implements the rule-to-query adapter (spec §4.C)
// and the concrete catalogue collaborator (spec §6, SPEC_FULL.md §4.F):
// the external program catalogue a rule is matched against.
package catalogue

import "github.com/reservesd/reservesd/internal/reservation"

// SearchOption is the query object consumed by the catalogue's
// findByRule (spec §4.C). Week is always present; every other field
// is copied from the source Rule iff it was explicitly set there —
// absence and explicit null are indistinguishable downstream, so
// these are pointers rather than zero-valued fields.
type SearchOption struct {
	Week int // bitmask of weekdays, always present

	Keyword         *string
	IgnoreKeyword   *string
	CaseSensitive   *bool
	Regex           *bool
	Title           *bool
	Description     *bool
	Extended        *bool
	GR              *bool
	BS              *bool
	CS              *bool
	Sky             *bool
	Station         *string
	GenreLevel1     *string
	GenreLevel2     *string
	StartTime       *string
	TimeRange       *string
	IsFree          *bool
	DurationMinMin  *int
	DurationMinMax  *int
}

// RuleOptionInput is the subset of a Rule's fields the adapter
// projects into reservation.RuleOption.
type RuleOptionInput struct {
	Enable         bool
	Directory      *string
	RecordedFormat *string
}

// EncodeOptionInput is the subset of a Rule's fields the adapter
// projects into reservation.EncodeOption. Returned only when DelTs is
// non-nil (spec §4.C).
type EncodeOptionInput struct {
	DelTs *bool
	Pair1 *reservation.EncodeOptionPair
	Pair2 *reservation.EncodeOptionPair
	Pair3 *reservation.EncodeOptionPair
}

// ToRuleOption projects in into a reservation.RuleOption, carrying
// Directory/RecordedFormat only when set (spec §4.C).
func ToRuleOption(in RuleOptionInput) reservation.RuleOption {
	out := reservation.RuleOption{Enable: in.Enable}
	if in.Directory != nil {
		out.Directory = *in.Directory
	}
	if in.RecordedFormat != nil {
		out.RecordedFormat = *in.RecordedFormat
	}
	return out
}

// ToEncodeOption projects in into a *reservation.EncodeOption,
// returning nil when DelTs was never set (spec §4.C: the encode
// option exists only when the source carries a non-null DelTs).
func ToEncodeOption(in EncodeOptionInput) *reservation.EncodeOption {
	if in.DelTs == nil {
		return nil
	}
	out := &reservation.EncodeOption{DelTs: *in.DelTs}
	for _, pair := range []*reservation.EncodeOptionPair{in.Pair1, in.Pair2, in.Pair3} {
		if pair != nil {
			out.Pairs = append(out.Pairs, *pair)
		}
	}
	return out
}
