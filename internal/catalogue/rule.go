// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalogue

// Rule is a user-defined matching rule as persisted by the rule
// store (spec §6's rule-store collaborator); ToSearchOption projects
// it into the catalogue query triple (spec §4.C).
type Rule struct {
	ID      string
	Enabled bool
	Week    int

	Keyword       *string
	IgnoreKeyword *string
	CaseSensitive *bool
	Regex         *bool
	Title         *bool
	Description   *bool
	Extended      *bool
	GR            *bool
	BS            *bool
	CS            *bool
	Sky           *bool
	Station       *string
	GenreLevel1   *string
	GenreLevel2   *string
	StartTime     *string
	TimeRange     *string
	IsFree        *bool
	DurationMin   *int
	DurationMax   *int

	RuleOptionInput
	EncodeOptionInput
}

// ToSearchOption projects r's matching criteria into a SearchOption,
// copying each optional field iff the rule set it (spec §4.C).
func (r Rule) ToSearchOption() SearchOption {
	return SearchOption{
		Week:           r.Week,
		Keyword:        r.Keyword,
		IgnoreKeyword:  r.IgnoreKeyword,
		CaseSensitive:  r.CaseSensitive,
		Regex:          r.Regex,
		Title:          r.Title,
		Description:    r.Description,
		Extended:       r.Extended,
		GR:             r.GR,
		BS:             r.BS,
		CS:             r.CS,
		Sky:            r.Sky,
		Station:        r.Station,
		GenreLevel1:    r.GenreLevel1,
		GenreLevel2:    r.GenreLevel2,
		StartTime:      r.StartTime,
		TimeRange:      r.TimeRange,
		IsFree:         r.IsFree,
		DurationMinMin: r.DurationMin,
		DurationMinMax: r.DurationMax,
	}
}
