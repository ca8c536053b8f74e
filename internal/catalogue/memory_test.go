// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package catalogue

import (
	"context"
	"testing"

	"github.com/reservesd/reservesd/internal/reservation"
)

func TestMemoryClientFindByID(t *testing.T) {
	c := NewMemoryClient(reservation.Program{ID: 1, Name: "News"})
	got, err := c.FindByID(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected one program, got %+v", got)
	}

	missing, err := c.FindByID(context.Background(), 99, false)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no program for unknown id, got %+v", missing)
	}
}

func TestMemoryClientFindByRuleKeywordCaseFold(t *testing.T) {
	c := NewMemoryClient(
		reservation.Program{ID: 1, Name: "Évening News", ChannelType: reservation.ChannelGR},
		reservation.Program{ID: 2, Name: "Weather", ChannelType: reservation.ChannelGR},
	)
	keyword := "ÉVENING"
	got, err := c.FindByRule(context.Background(), SearchOption{Keyword: &keyword})
	if err != nil {
		t.Fatalf("FindByRule: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected case-folded keyword match, got %+v", got)
	}
}

func TestMemoryClientFindByRuleChannelTypeFilter(t *testing.T) {
	c := NewMemoryClient(
		reservation.Program{ID: 1, ChannelType: reservation.ChannelGR},
		reservation.Program{ID: 2, ChannelType: reservation.ChannelBS},
	)
	gr := true
	got, err := c.FindByRule(context.Background(), SearchOption{GR: &gr})
	if err != nil {
		t.Fatalf("FindByRule: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only GR program, got %+v", got)
	}
}

func TestRuleToSearchOptionCopiesOnlySetFields(t *testing.T) {
	keyword := "drama"
	r := Rule{Week: 5, Keyword: &keyword}
	opt := r.ToSearchOption()
	if opt.Week != 5 {
		t.Fatalf("expected week copied")
	}
	if opt.Keyword == nil || *opt.Keyword != keyword {
		t.Fatalf("expected keyword copied")
	}
	if opt.Station != nil {
		t.Fatalf("expected unset station to remain nil")
	}
}

func TestToEncodeOptionNilWhenDelTsUnset(t *testing.T) {
	if got := ToEncodeOption(EncodeOptionInput{}); got != nil {
		t.Fatalf("expected nil encode option when DelTs unset, got %+v", got)
	}
}

func TestToEncodeOptionCarriesPairsWhenDelTsSet(t *testing.T) {
	delTs := true
	pair := reservation.EncodeOptionPair{Mode: "h264", Directory: "/out"}
	got := ToEncodeOption(EncodeOptionInput{DelTs: &delTs, Pair1: &pair})
	if got == nil {
		t.Fatalf("expected non-nil encode option")
	}
	if len(got.Pairs) != 1 || got.Pairs[0] != pair {
		t.Fatalf("expected pair copied, got %+v", got.Pairs)
	}
}
