// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalogue

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var foldCaser = cases.Fold()

// foldCase normalizes s for case-insensitive keyword matching across
// scripts (spec §4.C's case-sensitivity flag governs whether a caller
// uses this at all; MemoryClient always folds for its "contains"
// semantics, matching the simplest reading of the catalogue contract).
func foldCase(s string) string {
	return foldCaser.String(s)
}

// titleCaser is unused by matching but kept available for callers
// that render program names for display/logging in the station's
// configured language.
var titleCaser = cases.Title(language.Und)
