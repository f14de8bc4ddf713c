// Package report extracts physics quantities from the free-form text
// reports of the external calculators and re-encodes them as SLHA blocks.
// Parsers operate purely on strings: they never log, and they surface
// duplicate-match conditions as warning values for the caller to report.
package report

import (
	"fmt"

	"slhagen/internal/slha"
)

// num matches a floating-point number with an optional exponent in
// e/E/d/D notation, as printed by micrOMEGAs.
const num = `([-+]?(?:\d*\.\d+|\d+)(?:[eEdD][-+]?\d+)?)`

// numExp matches a floating-point number with a mandatory e/E exponent,
// as printed by GM2Calc.
const numExp = `([-+]?(?:\d*\.\d+|\d+)[eE][-+]?\d+)`

// firstMatch enforces the exactly-one-match contract on a pattern's
// findings: zero matches is an error naming the missing field, more than
// one yields a warning and the first match in document order wins.
func firstMatch(title string, matches [][]string) ([]string, string, error) {
	if len(matches) == 0 {
		return nil, "", fmt.Errorf("cannot find %s in calculator output", title)
	}
	var warning string
	if len(matches) > 1 {
		warning = fmt.Sprintf("multiple %s found in output; first is used", title)
	}
	return matches[0], warning, nil
}

// parseNum converts a matched numeric token, normalizing Fortran-style
// d/D exponent markers.
func parseNum(field, token string) (float64, error) {
	v, err := slha.ParseFloat(token)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}
