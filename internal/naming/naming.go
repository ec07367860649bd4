// Package naming derives the counter and histogram identifiers for a woven
// function. Both names always share a stem: either the explicit base from the
// directive or the function's declaration path joined with underscores.
//
// The _total / _duration_seconds suffixes are a fixed external contract;
// downstream dashboards and alerts are built against them. Validity of the
// resulting token for a particular backend is deliberately not checked here.
package naming

import "strings"

const (
	counterSuffix   = "_total"
	histogramSuffix = "_duration_seconds"
)

// Names holds the two metric identifiers for one woven function.
type Names struct {
	Counter   string
	Histogram string
}

// Derive computes the metric names from an optional explicit base and the
// function's declaration path. Derivation happens once per function, at weave
// time; the woven source embeds the results as string constants.
func Derive(explicitBase string, declPath []string) Names {
	base := explicitBase
	if base == "" {
		base = strings.Join(declPath, "_")
	}
	return Names{
		Counter:   base + counterSuffix,
		Histogram: base + histogramSuffix,
	}
}

// DeclPath splits a package import path into declaration-path segments and
// appends the optional receiver and function names. Both '/' and '.' act as
// path separators (Go's analog of '::'); no other characters are escaped.
func DeclPath(pkgPath, receiver, funcName string) []string {
	segs := strings.FieldsFunc(pkgPath, func(r rune) bool {
		return r == '/' || r == '.'
	})
	if receiver != "" {
		segs = append(segs, receiver)
	}
	return append(segs, funcName)
}
