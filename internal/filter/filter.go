package filter

import (
	"time"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #region spec
// All is the wildcard value for Category, DecisionBand and Language.
const All = "all"

// Spec selects a subset of enforcement records. Start and End are inclusive
// bounds; an empty or unparseable bound means unbounded.
type Spec struct {
	Start           string     `json:"start" yaml:"start"`
	End             string     `json:"end" yaml:"end"`
	Category        string     `json:"category" yaml:"category"`
	DecisionBand    string     `json:"band" yaml:"band"`
	Language        string     `json:"language" yaml:"language"`
	ConfidenceRange [2]float64 `json:"confidence" yaml:"confidence"`
}

// Default returns the dashboard's initial filter over the bundled sample window.
func Default() Spec {
	return Spec{
		Start:           "2025-08-07",
		End:             "2025-08-11",
		Category:        All,
		DecisionBand:    All,
		Language:        All,
		ConfidenceRange: [2]float64{0.5, 1.0},
	}
}

// Everything returns a filter that keeps every valid record.
func Everything() Spec {
	return Spec{
		Category:        All,
		DecisionBand:    All,
		Language:        All,
		ConfidenceRange: [2]float64{0, 1},
	}
}

// #endregion spec

// #region apply
// Apply returns the records matching spec in their original order. The input
// slice is not modified.
func Apply(rows []records.Record, spec Spec) []records.Record {
	start, hasStart := parseBound(spec.Start)
	end, hasEnd := parseBound(spec.End)

	out := make([]records.Record, 0, len(rows))
	for _, r := range rows {
		if hasStart && r.Timestamp.Before(start) {
			continue
		}
		if hasEnd && r.Timestamp.After(end) {
			continue
		}
		if !matches(spec.Category, r.PolicyCategory) {
			continue
		}
		if !matches(spec.DecisionBand, string(r.Decision)) {
			continue
		}
		if !matches(spec.Language, r.Language) {
			continue
		}
		if r.Confidence < spec.ConfidenceRange[0] || r.Confidence > spec.ConfidenceRange[1] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// #endregion apply

// #region helpers
// matches treats an empty selector like "all" so zero-value specs stay usable.
func matches(selector, value string) bool {
	return selector == "" || selector == All || selector == value
}

// parseBound reads a date ("2006-01-02", UTC midnight) or full timestamp.
func parseBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := records.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// #endregion helpers
