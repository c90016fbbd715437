package entity

import (
	"slices"
	"time"

	"github.com/joseph-ayodele/labreport-import/constants"
)

// ExtractionResult is the outcome of one lab-report import. It is created per
// upload and handed to the caller; this subsystem never persists it.
type ExtractionResult struct {
	ReportDate        time.Time                          `json:"report_date"`
	Values            map[constants.CanonicalKey]float64 `json:"values"`
	UnrecognizedItems []string                           `json:"unrecognized_items"`
	Strategy          constants.Strategy                 `json:"strategy"`
}

// NewExtractionResult returns an empty result ready for accumulation.
func NewExtractionResult() ExtractionResult {
	return ExtractionResult{
		Values:            make(map[constants.CanonicalKey]float64),
		UnrecognizedItems: []string{},
		Strategy:          constants.StrategyNone,
	}
}

// Has reports whether key already holds an accepted value.
func (r *ExtractionResult) Has(key constants.CanonicalKey) bool {
	_, ok := r.Values[key]
	return ok
}

// Accept stores v under key unless the key is already resolved.
// The first accepted value wins; Accept reports whether it wrote.
func (r *ExtractionResult) Accept(key constants.CanonicalKey, v float64) bool {
	if r.Values == nil {
		r.Values = make(map[constants.CanonicalKey]float64)
	}
	if _, ok := r.Values[key]; ok {
		return false
	}
	r.Values[key] = v
	return true
}

// AddUnrecognized appends a diagnostic entry, skipping exact duplicates.
func (r *ExtractionResult) AddUnrecognized(msg string) {
	if msg == "" || slices.Contains(r.UnrecognizedItems, msg) {
		return
	}
	r.UnrecognizedItems = append(r.UnrecognizedItems, msg)
}

// MergeDiagnostics appends the diagnostics of other in order.
func (r *ExtractionResult) MergeDiagnostics(other ExtractionResult) {
	for _, msg := range other.UnrecognizedItems {
		r.AddUnrecognized(msg)
	}
}

// HasValues reports whether at least one value was accepted.
func (r *ExtractionResult) HasValues() bool {
	return len(r.Values) > 0
}
