// Package reconcile drives concurrent verification of roster rows against
// the registry: it pre-loads an institution's teams and rosters once,
// fans row tasks out over a bounded worker pool, and aggregates one
// result per row in original order.
package reconcile

import (
	"meikan/internal/registry"
	"meikan/internal/roster"
)

// Status is the verification outcome for one roster row.
type Status string

const (
	// StatusMatch is an exact name match against a registry member.
	StatusMatch Status = "match"
	// StatusPartialMatch is the best candidate clearing the minimum
	// similarity threshold without being exact.
	StatusPartialMatch Status = "partial_match"
	// StatusNotFound means no registry member cleared the threshold.
	StatusNotFound Status = "not_found"
	// StatusMissingData means the row had no resolvable player name.
	StatusMissingData Status = "missing_data"
	// StatusError records a row-scoped registry or parse failure.
	StatusError Status = "error"
)

// Result is the verification outcome of one roster row. Immutable once
// produced.
type Result struct {
	RowIndex    int               `json:"row_index"`
	Status      Status            `json:"status"`
	Similarity  float64           `json:"similarity"`
	Member      *registry.Member  `json:"member,omitempty"`
	Corrections map[string]string `json:"corrections,omitempty"`
	Message     string            `json:"message"`
}

// RunResult aggregates a completed reconciliation run.
type RunResult struct {
	Results   []Result
	Corrected roster.Dataset
	Summary   map[Status]int
}

func summarize(results []Result) map[Status]int {
	summary := make(map[Status]int)
	for _, result := range results {
		summary[result.Status]++
	}
	return summary
}
