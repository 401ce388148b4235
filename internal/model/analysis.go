package model

import "time"

// AnalysisMetadata records, per tenant, the state of the most recent
// pattern discovery run. Incremental discovery uses LastTransaction to
// scope its window to transactions not yet analyzed.
type AnalysisMetadata struct {
	AnalyzedAt           time.Time
	RangeStart           time.Time
	RangeEnd             time.Time
	LastTransaction      time.Time // Most recent transaction date covered by any run
	Tenant               string
	TransactionsAnalyzed int
	PatternsDiscovered   int
}
