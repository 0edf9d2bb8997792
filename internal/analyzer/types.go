package analyzer

import (
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/history"
)

// ProviderStats aggregates the estimates logged for one provider.
type ProviderStats struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// Summary holds aggregated statistics about logged estimates.
type Summary struct {
	TotalEntriesScanned int                             `json:"total_entries_scanned"`
	TotalEstimates      int                             `json:"total_estimates"`
	TotalSpend          float64                         `json:"total_spend"`
	TotalPages          int                             `json:"total_pages"`
	ByProvider          map[cost.Provider]ProviderStats `json:"by_provider"`
}

// AnalysisResult holds filtered entries and computed summary.
type AnalysisResult struct {
	Entries []history.Entry `json:"entries"`
	Summary Summary         `json:"summary"`
}

// AnalyzerConfig controls which history entries are kept. Bounds are
// inclusive; a zero upper bound means unbounded and an empty provider set
// means every provider.
type AnalyzerConfig struct {
	Providers []cost.Provider
	MinPages  int
	MaxPages  int
	MinCost   float64
	MaxCost   float64
}
