package analyzer

import (
	"slices"

	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/history"
)

// Analyze filters history entries and computes aggregated summary statistics.
func Analyze(entries []history.Entry, cfg AnalyzerConfig) *AnalysisResult {
	filtered := Filter(entries, cfg)

	return &AnalysisResult{
		Entries: filtered,
		Summary: Summarize(filtered, len(entries)),
	}
}

// Filter returns the entries matching every predicate in cfg, in log order.
func Filter(entries []history.Entry, cfg AnalyzerConfig) []history.Entry {
	filtered := make([]history.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, cfg) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func matches(e history.Entry, cfg AnalyzerConfig) bool {
	if len(cfg.Providers) > 0 && !slices.Contains(cfg.Providers, e.Provider) {
		return false
	}
	if e.Pages < cfg.MinPages {
		return false
	}
	if cfg.MaxPages > 0 && e.Pages > cfg.MaxPages {
		return false
	}
	if e.Total < cfg.MinCost {
		return false
	}
	if cfg.MaxCost > 0 && e.Total > cfg.MaxCost {
		return false
	}
	return true
}

// Summarize computes totals and per-provider averages over entries.
func Summarize(entries []history.Entry, scanned int) Summary {
	summary := Summary{
		TotalEntriesScanned: scanned,
		TotalEstimates:      len(entries),
		ByProvider:          make(map[cost.Provider]ProviderStats),
	}

	for _, e := range entries {
		summary.TotalSpend += e.Total
		summary.TotalPages += e.Pages

		stats := summary.ByProvider[e.Provider]
		stats.Count++
		stats.Total += e.Total
		summary.ByProvider[e.Provider] = stats
	}

	for p, stats := range summary.ByProvider {
		stats.Average = stats.Total / float64(stats.Count)
		summary.ByProvider[p] = stats
	}

	return summary
}
