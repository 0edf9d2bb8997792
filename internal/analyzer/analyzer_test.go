package analyzer

import (
	"testing"

	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/history"
)

func sampleHistory() []history.Entry {
	return []history.Entry{
		{Pages: 1000, Provider: cost.ProviderS3, Total: 103.55},
		{Pages: 5000, Provider: cost.ProviderGCS, Total: 300.00},
		{Pages: 200, Provider: cost.ProviderAzure, Total: 50.00},
		{Pages: 8000, Provider: cost.ProviderS3, Total: 500.45},
	}
}

func TestAnalyzeFiltersByProvider(t *testing.T) {
	analysis := Analyze(sampleHistory(), AnalyzerConfig{Providers: []cost.Provider{cost.ProviderS3}})

	if analysis.Summary.TotalEstimates != 2 {
		t.Errorf("TotalEstimates = %d, want 2", analysis.Summary.TotalEstimates)
	}
	if analysis.Summary.TotalEntriesScanned != 4 {
		t.Errorf("TotalEntriesScanned = %d, want 4", analysis.Summary.TotalEntriesScanned)
	}
	for _, e := range analysis.Entries {
		if e.Provider != cost.ProviderS3 {
			t.Errorf("unexpected provider %s", e.Provider)
		}
	}
}

func TestFilterRanges(t *testing.T) {
	tests := []struct {
		name string
		cfg  AnalyzerConfig
		want []int
	}{
		{"no predicates", AnalyzerConfig{}, []int{1000, 5000, 200, 8000}},
		{"min pages inclusive", AnalyzerConfig{MinPages: 1000}, []int{1000, 5000, 8000}},
		{"page window", AnalyzerConfig{MinPages: 500, MaxPages: 5000}, []int{1000, 5000}},
		{"cost window inclusive", AnalyzerConfig{MinCost: 50, MaxCost: 300}, []int{1000, 5000, 200}},
		{"cost floor", AnalyzerConfig{MinCost: 400}, []int{8000}},
		{"providers and pages", AnalyzerConfig{Providers: []cost.Provider{cost.ProviderGCS, cost.ProviderAzure}, MaxPages: 1000}, []int{200}},
		{"nothing matches", AnalyzerConfig{MinCost: 1000}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleHistory(), tt.cfg)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() returned %d entries, want %d", len(got), len(tt.want))
			}
			gotPages := make(map[int]bool, len(got))
			for _, e := range got {
				gotPages[e.Pages] = true
			}
			for _, p := range tt.want {
				if !gotPages[p] {
					t.Errorf("entry with %d pages missing", p)
				}
			}
		})
	}
}

func TestFilterKeepsLogOrder(t *testing.T) {
	got := Filter(sampleHistory(), AnalyzerConfig{MinPages: 1000})
	want := []int{1000, 5000, 8000}
	for i, e := range got {
		if e.Pages != want[i] {
			t.Errorf("entry %d pages = %d, want %d", i, e.Pages, want[i])
		}
	}
}

func TestSummarizeByProvider(t *testing.T) {
	s := Summarize(sampleHistory(), 4)

	if s.TotalPages != 14200 {
		t.Errorf("TotalPages = %d, want 14200", s.TotalPages)
	}
	s3 := s.ByProvider[cost.ProviderS3]
	if s3.Count != 2 {
		t.Errorf("S3 count = %d, want 2", s3.Count)
	}
	if cost.Round2(s3.Average) != 302 {
		t.Errorf("S3 average = %v, want 302", s3.Average)
	}
	if s.ByProvider[cost.ProviderAzure].Average != 50 {
		t.Errorf("Azure average = %v, want 50", s.ByProvider[cost.ProviderAzure].Average)
	}
	if cost.Round2(s.TotalSpend) != 954 {
		t.Errorf("TotalSpend = %v, want 954", s.TotalSpend)
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	analysis := Analyze(nil, AnalyzerConfig{})

	if analysis.Summary.TotalEstimates != 0 {
		t.Errorf("TotalEstimates = %d, want 0", analysis.Summary.TotalEstimates)
	}
	if analysis.Summary.TotalSpend != 0 {
		t.Errorf("TotalSpend = %f, want 0", analysis.Summary.TotalSpend)
	}
	if len(analysis.Summary.ByProvider) != 0 {
		t.Errorf("ByProvider should be empty, got %v", analysis.Summary.ByProvider)
	}
}
