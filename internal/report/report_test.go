package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/archivecost/internal/analyzer"
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/estimator"
	"github.com/ppiankov/archivecost/internal/history"
)

var sampleTime = time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)

func sampleEstimate() *estimator.Result {
	in := cost.DefaultInputs()
	in.Pages = 1000
	in.SizeGB = 2
	in.RetentionMonths = 12
	in.StorageCostPerGB = 0.023
	in.LicenseCost = 50

	s3 := cost.Breakdown{
		Provider: cost.ProviderS3, Region: "us-east",
		Price:   cost.PriceResult{Value: 0.023, Source: cost.SourceFallback},
		Storage: 0.552, OCR: 1, Scanning: 2, Manpower: 50, License: 50,
		Subtotal: 53.552, Total: 103.552,
	}
	gcs := cost.Breakdown{
		Provider: cost.ProviderGCS, Region: "us-east",
		Price:   cost.PriceResult{Value: 0.026, Source: cost.SourceLive},
		Storage: 0.624, OCR: 1, Scanning: 2, Manpower: 50, License: 40,
		Subtotal: 53.624, Total: 93.624,
	}
	azure := gcs
	azure.Provider = cost.ProviderAzure

	return &estimator.Result{
		RunID:      "6a1f0c2e-0000-4000-8000-000000000001",
		Timestamp:  sampleTime,
		Inputs:     in,
		Selected:   s3,
		Comparison: []cost.Breakdown{s3, gcs, azure},
		Recommendation: &cost.Recommendation{
			Providers: []cost.Provider{cost.ProviderGCS, cost.ProviderAzure},
			Total:     93.62,
		},
	}
}

func sampleHistory() *analyzer.AnalysisResult {
	entries := []history.Entry{
		{Timestamp: sampleTime, Pages: 1000, SizeGB: 2, Provider: cost.ProviderS3, RetentionMonths: 12, Total: 103.25},
		{Timestamp: sampleTime, Pages: 500, SizeGB: 0.17, Provider: cost.ProviderGCS, RetentionMonths: 6, Total: 66.5},
	}
	return analyzer.Analyze(entries, analyzer.AnalyzerConfig{})
}

func sampleData() Data {
	return Data{
		Tool:      "archivecost",
		Version:   "0.1.0",
		Timestamp: sampleTime,
		Config: ReportConfig{
			Provider:        "Amazon S3",
			Region:          "us-east",
			RetentionMonths: 12,
			Effort:          "Medium",
		},
		Estimate: sampleEstimate(),
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &JSONReporter{Writer: &buf}

	if err := r.Generate(sampleData()); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"$schema": "archivecost/v1"`) {
		t.Error("missing archivecost/v1 schema")
	}
	if !strings.Contains(output, `"tool": "archivecost"`) {
		t.Error("missing tool name")
	}
	if !strings.Contains(output, `"fallback": true`) {
		t.Error("missing fallback flag")
	}
	if !strings.Contains(output, `"recorded": true`) {
		t.Error("missing recorded flag")
	}

	var parsed struct {
		FallbackUsed []string `json:"fallback_used"`
		Estimate     struct {
			Selected struct {
				Total float64 `json:"total"`
			} `json:"selected"`
			Recommendation struct {
				Providers []string `json:"providers"`
			} `json:"recommendation"`
		} `json:"estimate"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Estimate.Selected.Total != 103.552 {
		t.Errorf("selected total = %v, want 103.552", parsed.Estimate.Selected.Total)
	}
	if len(parsed.Estimate.Recommendation.Providers) != 2 {
		t.Errorf("recommendation providers = %v", parsed.Estimate.Recommendation.Providers)
	}
	if len(parsed.FallbackUsed) != 1 || parsed.FallbackUsed[0] != string(cost.ProviderS3) {
		t.Errorf("fallback_used = %v, want [Amazon S3]", parsed.FallbackUsed)
	}
}

func TestJSONReporterUnrecorded(t *testing.T) {
	data := sampleData()
	data.Estimate.RecordErr = history.ErrHistoryWrite

	var buf bytes.Buffer
	if err := (&JSONReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"recorded": false`) {
		t.Error("expected recorded=false")
	}
}

func TestJSONReporterHistoryOnly(t *testing.T) {
	data := sampleData()
	data.Estimate = nil
	data.History = sampleHistory()

	var buf bytes.Buffer
	if err := (&JSONReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := parsed["estimate"]; ok {
		t.Error("estimate section should be omitted")
	}
	if _, ok := parsed["recorded"]; ok {
		t.Error("recorded flag should be omitted without an estimate")
	}
	if _, ok := parsed["history"]; !ok {
		t.Error("missing history section")
	}
}

func TestTextReporterEstimate(t *testing.T) {
	var buf bytes.Buffer
	r := &TextReporter{Writer: &buf}

	if err := r.Generate(sampleData()); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"archivecost",
		"Amazon S3 (us-east)",
		"(fallback)",
		"$103.55",
		"$53.55",
		"Provider comparison",
		"Recommended (tie): Google Cloud Storage, Microsoft Azure at $93.62",
		"Using fallback storage rate for Amazon S3.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "not recorded") {
		t.Error("recorded estimate should not carry the unrecorded notice")
	}
}

func TestTextReporterSingleRecommendation(t *testing.T) {
	data := sampleData()
	data.Estimate.Recommendation = &cost.Recommendation{Providers: []cost.Provider{cost.ProviderAzure}, Total: 90}

	var buf bytes.Buffer
	if err := (&TextReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Recommended: Microsoft Azure at $90.00") {
		t.Errorf("unexpected recommendation line:\n%s", buf.String())
	}
}

func TestTextReporterUnrecorded(t *testing.T) {
	data := sampleData()
	data.Estimate.RecordErr = errors.New("disk full")

	var buf bytes.Buffer
	if err := (&TextReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "computed but not recorded") {
		t.Error("missing unrecorded notice")
	}
}

func TestTextReporterHistory(t *testing.T) {
	data := sampleData()
	data.Estimate = nil
	data.History = sampleHistory()

	var buf bytes.Buffer
	if err := (&TextReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Found 2 estimates totalling $169.75") {
		t.Errorf("missing history headline:\n%s", output)
	}
	if !strings.Contains(output, "2026-02-28 12:00:00") {
		t.Error("missing timestamp column")
	}
	if !strings.Contains(output, "Amazon S3=1 (avg $103.25)") {
		t.Errorf("missing per-provider summary:\n%s", output)
	}
}

func TestTextReporterNoHistory(t *testing.T) {
	data := sampleData()
	data.Estimate = nil
	data.History = analyzer.Analyze(nil, analyzer.AnalyzerConfig{})

	var buf bytes.Buffer
	if err := (&TextReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No estimates match.") {
		t.Error("missing empty history message")
	}
}

func TestTextReporterWithErrors(t *testing.T) {
	data := sampleData()
	data.Errors = []string{"history write failed: disk full"}

	var buf bytes.Buffer
	if err := (&TextReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Warnings (1)") {
		t.Error("missing warnings section")
	}
}

func TestTextReporterPricesAndComponents(t *testing.T) {
	data := Data{
		Prices: []PriceRow{
			{Provider: cost.ProviderGCS, Region: "eu", Price: cost.PriceResult{Value: 0.026, Source: cost.SourceLive}},
		},
		Components: history.BuildComponents("", sampleTime, sampleEstimate().Selected),
	}

	var buf bytes.Buffer
	if err := (&TextReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	output := buf.String()
	for _, want := range []string{"Storage rates", "$0.0260", "live", "Cost components", "OCR Processing", "Total Estimated"} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output", want)
		}
	}
}

func TestCSVReporterEstimate(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVReporter{Writer: &buf}).Generate(sampleData()); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	// selected header + row, comparison header + 3 rows; blank lines are skipped by the reader
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d: %v", len(records), records)
	}
	if records[1][0] != string(cost.ProviderS3) || records[1][3] != "true" || records[1][9] != "103.55" {
		t.Errorf("unexpected selected row: %v", records[1])
	}
	if records[3][0] != string(cost.ProviderS3) || records[5][0] != string(cost.ProviderAzure) {
		t.Errorf("comparison out of order: %v", records[3:])
	}
}

func TestCSVReporterHistory(t *testing.T) {
	data := Data{History: sampleHistory()}

	var buf bytes.Buffer
	if err := (&CSVReporter{Writer: &buf}).Generate(data); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	want := "Timestamp,Pages,Size (GB),Provider,Retention (mo),Total ($)\n" +
		"2026-02-28 12:00:00,1000,2.00,Amazon S3,12,103.25\n" +
		"2026-02-28 12:00:00,500,0.17,Google Cloud Storage,6,66.50\n"
	if buf.String() != want {
		t.Errorf("CSV output =\n%s\nwant\n%s", buf.String(), want)
	}
}
