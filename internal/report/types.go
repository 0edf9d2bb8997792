package report

import (
	"io"
	"time"

	"github.com/ppiankov/archivecost/internal/analyzer"
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/estimator"
	"github.com/ppiankov/archivecost/internal/history"
)

// Reporter is the interface for output formatters.
type Reporter interface {
	Generate(data Data) error
}

// Data holds all information needed to generate a report. Exactly the
// sections a command produced are set.
type Data struct {
	Tool       string                    `json:"tool"`
	Version    string                    `json:"version"`
	Timestamp  time.Time                 `json:"timestamp"`
	Config     ReportConfig              `json:"config"`
	Estimate   *estimator.Result         `json:"estimate,omitempty"`
	Prices     []PriceRow                `json:"prices,omitempty"`
	History    *analyzer.AnalysisResult  `json:"history,omitempty"`
	Components []history.ComponentRecord `json:"components,omitempty"`
	Errors     []string                  `json:"errors,omitempty"`
}

// PriceRow is one resolved storage rate.
type PriceRow struct {
	Provider cost.Provider    `json:"provider"`
	Region   string           `json:"region"`
	Price    cost.PriceResult `json:"price"`
}

// ReportConfig captures the settings the report was produced with.
type ReportConfig struct {
	Provider        string `json:"provider,omitempty"`
	Region          string `json:"region,omitempty"`
	RetentionMonths int    `json:"retention_months,omitempty"`
	Effort          string `json:"effort,omitempty"`
	HistoryBackend  string `json:"history_backend,omitempty"`
}

// TextReporter generates human-readable terminal output.
type TextReporter struct {
	Writer io.Writer
}

// JSONReporter generates archivecost/v1 envelope JSON output.
type JSONReporter struct {
	Writer io.Writer
}

// CSVReporter generates CSV tables suitable for spreadsheets.
type CSVReporter struct {
	Writer io.Writer
}
