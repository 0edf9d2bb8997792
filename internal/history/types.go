package history

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/archivecost/internal/cost"
)

// ErrHistoryWrite wraps any failure to append to a durable log. The estimate
// it describes was still computed.
var ErrHistoryWrite = errors.New("history write failed")

// TimestampLayout is the timestamp format of both logs.
const TimestampLayout = "2006-01-02 15:04:05"

// Component names written to the component log, in order.
const (
	ComponentStorage  = "Storage"
	ComponentOCR      = "OCR Processing"
	ComponentManpower = "Manpower"
	ComponentScanning = "Scanning"
	ComponentTotal    = "Total Estimated"
)

// Entry is one row of the summary log. Entries are never modified after
// they are appended.
type Entry struct {
	RunID           string        `json:"run_id,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
	Pages           int           `json:"pages"`
	SizeGB          float64       `json:"size_gb"`
	Provider        cost.Provider `json:"provider"`
	RetentionMonths int           `json:"retention_months"`
	Total           float64       `json:"total"`
}

// ComponentRecord is one cost component of one run.
type ComponentRecord struct {
	RunID     string        `json:"run_id,omitempty"`
	Component string        `json:"component"`
	Amount    float64       `json:"amount"`
	Provider  cost.Provider `json:"provider"`
	Timestamp time.Time     `json:"timestamp"`
}

// Store is an append-only estimate log. There is no update or delete:
// corrections are new entries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	AppendComponents(ctx context.Context, records []ComponentRecord) error
	LoadAll(ctx context.Context) ([]Entry, error)
	LoadAllComponents(ctx context.Context) ([]ComponentRecord, error)
	Close() error
}

// NewEntry builds the summary row for a computed breakdown.
func NewEntry(runID string, ts time.Time, in cost.Inputs, b cost.Breakdown) Entry {
	return Entry{
		RunID:           runID,
		Timestamp:       ts,
		Pages:           in.Pages,
		SizeGB:          in.SizeGB,
		Provider:        b.Provider,
		RetentionMonths: in.RetentionMonths,
		Total:           b.Total,
	}
}

// BuildComponents flattens a breakdown into component rows tagged with the
// same run, provider and timestamp as its summary entry. "Total Estimated"
// is the subtotal; the license cost is reported separately.
func BuildComponents(runID string, ts time.Time, b cost.Breakdown) []ComponentRecord {
	parts := []struct {
		name   string
		amount float64
	}{
		{ComponentStorage, b.Storage},
		{ComponentOCR, b.OCR},
		{ComponentManpower, b.Manpower},
		{ComponentScanning, b.Scanning},
		{ComponentTotal, b.Subtotal},
	}

	records := make([]ComponentRecord, 0, len(parts))
	for _, p := range parts {
		records = append(records, ComponentRecord{
			RunID:     runID,
			Component: p.name,
			Amount:    p.amount,
			Provider:  b.Provider,
			Timestamp: ts,
		})
	}
	return records
}
