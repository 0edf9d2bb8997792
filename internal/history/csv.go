package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ppiankov/archivecost/internal/cost"
)

// Log file names inside the history directory.
const (
	HistoryFile    = "master_history.csv"
	ComponentsFile = "master_cost_breakdown.csv"
)

var (
	historyHeader    = []string{"Timestamp", "Pages", "Size (GB)", "Provider", "Retention (mo)", "Total ($)"}
	componentsHeader = []string{"Cost Component", "Amount ($)", "Provider", "Timestamp"}
)

// CSVStore keeps both logs as CSV files in one directory. Writes from one
// process are serialized, and each append lands as a single write on an
// O_APPEND handle so rows never interleave.
type CSVStore struct {
	mu             sync.Mutex
	historyPath    string
	componentsPath string
}

// NewCSVStore creates dir if needed and returns a store rooted there.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory %s: %w", dir, err)
	}
	return &CSVStore{
		historyPath:    filepath.Join(dir, HistoryFile),
		componentsPath: filepath.Join(dir, ComponentsFile),
	}, nil
}

// Append adds one summary row.
func (s *CSVStore) Append(_ context.Context, e Entry) error {
	row := []string{
		e.Timestamp.Format(TimestampLayout),
		strconv.Itoa(e.Pages),
		formatAmount(e.SizeGB),
		string(e.Provider),
		strconv.Itoa(e.RetentionMonths),
		formatAmount(e.Total),
	}
	return s.appendRows(s.historyPath, historyHeader, [][]string{row})
}

// AppendComponents adds all component rows of one run in a single write.
func (s *CSVStore) AppendComponents(_ context.Context, records []ComponentRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Component,
			formatAmount(r.Amount),
			string(r.Provider),
			r.Timestamp.Format(TimestampLayout),
		})
	}
	return s.appendRows(s.componentsPath, componentsHeader, rows)
}

func (s *CSVStore) appendRows(path string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrHistoryWrite, path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrHistoryWrite, path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(header)
	}
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrHistoryWrite, path, err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrHistoryWrite, path, err)
	}
	return nil
}

// LoadAll returns every summary row in append order. A missing log is empty.
func (s *CSVStore) LoadAll(_ context.Context) ([]Entry, error) {
	rows, err := s.readRows(s.historyPath, historyHeader)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		e, err := parseEntry(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.historyPath, i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadAllComponents returns every component row in append order.
func (s *CSVStore) LoadAllComponents(_ context.Context) ([]ComponentRecord, error) {
	rows, err := s.readRows(s.componentsPath, componentsHeader)
	if err != nil {
		return nil, err
	}

	records := make([]ComponentRecord, 0, len(rows))
	for i, row := range rows {
		r, err := parseComponent(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.componentsPath, i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Close implements Store.
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) readRows(path string, header []string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("unexpected header in %s: %v", path, got)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func parseEntry(row []string) (Entry, error) {
	ts, err := parseTimestamp(row[0])
	if err != nil {
		return Entry{}, err
	}
	pages, err := strconv.Atoi(row[1])
	if err != nil {
		return Entry{}, fmt.Errorf("parse pages %q: %w", row[1], err)
	}
	size, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parse size %q: %w", row[2], err)
	}
	retention, err := strconv.Atoi(row[4])
	if err != nil {
		return Entry{}, fmt.Errorf("parse retention %q: %w", row[4], err)
	}
	total, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parse total %q: %w", row[5], err)
	}
	return Entry{
		Timestamp:       ts,
		Pages:           pages,
		SizeGB:          size,
		Provider:        cost.Provider(row[3]),
		RetentionMonths: retention,
		Total:           total,
	}, nil
}

func parseComponent(row []string) (ComponentRecord, error) {
	amount, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return ComponentRecord{}, fmt.Errorf("parse amount %q: %w", row[1], err)
	}
	ts, err := parseTimestamp(row[3])
	if err != nil {
		return ComponentRecord{}, err
	}
	return ComponentRecord{
		Component: row[0],
		Amount:    amount,
		Provider:  cost.Provider(row[2]),
		Timestamp: ts,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts, nil
}

// formatAmount writes money and sizes at cent precision, as the logs always have.
func formatAmount(v float64) string {
	return cost.FormatUSD(v)
}
