package estimator

import (
	"context"
	"errors"

	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/history"
)

// failingStore rejects every append and counts attempts.
type failingStore struct {
	appends int
}

func (f *failingStore) Append(context.Context, history.Entry) error {
	f.appends++
	return errors.New("disk full")
}

func (f *failingStore) AppendComponents(context.Context, []history.ComponentRecord) error {
	f.appends++
	return errors.New("disk full")
}

func (f *failingStore) LoadAll(context.Context) ([]history.Entry, error) { return nil, nil }

func (f *failingStore) LoadAllComponents(context.Context) ([]history.ComponentRecord, error) {
	return nil, nil
}

func (f *failingStore) Close() error { return nil }

// countingSource returns a live rate and counts lookups per provider.
type countingSource struct {
	calls map[cost.Provider]int
}

func (c *countingSource) Price(_ context.Context, p cost.Provider, _ string) cost.PriceResult {
	c.calls[p]++
	return cost.PriceResult{Value: 0.02, Source: cost.SourceLive}
}
