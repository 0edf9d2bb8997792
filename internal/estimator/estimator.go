// Package estimator runs one cost estimate end to end: price and compute the
// selected provider, record it, compare every provider and recommend.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/history"
)

// Request describes one estimate. Inputs carries the processing parameters;
// its storage rate and license cost are filled in per provider.
type Request struct {
	Inputs   cost.Inputs
	Provider cost.Provider
	Region   string

	// StorageOverride replaces the looked-up rate for the selected provider.
	StorageOverride *float64
	// LicenseOverride replaces the license cost for the selected provider.
	LicenseOverride *float64

	SkipCompare bool
}

// Validate rejects inputs no estimate can be made from.
func (r Request) Validate() error {
	if r.Inputs.Pages < 0 {
		return fmt.Errorf("pages must not be negative: %d", r.Inputs.Pages)
	}
	if r.Inputs.SizeGB < 0 {
		return fmt.Errorf("size must not be negative: %v", r.Inputs.SizeGB)
	}
	if r.Inputs.RetentionMonths < 1 {
		return fmt.Errorf("retention must be at least 1 month: %d", r.Inputs.RetentionMonths)
	}
	if r.StorageOverride != nil && *r.StorageOverride < 0 {
		return fmt.Errorf("storage rate must not be negative: %v", *r.StorageOverride)
	}
	if r.LicenseOverride != nil && *r.LicenseOverride < 0 {
		return fmt.Errorf("license cost must not be negative: %v", *r.LicenseOverride)
	}
	if _, err := cost.ParseProvider(string(r.Provider)); err != nil {
		return err
	}
	return nil
}

// Result is the outcome of one run. When RecordErr is set the estimate was
// computed but not recorded.
type Result struct {
	RunID          string               `json:"run_id"`
	Timestamp      time.Time            `json:"timestamp"`
	Inputs         cost.Inputs          `json:"inputs"`
	Selected       cost.Breakdown       `json:"selected"`
	Comparison     []cost.Breakdown     `json:"comparison,omitempty"`
	Recommendation *cost.Recommendation `json:"recommendation,omitempty"`
	RecordErr      error                `json:"-"`
}

// Recorded reports whether the estimate reached the history store.
func (r *Result) Recorded() bool {
	return r.RecordErr == nil
}

// FallbackUsed lists the providers priced with the static fallback rate.
func (r *Result) FallbackUsed() []cost.Provider {
	var out []cost.Provider
	seen := make(map[cost.Provider]bool)
	for _, b := range append([]cost.Breakdown{r.Selected}, r.Comparison...) {
		rec := b.Record()
		if rec.FallbackUsed && !seen[rec.Provider] {
			seen[rec.Provider] = true
			out = append(out, rec.Provider)
		}
	}
	return out
}

// Estimator holds the collaborators of a run. It keeps no per-run state.
type Estimator struct {
	prices        cost.PriceSource
	store         history.Store
	licenses      cost.LicenseCosts
	regions       map[cost.Provider]string
	defaultRegion string
	now           func() time.Time
	newID         func() string
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRegions sets the region each provider is compared in.
func WithRegions(regions map[cost.Provider]string, defaultRegion string) Option {
	return func(e *Estimator) {
		e.regions = regions
		e.defaultRegion = defaultRegion
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

// New returns an estimator. A nil store disables recording.
func New(prices cost.PriceSource, store history.Store, licenses cost.LicenseCosts, opts ...Option) *Estimator {
	if licenses == nil {
		licenses = cost.DefaultLicenseCosts()
	}
	e := &Estimator{
		prices:   prices,
		store:    store,
		licenses: licenses,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one estimate. Input errors, including an unknown effort
// level, fail before anything is recorded. A history write failure does not
// fail the run; it is reported in Result.RecordErr.
func (e *Estimator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := req.Inputs.Multipliers.For(req.Inputs.Effort); err != nil {
		return nil, err
	}
	// Canonical names key the license table and the resolver.
	req.Provider, _ = cost.ParseProvider(string(req.Provider))

	region := req.Region
	if region == "" {
		region = e.regionFor(req.Provider)
	}

	var price cost.PriceResult
	if req.StorageOverride != nil {
		price = cost.FixedPrice(*req.StorageOverride).Price(ctx, req.Provider, region)
	} else {
		price = e.prices.Price(ctx, req.Provider, region)
	}

	in := req.Inputs
	in.StorageCostPerGB = price.Value
	in.LicenseCost = e.licenses[req.Provider]
	if req.LicenseOverride != nil {
		in.LicenseCost = *req.LicenseOverride
	}

	selected, err := cost.Compute(in)
	if err != nil {
		return nil, err
	}
	selected.Provider = req.Provider
	selected.Region = region
	selected.Price = price

	res := &Result{
		RunID:     e.newID(),
		Timestamp: e.now(),
		Inputs:    in,
		Selected:  selected,
	}

	res.RecordErr = e.record(ctx, res)
	if res.RecordErr != nil {
		slog.Warn("Estimate computed but not recorded", "run_id", res.RunID, "error", res.RecordErr)
	}

	if req.SkipCompare {
		return res, nil
	}

	regions := make(map[cost.Provider]string, len(cost.Providers))
	for _, p := range cost.Providers {
		regions[p] = e.regionFor(p)
	}
	regions[req.Provider] = region

	src := e.prices
	if req.StorageOverride == nil {
		src = resolvedPrice{PriceSource: e.prices, provider: req.Provider, region: region, price: price}
	}
	specs := cost.DefaultProviderSpecs(src, e.licenses, regions, e.defaultRegion)
	comparison, err := cost.Compare(ctx, req.Inputs, specs)
	if err != nil {
		return res, fmt.Errorf("compare providers: %w", err)
	}
	res.Comparison = comparison

	rec, err := cost.Recommend(comparison)
	if err != nil {
		return res, err
	}
	res.Recommendation = &rec

	slog.Debug("Estimate complete",
		"run_id", res.RunID,
		"provider", req.Provider,
		"total", selected.Total,
		"recommended", rec.Providers,
	)
	return res, nil
}

func (e *Estimator) record(ctx context.Context, res *Result) error {
	if e.store == nil {
		return nil
	}

	entry := history.NewEntry(res.RunID, res.Timestamp, res.Inputs, res.Selected)
	if err := e.store.Append(ctx, entry); err != nil {
		return ensureWriteErr(err)
	}
	components := history.BuildComponents(res.RunID, res.Timestamp, res.Selected)
	if err := e.store.AppendComponents(ctx, components); err != nil {
		return ensureWriteErr(err)
	}
	return nil
}

func (e *Estimator) regionFor(p cost.Provider) string {
	if r := e.regions[p]; r != "" {
		return r
	}
	return e.defaultRegion
}

// resolvedPrice reuses the selected provider's rate so the comparison does
// not look it up a second time.
type resolvedPrice struct {
	cost.PriceSource
	provider cost.Provider
	region   string
	price    cost.PriceResult
}

func (r resolvedPrice) Price(ctx context.Context, p cost.Provider, region string) cost.PriceResult {
	if p == r.provider && region == r.region {
		return r.price
	}
	return r.PriceSource.Price(ctx, p, region)
}

func ensureWriteErr(err error) error {
	if errors.Is(err, history.ErrHistoryWrite) {
		return err
	}
	return fmt.Errorf("%w: %w", history.ErrHistoryWrite, err)
}
