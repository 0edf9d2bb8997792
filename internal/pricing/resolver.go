package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/archivecost/internal/cost"
)

// ErrPriceNotFound is returned by fetchers when a response parses but holds
// no usable price.
var ErrPriceNotFound = errors.New("price not found in response")

// Fetcher retrieves a live per-GB monthly storage price for a wire region.
type Fetcher interface {
	Fetch(ctx context.Context, region string) (float64, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, region string) (float64, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, region string) (float64, error) {
	return f(ctx, region)
}

type registration struct {
	fetcher Fetcher
	timeout time.Duration
}

// Resolver implements cost.PriceSource on top of per-provider fetchers, a
// TTL cache and the static fallback table.
type Resolver struct {
	fetchers map[cost.Provider]registration
	cache    *Cache
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(cache *Cache) *Resolver {
	return &Resolver{
		fetchers: make(map[cost.Provider]registration),
		cache:    cache,
	}
}

// Register sets the live fetcher for a provider. A non-positive timeout uses
// the provider default.
func (r *Resolver) Register(p cost.Provider, f Fetcher, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeouts[p]
	}
	r.fetchers[p] = registration{fetcher: f, timeout: timeout}
}

// Price implements cost.PriceSource. Any failure yields the fallback rate.
func (r *Resolver) Price(ctx context.Context, p cost.Provider, region string) cost.PriceResult {
	v, err := r.live(ctx, p, region)
	if err != nil {
		slog.Warn("Using fallback storage rate", "provider", p, "region", region, "error", err)
		return Fallback(p)
	}
	return cost.PriceResult{Value: v, Source: cost.SourceLive}
}

func (r *Resolver) live(ctx context.Context, p cost.Provider, region string) (float64, error) {
	wire, err := WireRegion(p, region)
	if err != nil {
		return 0, err
	}

	key := string(p) + "|" + wire
	if v, ok := r.cache.Get(key); ok {
		slog.Debug("Price cache hit", "provider", p, "region", wire, "rate", v)
		return v, nil
	}

	reg, ok := r.fetchers[p]
	if !ok {
		return 0, fmt.Errorf("no live price source for %s", p)
	}

	fetchCtx := ctx
	if reg.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, reg.timeout)
		defer cancel()
	}

	v, err := reg.fetcher.Fetch(fetchCtx, wire)
	if err != nil {
		return 0, fmt.Errorf("fetch %s price for %s: %w", p, wire, err)
	}
	if !(v > 0) {
		return 0, fmt.Errorf("fetch %s price for %s: %w: got %v", p, wire, ErrPriceNotFound, v)
	}

	r.cache.Set(key, v)
	slog.Debug("Fetched live price", "provider", p, "region", wire, "rate", v)
	return v, nil
}

// Fallback returns the static rate for p flagged as a fallback.
func Fallback(p cost.Provider) cost.PriceResult {
	return cost.PriceResult{Value: FallbackRates[p], Source: cost.SourceFallback}
}
