package pricing

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/archivecost/internal/cost"
)

// Options configures the stock resolver.
type Options struct {
	Profile   string
	GCPAPIKey string
	CacheTTL  time.Duration
	Timeouts  map[cost.Provider]time.Duration
	// Offline skips live lookups; every price is the fallback rate.
	Offline bool
}

// NewDefaultResolver wires the live fetchers for all three providers.
// S3 uses the AWS Price List API, GCS uses the Cloud Billing catalog when an
// API key is set and the public price list otherwise, and Azure uses the
// retail prices API. A provider whose client cannot be built is left on its
// fallback rate.
func NewDefaultResolver(ctx context.Context, opts Options) (*Resolver, error) {
	cache, err := NewCache(opts.CacheTTL)
	if err != nil {
		return nil, err
	}
	r := NewResolver(cache)
	if opts.Offline {
		return r, nil
	}

	timeout := func(p cost.Provider) time.Duration {
		if d := opts.Timeouts[p]; d > 0 {
			return d
		}
		return DefaultTimeouts[p]
	}

	if client, err := NewAWSClient(ctx, opts.Profile); err != nil {
		slog.Warn("AWS pricing unavailable, S3 will use the fallback rate", "error", err)
	} else {
		r.Register(cost.ProviderS3, NewS3Pricing(client.NewPricingClient()), timeout(cost.ProviderS3))
	}

	if opts.GCPAPIKey != "" {
		catalog, err := NewGCSCatalog(ctx, opts.GCPAPIKey)
		if err != nil {
			slog.Warn("GCP billing catalog unavailable, using public price list", "error", err)
			r.Register(cost.ProviderGCS, NewGCPPricelist(NewHTTPClient(timeout(cost.ProviderGCS)), ""), timeout(cost.ProviderGCS))
		} else {
			r.Register(cost.ProviderGCS, catalog, timeout(cost.ProviderGCS))
		}
	} else {
		r.Register(cost.ProviderGCS, NewGCPPricelist(NewHTTPClient(timeout(cost.ProviderGCS)), ""), timeout(cost.ProviderGCS))
	}

	r.Register(cost.ProviderAzure, NewAzureRetail(NewHTTPClient(timeout(cost.ProviderAzure)), ""), timeout(cost.ProviderAzure))
	return r, nil
}

// Close releases the price cache.
func (r *Resolver) Close() {
	r.cache.Close()
}
