package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cloudbilling "google.golang.org/api/cloudbilling/v1"
	"google.golang.org/api/option"
)

var errStopPaging = errors.New("stop paging")

// catalogRegions maps GCP multi-region codes to the SKU description suffix.
var catalogRegions = map[string]string{
	"us":   "US Multi-region",
	"eu":   "EU Multi-region",
	"asia": "Asia Multi-region",
}

// GCSCatalog reads Cloud Storage rates from the Cloud Billing Catalog API.
type GCSCatalog struct {
	svc *cloudbilling.APIService
}

// NewGCSCatalog creates a catalog fetcher. apiKey may be empty when opts
// carry their own credentials or HTTP client.
func NewGCSCatalog(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GCSCatalog, error) {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	svc, err := cloudbilling.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloud billing client: %w", err)
	}
	return &GCSCatalog{svc: svc}, nil
}

// Fetch returns the Standard Storage multi-region rate for us, eu or asia.
func (g *GCSCatalog) Fetch(ctx context.Context, region string) (float64, error) {
	suffix, ok := catalogRegions[region]
	if !ok {
		return 0, fmt.Errorf("%w: %q has no catalog SKU", ErrUnknownRegion, region)
	}
	want := "Standard Storage " + suffix

	var price float64
	found := false
	err := g.svc.Services.Skus.List(gcsCatalogParent).CurrencyCode("USD").Pages(ctx,
		func(resp *cloudbilling.ListSkusResponse) error {
			for _, sku := range resp.Skus {
				if !strings.EqualFold(sku.Description, want) {
					continue
				}
				if v, ok := lastTierPrice(sku); ok {
					price, found = v, true
					return errStopPaging
				}
			}
			return nil
		})
	if err != nil && !errors.Is(err, errStopPaging) {
		return 0, fmt.Errorf("list skus: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, want)
	}
	return price, nil
}

// lastTierPrice returns the unit price of the highest tier of the first
// pricing entry. The zero tier of storage SKUs is the free allowance.
func lastTierPrice(sku *cloudbilling.Sku) (float64, bool) {
	if len(sku.PricingInfo) == 0 || sku.PricingInfo[0].PricingExpression == nil {
		return 0, false
	}
	tiers := sku.PricingInfo[0].PricingExpression.TieredRates
	if len(tiers) == 0 || tiers[len(tiers)-1].UnitPrice == nil {
		return 0, false
	}
	m := tiers[len(tiers)-1].UnitPrice
	return float64(m.Units) + float64(m.Nanos)/1e9, true
}
