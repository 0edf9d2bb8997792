package cost

import (
	"context"
	"fmt"
	"log/slog"
)

// ProviderSpec binds a provider to the price source, region and license cost
// used when comparing it.
type ProviderSpec struct {
	Provider Provider
	Region   string
	Source   PriceSource
	License  float64
}

// DefaultProviderSpecs returns specs for the fixed S3, GCS, Azure set.
// regions maps a provider to its region; missing entries use defaultRegion.
func DefaultProviderSpecs(src PriceSource, licenses LicenseCosts, regions map[Provider]string, defaultRegion string) []ProviderSpec {
	specs := make([]ProviderSpec, 0, len(Providers))
	for _, p := range Providers {
		region := regions[p]
		if region == "" {
			region = defaultRegion
		}
		specs = append(specs, ProviderSpec{
			Provider: p,
			Region:   region,
			Source:   src,
			License:  licenses[p],
		})
	}
	return specs
}

// Compare prices every ProviderSpec with the processing parameters of tmpl held
// constant. Only the storage rate and license cost vary per provider. Each
// source is consulted exactly once per provider, and the output order
// matches specs.
func Compare(ctx context.Context, tmpl Inputs, specs []ProviderSpec) ([]Breakdown, error) {
	out := make([]Breakdown, 0, len(specs))
	for _, s := range specs {
		price := s.Source.Price(ctx, s.Provider, s.Region)

		in := tmpl
		in.StorageCostPerGB = price.Value
		in.LicenseCost = s.License

		b, err := Compute(in)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", s.Provider, err)
		}
		b.Provider = s.Provider
		b.Region = s.Region
		b.Price = price
		out = append(out, b)

		slog.Debug("Priced provider", "provider", s.Provider, "region", s.Region,
			"rate", price.Value, "source", price.Source, "total", b.Total)
	}
	return out, nil
}
