package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/pricing"
	"github.com/ppiankov/archivecost/internal/report"
)

var pricesFlags struct {
	providers  []string
	region     string
	allRegions bool
	profile    string
	format     string
	outputFile string
	offline    bool
	timeout    time.Duration
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show current storage rates per provider and region",
	Long: `Look up the per-GB monthly storage rate for each provider. Rates that could
not be fetched live are shown with their fallback source.`,
	RunE: runPrices,
}

func init() {
	pricesCmd.Flags().StringSliceVar(&pricesFlags.providers, "provider", nil, "Providers to show (default: all)")
	pricesCmd.Flags().StringVar(&pricesFlags.region, "region", "", "Region to price (default: from config or us-east)")
	pricesCmd.Flags().BoolVar(&pricesFlags.allRegions, "all-regions", false, "Price every known region")
	pricesCmd.Flags().StringVar(&pricesFlags.profile, "profile", "", "AWS profile used for the Price List API")
	pricesCmd.Flags().StringVar(&pricesFlags.format, "format", defaultFormat, "Output format: text, json, csv")
	pricesCmd.Flags().StringVarP(&pricesFlags.outputFile, "output", "o", "", "Output file path (default: stdout)")
	pricesCmd.Flags().BoolVar(&pricesFlags.offline, "offline", false, "Show fallback rates without live lookups")
	pricesCmd.Flags().DurationVar(&pricesFlags.timeout, "timeout", time.Minute, "Overall timeout")
}

func runPrices(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if pricesFlags.format == defaultFormat && cfg.Format != "" {
		pricesFlags.format = cfg.Format
	}

	ctx := commandContext(cmd)
	if pricesFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pricesFlags.timeout)
		defer cancel()
	}

	providers, err := parseProviders(pricesFlags.providers)
	if err != nil {
		return err
	}
	regions, err := cfg.ProviderRegions()
	if err != nil {
		return err
	}

	resolver, err := newResolver(ctx, cfg, pricesFlags.profile, pricesFlags.offline)
	if err != nil {
		return err
	}
	defer resolver.Close()

	rows := priceRows(ctx, resolver, providers, func(p cost.Provider) []string {
		if pricesFlags.allRegions {
			return pricing.Regions(p)
		}
		switch {
		case pricesFlags.region != "":
			return []string{pricesFlags.region}
		case regions[p] != "":
			return []string{regions[p]}
		case cfg.Region != "":
			return []string{cfg.Region}
		}
		return []string{pricing.DefaultRegion}
	})

	data := report.Data{
		Tool:      "archivecost",
		Version:   version,
		Timestamp: time.Now().UTC(),
		Prices:    rows,
	}
	return generate(pricesFlags.format, pricesFlags.outputFile, data)
}

func priceRows(ctx context.Context, src cost.PriceSource, providers []cost.Provider, regionsFor func(cost.Provider) []string) []report.PriceRow {
	var rows []report.PriceRow
	for _, p := range providers {
		for _, region := range regionsFor(p) {
			rows = append(rows, report.PriceRow{
				Provider: p,
				Region:   region,
				Price:    src.Price(ctx, p, region),
			})
		}
	}
	return rows
}

// parseProviders resolves aliases; an empty list means every provider.
func parseProviders(names []string) ([]cost.Provider, error) {
	if len(names) == 0 {
		return cost.Providers, nil
	}
	out := make([]cost.Provider, 0, len(names))
	for _, n := range names {
		p, err := cost.ParseProvider(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
