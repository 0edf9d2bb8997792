package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/archivecost/internal/config"
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/estimator"
	"github.com/ppiankov/archivecost/internal/inventory"
)

// costFlags are the inputs shared by estimate and compare.
type costFlags struct {
	pages        int
	sizeGB       float64
	inventory    string
	provider     string
	region       string
	profile      string
	retention    int
	effort       string
	storageCost  float64
	ocrCost      float64
	scanningCost float64
	licenseCost  float64
	multLow      float64
	multMedium   float64
	multHigh     float64
	format       string
	outputFile   string
	offline      bool
	timeout      time.Duration
}

const (
	defaultProvider  = "s3"
	defaultRetention = 12
	defaultEffort    = "Medium"
	defaultFormat    = "text"
)

func addCostFlags(cmd *cobra.Command, f *costFlags) {
	m := cost.DefaultMultipliers()
	cmd.Flags().IntVar(&f.pages, "pages", 0, "Total number of pages")
	cmd.Flags().Float64Var(&f.sizeGB, "size-gb", 0, "Total size in GB (default: pages x 350 KB)")
	cmd.Flags().StringVar(&f.inventory, "inventory", "", "Inventory YAML listing documents (overrides --pages/--size-gb)")
	cmd.Flags().StringVar(&f.provider, "provider", defaultProvider, "Storage provider: s3, gcs, azure")
	cmd.Flags().StringVar(&f.region, "region", "", "Region: us-east, us-west, eu, asia, australia, or a native region ID")
	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS profile used for the Price List API")
	cmd.Flags().IntVar(&f.retention, "retention", defaultRetention, "Retention period in months")
	cmd.Flags().StringVar(&f.effort, "effort", defaultEffort, "Manpower effort: Low, Medium, High")
	cmd.Flags().Float64Var(&f.storageCost, "storage-cost", 0, "Custom storage rate in USD per GB-month")
	cmd.Flags().Float64Var(&f.ocrCost, "ocr-cost", cost.DefaultOCRCostPerPage, "OCR cost per page (USD)")
	cmd.Flags().Float64Var(&f.scanningCost, "scanning-cost", cost.DefaultScanningCostPerPage, "Scanning cost per page (USD)")
	cmd.Flags().Float64Var(&f.licenseCost, "license-cost", 0, "Custom software license cost for the selected provider (USD)")
	cmd.Flags().Float64Var(&f.multLow, "multiplier-low", m.Low, "Manpower cost per page at Low effort")
	cmd.Flags().Float64Var(&f.multMedium, "multiplier-medium", m.Medium, "Manpower cost per page at Medium effort")
	cmd.Flags().Float64Var(&f.multHigh, "multiplier-high", m.High, "Manpower cost per page at High effort")
	cmd.Flags().StringVar(&f.format, "format", defaultFormat, "Output format: text, json, csv")
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Skip live price lookups and use fallback rates")
	cmd.Flags().DurationVar(&f.timeout, "timeout", time.Minute, "Overall timeout")
}

// applyCostConfigDefaults fills flags left at their defaults from config.
func applyCostConfigDefaults(cmd *cobra.Command, f *costFlags, cfg config.Config) {
	if f.format == defaultFormat && cfg.Format != "" {
		f.format = cfg.Format
	}
	if f.provider == defaultProvider && cfg.Provider != "" {
		f.provider = cfg.Provider
	}
	if f.region == "" && cfg.Region != "" {
		f.region = cfg.Region
	}
	if f.retention == defaultRetention && cfg.RetentionMonths > 0 {
		f.retention = cfg.RetentionMonths
	}
	if f.effort == defaultEffort && cfg.Effort != "" {
		f.effort = cfg.Effort
	}
	if f.timeout == time.Minute && cfg.TimeoutDuration() > 0 {
		f.timeout = cfg.TimeoutDuration()
	}
	if !changed(cmd, "ocr-cost") && cfg.Pricing.OCRCostPerPage != nil {
		f.ocrCost = *cfg.Pricing.OCRCostPerPage
	}
	if !changed(cmd, "scanning-cost") && cfg.Pricing.ScanningCostPerPage != nil {
		f.scanningCost = *cfg.Pricing.ScanningCostPerPage
	}
}

func changed(cmd *cobra.Command, name string) bool {
	return cmd != nil && cmd.Flags().Changed(name)
}

// buildRequest turns flags and config into an estimator request. An unknown
// effort level fails here with cost.ErrInvalidEffortLevel, before any
// history is opened.
func buildRequest(cmd *cobra.Command, f *costFlags, cfg config.Config) (estimator.Request, *inventory.Summary, error) {
	provider, err := cost.ParseProvider(f.provider)
	if err != nil {
		return estimator.Request{}, nil, err
	}
	effort, err := cost.ParseEffort(f.effort)
	if err != nil {
		return estimator.Request{}, nil, err
	}

	mult, err := cfg.Pricing.MultiplierTable()
	if err != nil {
		return estimator.Request{}, nil, err
	}
	if changed(cmd, "multiplier-low") {
		mult.Low = f.multLow
	}
	if changed(cmd, "multiplier-medium") {
		mult.Medium = f.multMedium
	}
	if changed(cmd, "multiplier-high") {
		mult.High = f.multHigh
	}
	if err := mult.Validate(); err != nil {
		return estimator.Request{}, nil, err
	}

	if f.retention < 1 {
		return estimator.Request{}, nil, fmt.Errorf("--retention must be at least 1 month, got %d", f.retention)
	}
	if f.ocrCost < 0 || f.scanningCost < 0 {
		return estimator.Request{}, nil, fmt.Errorf("per-page costs must not be negative")
	}

	pages, sizeGB, inv, err := archiveSize(cmd, f)
	if err != nil {
		return estimator.Request{}, nil, err
	}

	req := estimator.Request{
		Inputs: cost.Inputs{
			Pages:               pages,
			SizeGB:              sizeGB,
			RetentionMonths:     f.retention,
			Effort:              effort,
			OCRCostPerPage:      f.ocrCost,
			ScanningCostPerPage: f.scanningCost,
			Multipliers:         mult,
		},
		Provider: provider,
		Region:   f.region,
	}

	if changed(cmd, "storage-cost") {
		v := f.storageCost
		req.StorageOverride = &v
	} else if cfg.Pricing.StorageCostPerGB != nil {
		v := *cfg.Pricing.StorageCostPerGB
		req.StorageOverride = &v
	}
	if changed(cmd, "license-cost") {
		v := f.licenseCost
		req.LicenseOverride = &v
	}
	return req, inv, nil
}

func archiveSize(cmd *cobra.Command, f *costFlags) (int, float64, *inventory.Summary, error) {
	if f.inventory != "" {
		file, err := inventory.Load(f.inventory)
		if err != nil {
			return 0, 0, nil, err
		}
		summary, err := inventory.Aggregate(file.Documents, filepath.Dir(f.inventory))
		if err != nil {
			return 0, 0, nil, err
		}
		return summary.TotalPages, summary.SizeGB, &summary, nil
	}

	if f.pages <= 0 {
		return 0, 0, nil, fmt.Errorf("--pages (at least 1) or --inventory is required")
	}
	if changed(cmd, "size-gb") {
		return f.pages, f.sizeGB, nil, nil
	}
	return f.pages, inventory.ManualSizeGB(f.pages), nil, nil
}
