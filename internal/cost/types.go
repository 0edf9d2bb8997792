package cost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Provider identifies a cloud storage vendor.
type Provider string

const (
	ProviderS3    Provider = "Amazon S3"
	ProviderGCS   Provider = "Google Cloud Storage"
	ProviderAzure Provider = "Microsoft Azure"
)

// Providers is the fixed comparison set in display order.
var Providers = []Provider{ProviderS3, ProviderGCS, ProviderAzure}

// ErrUnknownProvider is returned by ParseProvider for unsupported names.
var ErrUnknownProvider = errors.New("unknown provider")

// ParseProvider accepts a display name or a short alias (s3, aws, gcs, gcp, azure).
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s3", "aws", "amazon s3":
		return ProviderS3, nil
	case "gcs", "gcp", "google cloud storage":
		return ProviderGCS, nil
	case "azure", "microsoft azure":
		return ProviderAzure, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Effort is the qualitative manpower effort level.
type Effort string

const (
	EffortLow    Effort = "Low"
	EffortMedium Effort = "Medium"
	EffortHigh   Effort = "High"
)

// ErrInvalidEffortLevel is returned when an effort key is outside Low/Medium/High.
var ErrInvalidEffortLevel = errors.New("invalid effort level")

// ParseEffort normalizes case ("medium" -> Medium) and rejects anything else.
func ParseEffort(s string) (Effort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return EffortLow, nil
	case "medium":
		return EffortMedium, nil
	case "high":
		return EffortHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEffortLevel, s)
}

// Multipliers maps each effort level to a per-page manpower cost in USD.
type Multipliers struct {
	Low    float64 `yaml:"low" json:"low"`
	Medium float64 `yaml:"medium" json:"medium"`
	High   float64 `yaml:"high" json:"high"`
}

// DefaultMultipliers returns the stock manpower table.
func DefaultMultipliers() Multipliers {
	return Multipliers{Low: 0.03, Medium: 0.05, High: 0.08}
}

// For returns the multiplier for an effort level.
func (m Multipliers) For(e Effort) (float64, error) {
	switch e {
	case EffortLow:
		return m.Low, nil
	case EffortMedium:
		return m.Medium, nil
	case EffortHigh:
		return m.High, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidEffortLevel, string(e))
}

// Validate rejects negative multipliers.
func (m Multipliers) Validate() error {
	for _, v := range []struct {
		e Effort
		x float64
	}{{EffortLow, m.Low}, {EffortMedium, m.Medium}, {EffortHigh, m.High}} {
		if v.x < 0 {
			return fmt.Errorf("manpower multiplier %s is negative: %v", v.e, v.x)
		}
	}
	return nil
}

// LicenseCosts is the fixed software license cost per provider in USD.
type LicenseCosts map[Provider]float64

// DefaultLicenseCosts returns the stock license table.
func DefaultLicenseCosts() LicenseCosts {
	return LicenseCosts{
		ProviderS3:    50,
		ProviderGCS:   40,
		ProviderAzure: 40,
	}
}

// Validate checks every key is a known provider and every value non-negative.
func (l LicenseCosts) Validate() error {
	for p, v := range l {
		if _, err := ParseProvider(string(p)); err != nil {
			return fmt.Errorf("license cost: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("license cost for %s is negative: %v", p, v)
		}
	}
	return nil
}

// Default per-page processing rates in USD.
const (
	DefaultOCRCostPerPage      = 0.001
	DefaultScanningCostPerPage = 0.002
)

// PriceSourceKind tells where a storage rate came from.
type PriceSourceKind string

const (
	SourceLive     PriceSourceKind = "live"
	SourceFallback PriceSourceKind = "fallback"
	SourceOverride PriceSourceKind = "override"
)

// PriceResult is a storage rate in USD per GB-month and its origin.
type PriceResult struct {
	Value  float64         `json:"value"`
	Source PriceSourceKind `json:"source"`
}

// IsFallback reports whether the static fallback rate was substituted.
func (r PriceResult) IsFallback() bool {
	return r.Source == SourceFallback
}

// MarshalJSON adds an explicit fallback flag.
func (r PriceResult) MarshalJSON() ([]byte, error) {
	type plain PriceResult
	return json.Marshal(struct {
		plain
		Fallback bool `json:"fallback"`
	}{plain(r), r.IsFallback()})
}

// PriceSource resolves a storage rate for a provider and user-facing region.
// Implementations never fail: a failed lookup yields a fallback result.
type PriceSource interface {
	Price(ctx context.Context, p Provider, region string) PriceResult
}

// FixedPrice is a PriceSource returning a user-supplied rate.
type FixedPrice float64

// Price implements PriceSource.
func (f FixedPrice) Price(_ context.Context, _ Provider, _ string) PriceResult {
	return PriceResult{Value: float64(f), Source: SourceOverride}
}

// Inputs holds everything needed to cost one provider.
type Inputs struct {
	Pages               int         `json:"pages"`
	SizeGB              float64     `json:"size_gb"`
	RetentionMonths     int         `json:"retention_months"`
	Effort              Effort      `json:"effort"`
	OCRCostPerPage      float64     `json:"ocr_cost_per_page"`
	ScanningCostPerPage float64     `json:"scanning_cost_per_page"`
	StorageCostPerGB    float64     `json:"storage_cost_per_gb"`
	LicenseCost         float64     `json:"license_cost"`
	Multipliers         Multipliers `json:"multipliers"`
}

// Breakdown is the unrounded cost of one provider.
type Breakdown struct {
	Provider Provider    `json:"provider"`
	Region   string      `json:"region,omitempty"`
	Price    PriceResult `json:"price"`
	Storage  float64     `json:"storage"`
	OCR      float64     `json:"ocr"`
	Scanning float64     `json:"scanning"`
	Manpower float64     `json:"manpower"`
	License  float64     `json:"license"`
	Subtotal float64     `json:"subtotal"`
	Total    float64     `json:"total"`
}

// ProviderRecord summarizes which rate a breakdown was priced with.
type ProviderRecord struct {
	Provider     Provider `json:"provider"`
	Region       string   `json:"region"`
	FallbackUsed bool     `json:"fallback_used"`
}

// Record returns the provider record for b.
func (b Breakdown) Record() ProviderRecord {
	return ProviderRecord{
		Provider:     b.Provider,
		Region:       b.Region,
		FallbackUsed: b.Price.IsFallback(),
	}
}
