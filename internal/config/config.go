package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/archivecost/internal/cost"
)

// Config holds archivecost configuration loaded from .archivecost.yaml.
type Config struct {
	Provider        string            `yaml:"provider"`
	Region          string            `yaml:"region"`
	Regions         map[string]string `yaml:"regions"`
	Profile         string            `yaml:"profile"`
	RetentionMonths int               `yaml:"retention_months"`
	Effort          string            `yaml:"effort"`
	Format          string            `yaml:"format"`
	Timeout         string            `yaml:"timeout"`
	Pricing         Pricing           `yaml:"pricing"`
	History         History           `yaml:"history"`
}

// Pricing overrides the stock rates and controls live lookups.
// Nil pointers mean "use the default".
type Pricing struct {
	StorageCostPerGB    *float64           `yaml:"storage_cost_per_gb"`
	OCRCostPerPage      *float64           `yaml:"ocr_cost_per_page"`
	ScanningCostPerPage *float64           `yaml:"scanning_cost_per_page"`
	Multipliers         map[string]float64 `yaml:"multipliers"`
	Licenses            map[string]float64 `yaml:"licenses"`
	CacheTTL            string             `yaml:"cache_ttl"`
	Timeouts            map[string]string  `yaml:"timeouts"`
	GCPAPIKey           string             `yaml:"gcp_api_key"`
}

// History selects where estimates are logged.
type History struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	DSN     string `yaml:"dsn"`
}

// TimeoutDuration parses the timeout string as a duration.
func (c Config) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout)
}

// CacheTTLOr returns the configured price cache TTL, or def when unset.
// An explicit "0" disables caching.
func (p Pricing) CacheTTLOr(def time.Duration) time.Duration {
	if p.CacheTTL == "" {
		return def
	}
	return parseDuration(p.CacheTTL)
}

// ProviderTimeouts returns the per-provider fetch timeouts that are set.
func (p Pricing) ProviderTimeouts() (map[cost.Provider]time.Duration, error) {
	out := make(map[cost.Provider]time.Duration, len(p.Timeouts))
	for k, v := range p.Timeouts {
		prov, err := cost.ParseProvider(k)
		if err != nil {
			return nil, fmt.Errorf("pricing.timeouts: %w", err)
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("pricing.timeouts.%s: %w", k, err)
		}
		out[prov] = d
	}
	return out, nil
}

// LicenseCosts returns the stock license table with configured entries
// applied on top.
func (p Pricing) LicenseCosts() (cost.LicenseCosts, error) {
	out := cost.DefaultLicenseCosts()
	for k, v := range p.Licenses {
		prov, err := cost.ParseProvider(k)
		if err != nil {
			return nil, fmt.Errorf("pricing.licenses: %w", err)
		}
		out[prov] = v
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// MultiplierTable returns the stock manpower multipliers with configured
// effort levels applied on top.
func (p Pricing) MultiplierTable() (cost.Multipliers, error) {
	m := cost.DefaultMultipliers()
	for k, v := range p.Multipliers {
		e, err := cost.ParseEffort(k)
		if err != nil {
			return cost.Multipliers{}, fmt.Errorf("pricing.multipliers: %w", err)
		}
		switch e {
		case cost.EffortLow:
			m.Low = v
		case cost.EffortMedium:
			m.Medium = v
		case cost.EffortHigh:
			m.High = v
		}
	}
	if err := m.Validate(); err != nil {
		return cost.Multipliers{}, err
	}
	return m, nil
}

// ProviderRegions maps configured per-provider regions to providers.
func (c Config) ProviderRegions() (map[cost.Provider]string, error) {
	out := make(map[cost.Provider]string, len(c.Regions))
	for k, v := range c.Regions {
		prov, err := cost.ParseProvider(k)
		if err != nil {
			return nil, fmt.Errorf("regions: %w", err)
		}
		out[prov] = v
	}
	return out, nil
}

// Validate checks every typed value once, at load time.
func (c Config) Validate() error {
	if c.Provider != "" {
		if _, err := cost.ParseProvider(c.Provider); err != nil {
			return err
		}
	}
	if c.Effort != "" {
		if _, err := cost.ParseEffort(c.Effort); err != nil {
			return err
		}
	}
	if c.RetentionMonths < 0 {
		return fmt.Errorf("retention_months must not be negative: %d", c.RetentionMonths)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	if _, err := c.ProviderRegions(); err != nil {
		return err
	}

	p := c.Pricing
	for name, v := range map[string]*float64{
		"storage_cost_per_gb":    p.StorageCostPerGB,
		"ocr_cost_per_page":      p.OCRCostPerPage,
		"scanning_cost_per_page": p.ScanningCostPerPage,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("pricing.%s must not be negative: %v", name, *v)
		}
	}
	if _, err := p.MultiplierTable(); err != nil {
		return err
	}
	if _, err := p.LicenseCosts(); err != nil {
		return err
	}
	if p.CacheTTL != "" {
		if _, err := time.ParseDuration(p.CacheTTL); err != nil {
			return fmt.Errorf("pricing.cache_ttl: %w", err)
		}
	}
	if _, err := p.ProviderTimeouts(); err != nil {
		return err
	}

	switch c.History.Backend {
	case "", "csv":
	case "postgres":
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("history.backend %q is not supported (use csv or postgres)", c.History.Backend)
	}
	return nil
}

// Load searches for .archivecost.yaml or .archivecost.yml in the given directory
// and returns the parsed, validated config. Returns an empty Config if no file is found.
func Load(dir string) (Config, error) {
	candidates := []string{
		filepath.Join(dir, ".archivecost.yaml"),
		filepath.Join(dir, ".archivecost.yml"),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}

		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
		}
		return cfg, nil
	}

	return Config{}, nil
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, _ := time.ParseDuration(s)
	return d
}
