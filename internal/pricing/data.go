package pricing

import (
	"time"

	"github.com/ppiankov/archivecost/internal/cost"
)

// FallbackRates is the static per-GB monthly storage rate in USD used when
// a live price cannot be fetched.
var FallbackRates = map[cost.Provider]float64{
	cost.ProviderS3:    0.023, // S3 Standard, first 50 TB, us-east-1
	cost.ProviderGCS:   0.020,
	cost.ProviderAzure: 0.020,
}

// DefaultTimeouts bounds each live price fetch.
var DefaultTimeouts = map[cost.Provider]time.Duration{
	cost.ProviderS3:    10 * time.Second,
	cost.ProviderGCS:   5 * time.Second,
	cost.ProviderAzure: 10 * time.Second,
}

// DefaultCacheTTL is how long a live price is reused.
const DefaultCacheTTL = time.Hour

// Public pricing endpoints.
const (
	gcpPricelistURL  = "https://cloudpricingcalculator.appspot.com/static/data/pricelist.json"
	azureRetailURL   = "https://prices.azure.com/api/retail/prices"
	gcsCatalogParent = "services/95FF-2EF5-5EA1" // Cloud Storage
)
