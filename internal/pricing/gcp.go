package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GCPPricelist reads the public Google Cloud pricing calculator price list.
type GCPPricelist struct {
	client *http.Client
	url    string
}

// NewGCPPricelist creates a fetcher. An empty url uses the public endpoint.
func NewGCPPricelist(client *http.Client, url string) *GCPPricelist {
	if url == "" {
		url = gcpPricelistURL
	}
	return &GCPPricelist{client: client, url: url}
}

// Fetch returns the multi-regional storage rate for a GCP region code
// (us, eu, asia).
func (g *GCPPricelist) Fetch(ctx context.Context, region string) (float64, error) {
	var doc map[string]json.RawMessage
	if err := getJSON(ctx, g.client, g.url, &doc); err != nil {
		return 0, err
	}
	// The published file nests everything under gcp_price_list.
	if inner, ok := doc["gcp_price_list"]; ok {
		doc = nil
		if err := json.Unmarshal(inner, &doc); err != nil {
			return 0, fmt.Errorf("parse gcp_price_list: %w", err)
		}
	}

	raw, ok := doc["CP-STORAGE-MULTI-REGIONAL"]
	if !ok {
		return 0, fmt.Errorf("%w: CP-STORAGE-MULTI-REGIONAL missing", ErrPriceNotFound)
	}
	var byRegion map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byRegion); err != nil {
		return 0, fmt.Errorf("parse CP-STORAGE-MULTI-REGIONAL: %w", err)
	}
	entry, ok := byRegion[region]
	if !ok {
		return 0, fmt.Errorf("%w: region %q missing", ErrPriceNotFound, region)
	}
	return parseGCPPrice(entry)
}

// parseGCPPrice accepts either a bare number or an object keyed by currency.
func parseGCPPrice(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var byCurrency struct {
		USD *float64 `json:"USD"`
	}
	if err := json.Unmarshal(raw, &byCurrency); err != nil {
		return 0, fmt.Errorf("parse price %s: %w", string(raw), err)
	}
	if byCurrency.USD == nil {
		return 0, fmt.Errorf("%w: USD missing", ErrPriceNotFound)
	}
	return *byCurrency.USD, nil
}
