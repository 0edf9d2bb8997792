package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AzureRetail reads the unauthenticated Azure retail prices API.
type AzureRetail struct {
	client  *http.Client
	baseURL string
}

// NewAzureRetail creates a fetcher. An empty baseURL uses the public endpoint.
func NewAzureRetail(client *http.Client, baseURL string) *AzureRetail {
	if baseURL == "" {
		baseURL = azureRetailURL
	}
	return &AzureRetail{client: client, baseURL: baseURL}
}

type azureRetailResponse struct {
	Items []struct {
		RetailPrice      float64 `json:"retailPrice"`
		UnitOfMeasure    string  `json:"unitOfMeasure"`
		ArmRegionName    string  `json:"armRegionName"`
		TierMinimumUnits float64 `json:"tierMinimumUnits"`
	} `json:"Items"`
}

// Fetch returns the Hot LRS data-stored rate for an ARM region name.
func (a *AzureRetail) Fetch(ctx context.Context, region string) (float64, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'Storage' and armRegionName eq '%s' and skuName eq 'Hot LRS' and meterName eq 'Data Stored'",
		region)
	u := a.baseURL + "?" + url.Values{"$filter": {filter}}.Encode()

	var resp azureRetailResponse
	if err := getJSON(ctx, a.client, u, &resp); err != nil {
		return 0, err
	}
	if len(resp.Items) == 0 {
		return 0, fmt.Errorf("%w: no items for %s", ErrPriceNotFound, region)
	}

	// Prefer the first tier; the API lists volume discounts as extra items.
	for _, it := range resp.Items {
		if it.TierMinimumUnits == 0 {
			return it.RetailPrice, nil
		}
	}
	return resp.Items[0].RetailPrice, nil
}
