package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
)

// mockPricingClient implements PricingAPI for testing.
type mockPricingClient struct {
	pages    [][]string // PriceList per page
	err      error
	block    bool // wait for ctx cancellation
	calls    int
	inputs   []*awspricing.GetProductsInput
	tokenFor map[string]int
}

func newMockPricingClient(pages ...[]string) *mockPricingClient {
	return &mockPricingClient{pages: pages, tokenFor: make(map[string]int)}
}

func (m *mockPricingClient) GetProducts(ctx context.Context, input *awspricing.GetProductsInput, _ ...func(*awspricing.Options)) (*awspricing.GetProductsOutput, error) {
	m.calls++
	cp := *input
	m.inputs = append(m.inputs, &cp)

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}

	page := 0
	if input.NextToken != nil {
		page = m.tokenFor[*input.NextToken]
	}
	out := &awspricing.GetProductsOutput{}
	if page < len(m.pages) {
		out.PriceList = m.pages[page]
	}
	if page+1 < len(m.pages) {
		token := fmt.Sprintf("page-%d", page+1)
		m.tokenFor[token] = page + 1
		out.NextToken = &token
	}
	return out, nil
}

// s3PriceDoc builds a Price List entry with a single dimension.
func s3PriceDoc(beginRange, unit, usd string) string {
	return fmt.Sprintf(`{
  "product": {"attributes": {"location": "US East (N. Virginia)", "storageClass": "General Purpose", "volumeType": "Standard"}},
  "terms": {"OnDemand": {"SKU.TERM": {"priceDimensions": {"SKU.TERM.DIM": {
    "beginRange": %q, "unit": %q, "pricePerUnit": {"USD": %q}
  }}}}}
}`, beginRange, unit, usd)
}

// jsonServer serves body with status for every request.
func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// slowServer never answers before the client gives up.
func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
