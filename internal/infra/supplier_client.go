package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/shopspring/decimal"
)

// SupplierPriceQuote is the wire shape supplier gateways answer price
// lookups with.
type SupplierPriceQuote struct {
	CostPrice    decimal.Decimal  `json:"cost_price"`
	ListPrice    *decimal.Decimal `json:"list_price"`
	Available    bool             `json:"available"`
	StockQty     *int             `json:"stock_qty"`
	LeadTimeDays *int             `json:"lead_time_days"`
}

// Snapshot converts the quote into the neutral price shape, stamped with
// the fetch time.
func (q *SupplierPriceQuote) Snapshot(fetchedAt time.Time) model.PriceSnapshot {
	return model.PriceSnapshot{
		CostPrice:    q.CostPrice,
		ListPrice:    q.ListPrice,
		Available:    q.Available,
		StockQty:     q.StockQty,
		LeadTimeDays: q.LeadTimeDays,
		FetchedAt:    fetchedAt,
		Provenance:   model.CacheSourceAPI,
	}
}

// SupplierPriceClient fetches one live price from a supplier API. The
// resolver and the refresh worker both speak through this interface, so
// tests can swap in a stub and the breaker decorator stays transparent.
type SupplierPriceClient interface {
	FetchPrice(ctx context.Context, supplier *model.Supplier, sku string) (*SupplierPriceQuote, error)
}

// HTTPSupplierClient talks to the supplier gateway, an internal proxy that
// normalizes every wholesaler API to one JSON shape. Per-request deadlines
// come from the caller's context; the client timeout is only a last line
// against leaked connections.
type HTTPSupplierClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPSupplierClient(baseURL, token string) *HTTPSupplierClient {
	return &HTTPSupplierClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPSupplierClient) FetchPrice(ctx context.Context, supplier *model.Supplier, sku string) (*SupplierPriceQuote, error) {
	endpoint := fmt.Sprintf("%s/suppliers/%s/products/%s/price",
		c.baseURL, url.PathEscape(supplier.AccountRef), url.PathEscape(sku))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("supplier_api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supplier_api: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supplier_api: gateway returned %d for %s/%s", resp.StatusCode, supplier.Code, sku)
	}

	var quote SupplierPriceQuote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("supplier_api: decode response: %w", err)
	}
	return &quote, nil
}

// GuardedSupplierClient wraps a client with the per-supplier circuit
// breakers. When a breaker is open the call fails immediately with
// ErrCircuitOpen and the resolver falls through to cache without burning
// its timeout budget.
type GuardedSupplierClient struct {
	inner    SupplierPriceClient
	breakers *BreakerRegistry
}

func NewGuardedSupplierClient(inner SupplierPriceClient, breakers *BreakerRegistry) *GuardedSupplierClient {
	return &GuardedSupplierClient{inner: inner, breakers: breakers}
}

func (g *GuardedSupplierClient) FetchPrice(ctx context.Context, supplier *model.Supplier, sku string) (*SupplierPriceQuote, error) {
	var quote *SupplierPriceQuote
	err := g.breakers.For(supplier.ID).Execute(func() error {
		q, err := g.inner.FetchPrice(ctx, supplier, sku)
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

var (
	_ SupplierPriceClient = (*HTTPSupplierClient)(nil)
	_ SupplierPriceClient = (*GuardedSupplierClient)(nil)
)
