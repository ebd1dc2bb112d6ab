package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ResolvePriceQuery struct {
	SupplierProductID string `form:"supplier_product_id" validate:"required,uuid"`
	CustomerID        string `form:"customer_id"         validate:"omitempty,uuid"`
	Quantity          int    `form:"quantity,default=1"  validate:"min=1"`
}

// CacheInvalidateRequest marks cache rows stale. Exactly one scope must be
// given: explicit product IDs or a whole supplier.
type CacheInvalidateRequest struct {
	SupplierProductIDs []string `json:"supplier_product_ids" validate:"omitempty,dive,uuid"`
	SupplierID         *string  `json:"supplier_id"          validate:"omitempty,uuid"`
}

type CacheRefreshRequest struct {
	SupplierProductID string `json:"supplier_product_id" validate:"required,uuid"`
}

type CachedPricesQuery struct {
	// Comma-separated supplier product UUIDs.
	IDs string `form:"ids" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResolvedPriceResponse is the full outcome of one price resolution,
// including where the price came from, how trustworthy it is, and the
// sale-side terms the customer's tier or agreement prescribes.
type ResolvedPriceResponse struct {
	SupplierProductID  string          `json:"supplier_product_id"`
	SupplierID         string          `json:"supplier_id"`
	SupplierName       string          `json:"supplier_name"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Quantity           int             `json:"quantity"`
	BasePrice          decimal.Decimal `json:"base_price"`
	EffectivePrice     decimal.Decimal `json:"effective_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
	DiscountPct        decimal.Decimal `json:"discount_pct"`
	VolumeDiscountPct  decimal.Decimal `json:"volume_discount_pct"`
	SuggestedMarginPct decimal.Decimal `json:"suggested_margin_pct"`
	SuggestedSalePrice decimal.Decimal `json:"suggested_sale_price"`
	PriceSource        string          `json:"price_source"` // standard | customer_supplier | customer_product
	Origin             string          `json:"origin"`       // live | cache
	Provenance         string          `json:"provenance"`   // api | import | manual
	IsStale            bool            `json:"is_stale"`
	Warning            string          `json:"warning,omitempty"`
	Available          bool            `json:"available"`
	StockQty           *int            `json:"stock_qty"`
	LeadTimeDays       *int            `json:"lead_time_days"`
	FetchedAt          string          `json:"fetched_at"`
}

// CachedPriceView is one entry of the batch cache lookup.
type CachedPriceView struct {
	SupplierProductID string           `json:"supplier_product_id"`
	Kind              string           `json:"kind"` // cached | catalog
	CostPrice         decimal.Decimal  `json:"cost_price"`
	ListPrice         *decimal.Decimal `json:"list_price"`
	Available         bool             `json:"available"`
	StockQty          *int             `json:"stock_qty"`
	LeadTimeDays      *int             `json:"lead_time_days"`
	Source            string           `json:"source"`
	IsStale           bool             `json:"is_stale"`
	CachedAt          string           `json:"cached_at"`
}

type CachedPricesResponse struct {
	Data    []CachedPriceView `json:"data"`
	Found   int               `json:"found"`
	Missing []string          `json:"missing"`
}

type CacheInvalidateResponse struct {
	Invalidated int64 `json:"invalidated"`
}
