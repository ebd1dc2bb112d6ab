package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ComparePricesQuery struct {
	Search          string  `form:"search"                 validate:"required,min=2"`
	Quantity        int     `form:"quantity,default=1"     validate:"min=1"`
	TargetMarginPct float64 `form:"target_margin,default=0" validate:"min=0"`
	CustomerID      string  `form:"customer_id"            validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ComparisonEntry is one supplier's offer, ranked by sale price.
type ComparisonEntry struct {
	SupplierID        string          `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	SupplierProductID string          `json:"supplier_product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	EffectivePrice    decimal.Decimal `json:"effective_price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	PriceSource       string          `json:"price_source"`
	Origin            string          `json:"origin"`
	IsStale           bool            `json:"is_stale"`
	Available         bool            `json:"available"`
	StockQty          *int            `json:"stock_qty"`
	LeadTimeDays      *int            `json:"lead_time_days"`
	Warning           string          `json:"warning,omitempty"`
}

// ExcludedSupplier names an offer that could not be priced. The comparison
// degrades instead of failing when one supplier is dark.
type ExcludedSupplier struct {
	SupplierName      string `json:"supplier_name"`
	SupplierProductID string `json:"supplier_product_id"`
	Reason            string `json:"reason"`
}

type ComparisonResponse struct {
	Search                string             `json:"search"`
	Quantity              int                `json:"quantity"`
	TargetMarginPct       decimal.Decimal    `json:"target_margin_pct"`
	Results               []ComparisonEntry  `json:"results"`
	Excluded              []ExcludedSupplier `json:"excluded"`
	CheapestSupplier      string             `json:"cheapest_supplier,omitempty"`
	MostExpensiveSupplier string             `json:"most_expensive_supplier,omitempty"`
	PriceSpreadPct        decimal.Decimal    `json:"price_spread_pct"`
}
