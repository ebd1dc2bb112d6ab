package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MarginLine is one quote line for margin analysis. Prices arrive final:
// the analyzer never re-resolves them.
type MarginLine struct {
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price" validate:"min=0"`
	SalePrice   decimal.Decimal `json:"sale_price" validate:"min=0"`
	Quantity    int             `json:"quantity,omitempty"   validate:"omitempty,min=1"`
}

type MarginAnalysisRequest struct {
	Lines        []MarginLine `json:"lines"          validate:"required,min=1,dive"`
	MinMarginPct *float64     `json:"min_margin_pct" validate:"omitempty,min=0"`
}

type SuggestPriceRequest struct {
	CostPrice         decimal.Decimal `json:"cost_price"          validate:"required"`
	TargetMarginPct   float64         `json:"target_margin_pct"   validate:"min=0"`
	SupplierProductID *string         `json:"supplier_product_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MarginLineResult struct {
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MarginAmount decimal.Decimal `json:"margin_amount"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
	BelowMinimum bool            `json:"below_minimum"`
}

type MarginAnalysisResponse struct {
	Lines             []MarginLineResult `json:"lines"`
	TotalCost         decimal.Decimal    `json:"total_cost"`
	TotalSale         decimal.Decimal    `json:"total_sale"`
	TotalMarginAmount decimal.Decimal    `json:"total_margin_amount"`
	OverallMarginPct  decimal.Decimal    `json:"overall_margin_pct"`
	MinMarginPct      decimal.Decimal    `json:"min_margin_pct"`
	BelowMinimumCount int                `json:"below_minimum_count"`
}

type SuggestPriceResponse struct {
	CostPrice         decimal.Decimal  `json:"cost_price"`
	TargetMarginPct   decimal.Decimal  `json:"target_margin_pct"`
	SuggestedPrice    decimal.Decimal  `json:"suggested_price"`
	MarginPct         decimal.Decimal  `json:"margin_pct"` // margin at the suggested price
	HistoricalSamples int              `json:"historical_samples"`
	P75AcceptedPrice  *decimal.Decimal `json:"p75_accepted_price,omitempty"`
}
