package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PriceHistoryQuery struct {
	SupplierProductID string `form:"supplier_product_id" validate:"required,uuid"`
	Page              int    `form:"page,default=1"      validate:"min=1"`
	Limit             int    `form:"limit,default=20"    validate:"min=1,max=100"`
}

type RecordAcceptedPriceRequest struct {
	SupplierProductID string          `json:"supplier_product_id" validate:"required,uuid"`
	CustomerID        *string         `json:"customer_id"         validate:"omitempty,uuid"`
	AcceptedPrice     decimal.Decimal `json:"accepted_price"      validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SupplierHealthResponse is the display-only health verdict for one
// supplier. Nothing in the resolution path reads it.
type SupplierHealthResponse struct {
	SupplierID        string  `json:"supplier_id"`
	SupplierName      string  `json:"supplier_name"`
	SupplierCode      string  `json:"supplier_code"`
	Status            string  `json:"status"` // online | offline
	LastSuccessAt     *string `json:"last_success_at"`
	LastFailureAt     *string `json:"last_failure_at"`
	FailureCount      int     `json:"failure_count"`
	AverageResponseMs int64   `json:"average_response_ms"`
	CacheStatus       string  `json:"cache_status"` // fresh | stale | missing
	CachedRows        int64   `json:"cached_rows"`
	StaleRows         int64   `json:"stale_rows"`
	CircuitState      string  `json:"circuit_state"`
	WindowSize        int     `json:"window_size"`
}

type AcceptedPriceResponse struct {
	ID                string          `json:"id"`
	SupplierProductID string          `json:"supplier_product_id"`
	CustomerID        *string         `json:"customer_id"`
	Price             decimal.Decimal `json:"price"`
	CreatedAt         string          `json:"created_at"`
}

type PriceHistoryListResponse struct {
	Data  []AcceptedPriceResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
