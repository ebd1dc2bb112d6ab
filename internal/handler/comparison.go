package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ComparisonHandler serves the multi-supplier comparison endpoint. Results
// are cached in Redis for a short window: a comparison fans out one price
// resolution per supplier, so repeats within the TTL are served from cache.
type ComparisonHandler struct {
	svc service.PriceComparisonService
	rdb *redis.Client
	ttl time.Duration
}

func NewComparisonHandler(svc service.PriceComparisonService, rdb *redis.Client, ttl time.Duration) *ComparisonHandler {
	return &ComparisonHandler{svc: svc, rdb: rdb, ttl: ttl}
}

// ComparePrices godoc
// @Summary      Comparar precios entre proveedores
// @Description  Searches the catalog and resolves one effective price per matching supplier product, ranked cheapest first. Suppliers that cannot be priced are excluded, not fatal.
// @Tags         prices
// @Produce      json
// @Param        search        query string true  "Product name or SKU fragment (min 2 chars)"
// @Param        quantity      query int    false "Units quoted (default 1)"
// @Param        target_margin query number false "Margin percent applied on top of effective prices"
// @Param        customer_id   query string false "Customer UUID for customer-specific pricing"
// @Success      200 {object} dto.Result{data=dto.ComparisonResponse}
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/prices/compare [get]
func (h *ComparisonHandler) ComparePrices(c *gin.Context) {
	var query dto.ComparePricesQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}
	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("compare:%s:%d:%g:%s",
		query.Search, query.Quantity, query.TargetMarginPct, query.CustomerID)

	// 1. Try Redis cache
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ComparisonResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				respondData(c, http.StatusOK, resp)
				return
			}
		}
	}

	// 2. Cache miss — run the comparison
	resp, err := h.svc.Compare(ctx, query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 3. Populate cache — best effort, ignore errors
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, h.ttl).Err()
		}
	}

	respondData(c, http.StatusOK, resp)
}
