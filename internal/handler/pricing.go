package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wukjhc-create/elta-crm-sub009/internal/apierror"
	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"
	"github.com/wukjhc-create/elta-crm-sub009/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PricingHandler serves price resolution, margin analysis and the
// cache management endpoints.
type PricingHandler struct {
	resolver   service.PriceResolverService
	margins    service.MarginService
	cache      service.PriceCacheService
	dispatcher *worker.Dispatcher
}

func NewPricingHandler(
	resolver service.PriceResolverService,
	margins service.MarginService,
	cache service.PriceCacheService,
	dispatcher *worker.Dispatcher,
) *PricingHandler {
	return &PricingHandler{resolver: resolver, margins: margins, cache: cache, dispatcher: dispatcher}
}

// ResolvePrice godoc
// @Summary      Resolver precio efectivo
// @Description  Resolves the effective unit price for a supplier product: live fetch with cache fallback, then customer agreements, overrides and volume brackets.
// @Tags         prices
// @Produce      json
// @Param        supplier_product_id query string true  "Supplier product UUID"
// @Param        customer_id         query string false "Customer UUID (omit for list pricing)"
// @Param        quantity            query int    false "Units quoted (default 1)"
// @Success      200 {object} dto.Result{data=dto.ResolvedPriceResponse}
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/prices/resolve [get]
func (h *PricingHandler) ResolvePrice(c *gin.Context) {
	var query dto.ResolvePriceQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}
	productID, err := uuid.Parse(query.SupplierProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier_product_id"))
		return
	}
	customerID := uuid.Nil
	if query.CustomerID != "" {
		if customerID, err = uuid.Parse(query.CustomerID); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid customer_id"))
			return
		}
	}

	resp, err := h.resolver.Resolve(c.Request.Context(), customerID, productID, query.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// AnalyzeMargins godoc
// @Summary      Analizar margenes de cotizacion
// @Description  Computes per-line and overall margin for a set of quote lines and flags lines below the minimum margin.
// @Tags         prices
// @Accept       json
// @Produce      json
// @Param        body body dto.MarginAnalysisRequest true "Quote lines"
// @Success      200 {object} dto.Result{data=dto.MarginAnalysisResponse}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/prices/margins [post]
func (h *PricingHandler) AnalyzeMargins(c *gin.Context) {
	var req dto.MarginAnalysisRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.margins.Analyze(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// SuggestPrice godoc
// @Summary      Sugerir precio de venta
// @Description  Suggests a sale price from cost and target margin, raised to the 75th percentile of recently accepted prices when history exists.
// @Tags         prices
// @Accept       json
// @Produce      json
// @Param        body body dto.SuggestPriceRequest true "Cost and target margin"
// @Success      200 {object} dto.Result{data=dto.SuggestPriceResponse}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/prices/suggest [post]
func (h *PricingHandler) SuggestPrice(c *gin.Context) {
	var req dto.SuggestPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.margins.Suggest(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// CachedPrices godoc
// @Summary      Consulta masiva de precios cacheados
// @Description  Returns cached snapshots for up to 100 supplier products. Products without a cache row fall back to catalog prices; the rest are listed as missing.
// @Tags         prices
// @Produce      json
// @Param        ids query string true "Comma-separated supplier product UUIDs"
// @Success      200 {object} dto.Result{data=dto.CachedPricesResponse}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/prices/cached [get]
func (h *PricingHandler) CachedPrices(c *gin.Context) {
	var query dto.CachedPricesQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}
	ids, err := parseUUIDList(query.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	hits, err := h.cache.GetBatch(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.CachedPricesResponse{
		Data:    make([]dto.CachedPriceView, 0, len(hits)),
		Missing: []string{},
	}
	for _, id := range ids {
		hit, ok := hits[id]
		if !ok {
			resp.Missing = append(resp.Missing, id.String())
			continue
		}
		resp.Data = append(resp.Data, cacheHitToView(hit))
	}
	resp.Found = len(resp.Data)
	respondData(c, http.StatusOK, resp)
}

// InvalidateCache godoc
// @Summary      Invalidar precios cacheados
// @Description  Marks cached prices stale without deleting them. Scope is either an explicit product list or a whole supplier, never both.
// @Tags         prices
// @Accept       json
// @Produce      json
// @Param        body body dto.CacheInvalidateRequest true "Invalidation scope"
// @Success      200 {object} dto.Result{data=dto.CacheInvalidateResponse}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/prices/cache/invalidate [post]
func (h *PricingHandler) InvalidateCache(c *gin.Context) {
	var req dto.CacheInvalidateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	hasIDs := len(req.SupplierProductIDs) > 0
	hasSupplier := req.SupplierID != nil
	if hasIDs == hasSupplier {
		c.JSON(http.StatusBadRequest, apierror.New("provide either supplier_product_ids or supplier_id"))
		return
	}

	var (
		invalidated int64
		err         error
	)
	if hasSupplier {
		supplierID, parseErr := uuid.Parse(*req.SupplierID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid supplier_id"))
			return
		}
		invalidated, err = h.cache.InvalidateSupplier(c.Request.Context(), supplierID)
	} else {
		ids := make([]uuid.UUID, 0, len(req.SupplierProductIDs))
		for _, raw := range req.SupplierProductIDs {
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				c.JSON(http.StatusBadRequest, apierror.New("invalid supplier_product_id: "+raw))
				return
			}
			ids = append(ids, id)
		}
		invalidated, err = h.cache.Invalidate(c.Request.Context(), ids)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.CacheInvalidateResponse{Invalidated: invalidated})
}

// RefreshCache godoc
// @Summary      Encolar refresco de precio
// @Description  Enqueues a background refresh for one supplier product. The job fetches the live price with retries and overwrites the cache row.
// @Tags         prices
// @Accept       json
// @Produce      json
// @Param        body body dto.CacheRefreshRequest true "Product to refresh"
// @Success      202 {object} dto.Result
// @Failure      400 {object} apierror.APIError
// @Router       /v1/prices/cache/refresh [post]
func (h *PricingHandler) RefreshCache(c *gin.Context) {
	var req dto.CacheRefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if _, err := uuid.Parse(req.SupplierProductID); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier_product_id"))
		return
	}

	payload := worker.PriceRefreshJobPayload{SupplierProductID: req.SupplierProductID}
	if err := h.dispatcher.EnqueuePriceRefresh(c.Request.Context(), payload); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to enqueue refresh job"))
		return
	}
	respondData(c, http.StatusAccepted, gin.H{"enqueued": req.SupplierProductID})
}

const maxBatchIDs = 100

func parseUUIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > maxBatchIDs {
		return nil, fmt.Errorf("too many ids: %d (max %d)", len(parts), maxBatchIDs)
	}
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id: %s", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids must contain at least one UUID")
	}
	return ids, nil
}

func cacheHitToView(hit service.CacheHit) dto.CachedPriceView {
	snap := hit.Snapshot
	return dto.CachedPriceView{
		SupplierProductID: hit.SupplierProductID.String(),
		Kind:              string(hit.Kind),
		CostPrice:         snap.CostPrice,
		ListPrice:         snap.ListPrice,
		Available:         snap.Available,
		StockQty:          snap.StockQty,
		LeadTimeDays:      snap.LeadTimeDays,
		Source:            string(snap.Provenance),
		IsStale:           snap.Stale,
		CachedAt:          snap.FetchedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
