package handler

import (
	"net/http"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"

	"github.com/gin-gonic/gin"
)

// PriceHistoryHandler records and lists accepted prices. The history feeds
// the percentile floor of the price suggestion endpoint.
type PriceHistoryHandler struct {
	svc service.MarginService
}

func NewPriceHistoryHandler(svc service.MarginService) *PriceHistoryHandler {
	return &PriceHistoryHandler{svc: svc}
}

// List godoc
// @Summary      Listar precios aceptados
// @Tags         price-history
// @Produce      json
// @Param        supplier_product_id query string true  "Supplier product UUID"
// @Param        page                query int    false "Page (default 1)"
// @Param        limit               query int    false "Rows per page (default 20, max 100)"
// @Success      200 {object} dto.Result{data=dto.PriceHistoryListResponse}
// @Failure      400 {object} apierror.APIError
// @Router       /v1/price-history [get]
func (h *PriceHistoryHandler) List(c *gin.Context) {
	var query dto.PriceHistoryQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}
	resp, err := h.svc.ListAccepted(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// Record godoc
// @Summary      Registrar precio aceptado
// @Description  Appends an accepted price for a supplier product. Rows are immutable once written.
// @Tags         price-history
// @Accept       json
// @Produce      json
// @Param        body body dto.RecordAcceptedPriceRequest true "Accepted price"
// @Success      201 {object} dto.Result{data=dto.AcceptedPriceResponse}
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/price-history [post]
func (h *PriceHistoryHandler) Record(c *gin.Context) {
	var req dto.RecordAcceptedPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordAccepted(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, resp)
}
