package handler

import (
	"net/http"

	"github.com/wukjhc-create/elta-crm-sub009/internal/apierror"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuppliersHandler exposes the health board. Display only: nothing here
// feeds back into price resolution.
type SuppliersHandler struct {
	svc service.SupplierHealthService
}

func NewSuppliersHandler(svc service.SupplierHealthService) *SuppliersHandler {
	return &SuppliersHandler{svc: svc}
}

// ListHealth godoc
// @Summary      Salud de todos los proveedores
// @Description  Returns the sync health verdict for every active supplier: online/offline, failure counts, average latency, cache freshness and circuit state.
// @Tags         suppliers
// @Produce      json
// @Success      200 {object} dto.Result{data=[]dto.SupplierHealthResponse}
// @Failure      500 {object} apierror.APIError
// @Router       /v1/suppliers/health [get]
func (h *SuppliersHandler) ListHealth(c *gin.Context) {
	resp, err := h.svc.ListHealth(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// GetHealth godoc
// @Summary      Salud de un proveedor
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier UUID"
// @Success      200 {object} dto.Result{data=dto.SupplierHealthResponse}
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/suppliers/{id}/health [get]
func (h *SuppliersHandler) GetHealth(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid supplier id"))
		return
	}
	resp, err := h.svc.GetHealth(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}
