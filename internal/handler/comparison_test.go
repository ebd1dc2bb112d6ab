package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/handler"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// comparisonRouter runs without Redis: the handler skips its result cache
// when no client is wired, which keeps these tests hermetic.
func comparisonRouter(svc *stubComparisonSvc) *gin.Engine {
	h := handler.NewComparisonHandler(svc, nil, time.Minute)
	r := gin.New()
	r.GET("/v1/prices/compare", h.ComparePrices)
	return r
}

func sampleComparison() *dto.ComparisonResponse {
	return &dto.ComparisonResponse{
		Search:          "NYM",
		Quantity:        5,
		TargetMarginPct: decimal.Zero,
		Results: []dto.ComparisonEntry{
			{
				SupplierID:        uuid.New().String(),
				SupplierName:      "Alpha Elektro",
				SupplierProductID: uuid.New().String(),
				SKU:               "NYM-3x15",
				ProductName:       "Cable NYM-J 3x1.5",
				EffectivePrice:    decimal.NewFromInt(100),
				SalePrice:         decimal.NewFromInt(100),
				PriceSource:       "standard",
				Origin:            "live",
				Available:         true,
			},
			{
				SupplierID:        uuid.New().String(),
				SupplierName:      "Beta Grosshandel",
				SupplierProductID: uuid.New().String(),
				SKU:               "NYM-3x15-B",
				ProductName:       "Cable NYM-J 3x1.5",
				EffectivePrice:    decimal.NewFromInt(120),
				SalePrice:         decimal.NewFromInt(120),
				PriceSource:       "standard",
				Origin:            "cache",
				IsStale:           true,
			},
		},
		Excluded:              []dto.ExcludedSupplier{},
		CheapestSupplier:      "Alpha Elektro",
		MostExpensiveSupplier: "Beta Grosshandel",
		PriceSpreadPct:        decimal.NewFromInt(20),
	}
}

func TestComparePrices_OK(t *testing.T) {
	svc := &stubComparisonSvc{resp: sampleComparison()}
	r := comparisonRouter(svc)

	code, env := doJSON(t, r, http.MethodGet, "/v1/prices/compare?search=NYM&quantity=5", nil)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var resp dto.ComparisonResponse
	decodeData(t, env, &resp)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Alpha Elektro", resp.CheapestSupplier)
	assert.Equal(t, "20", resp.PriceSpreadPct.String())

	require.NotNil(t, svc.got)
	assert.Equal(t, "NYM", svc.got.Search)
	assert.Equal(t, 5, svc.got.Quantity)
	assert.Zero(t, svc.got.TargetMarginPct)
}

func TestComparePrices_QueryDefaults(t *testing.T) {
	svc := &stubComparisonSvc{resp: sampleComparison()}
	r := comparisonRouter(svc)

	code, _ := doJSON(t, r, http.MethodGet, "/v1/prices/compare?search=Schalter", nil)

	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, svc.got)
	assert.Equal(t, 1, svc.got.Quantity)
	assert.Zero(t, svc.got.TargetMarginPct)
	assert.Empty(t, svc.got.CustomerID)
}

func TestComparePrices_PassesMarginAndCustomer(t *testing.T) {
	svc := &stubComparisonSvc{resp: sampleComparison()}
	r := comparisonRouter(svc)
	customerID := uuid.New().String()

	code, _ := doJSON(t, r, http.MethodGet,
		"/v1/prices/compare?search=NYM&target_margin=12.5&customer_id="+customerID, nil)

	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, svc.got)
	assert.Equal(t, 12.5, svc.got.TargetMarginPct)
	assert.Equal(t, customerID, svc.got.CustomerID)
}

func TestComparePrices_RejectsShortSearch(t *testing.T) {
	r := comparisonRouter(&stubComparisonSvc{})

	code, env := doJSON(t, r, http.MethodGet, "/v1/prices/compare?search=x", nil)

	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Fields, "Search")
}

func TestComparePrices_RejectsMissingSearch(t *testing.T) {
	r := comparisonRouter(&stubComparisonSvc{})

	code, env := doJSON(t, r, http.MethodGet, "/v1/prices/compare", nil)

	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Fields, "Search")
}

func TestComparePrices_RejectsNegativeMargin(t *testing.T) {
	r := comparisonRouter(&stubComparisonSvc{})

	code, env := doJSON(t, r, http.MethodGet,
		"/v1/prices/compare?search=NYM&target_margin=-5", nil)

	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Fields, "TargetMarginPct")
}

func TestComparePrices_RejectsMalformedCustomer(t *testing.T) {
	r := comparisonRouter(&stubComparisonSvc{})

	code, env := doJSON(t, r, http.MethodGet,
		"/v1/prices/compare?search=NYM&customer_id=xyz", nil)

	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Fields, "CustomerID")
}

func TestComparePrices_CustomerNotFoundMapsTo404(t *testing.T) {
	customerID := uuid.New()
	svc := &stubComparisonSvc{err: service.NewNotFound("customer", customerID)}
	r := comparisonRouter(svc)

	code, env := doJSON(t, r, http.MethodGet,
		"/v1/prices/compare?search=NYM&customer_id="+customerID.String(), nil)

	require.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, env.Error, "customer")
}
