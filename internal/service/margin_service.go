package service

import (
	"context"
	"errors"
	"sort"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// historySampleLimit caps how many accepted prices feed the suggestion
// percentile.
const historySampleLimit = 50

// MarginService analyzes quote profitability and suggests sale prices.
// Analyze is pure calculation over the prices it is handed — it never
// re-resolves them; Suggest additionally consults accepted price history.
// The accepted-price records that history is built from are written and
// listed here too.
type MarginService interface {
	Analyze(req dto.MarginAnalysisRequest) (*dto.MarginAnalysisResponse, error)
	Suggest(ctx context.Context, req dto.SuggestPriceRequest) (*dto.SuggestPriceResponse, error)
	RecordAccepted(ctx context.Context, req dto.RecordAcceptedPriceRequest) (*dto.AcceptedPriceResponse, error)
	ListAccepted(ctx context.Context, query dto.PriceHistoryQuery) (*dto.PriceHistoryListResponse, error)
}

type marginService struct {
	acceptedRepo repository.AcceptedPriceRepository
	productRepo  repository.SupplierProductRepository
	minMarginPct decimal.Decimal
}

func NewMarginService(
	acceptedRepo repository.AcceptedPriceRepository,
	productRepo repository.SupplierProductRepository,
	minMarginPct float64,
) MarginService {
	return &marginService{
		acceptedRepo: acceptedRepo,
		productRepo:  productRepo,
		minMarginPct: decimal.NewFromFloat(minMarginPct),
	}
}

func (s *marginService) Analyze(req dto.MarginAnalysisRequest) (*dto.MarginAnalysisResponse, error) {
	if len(req.Lines) == 0 {
		return nil, NewValidation("at least one line is required")
	}
	minMargin := s.minMarginPct
	if req.MinMarginPct != nil {
		minMargin = decimal.NewFromFloat(*req.MinMarginPct)
	}

	hundred := decimal.NewFromInt(100)
	resp := &dto.MarginAnalysisResponse{
		Lines:        make([]dto.MarginLineResult, 0, len(req.Lines)),
		MinMarginPct: minMargin,
	}

	for i := range req.Lines {
		line := req.Lines[i]
		if line.CostPrice.IsNegative() || line.SalePrice.IsNegative() {
			return nil, NewValidation("prices must not be negative (line %d)", i+1)
		}
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		qtyDec := decimal.NewFromInt(int64(qty))

		unitMargin := line.SalePrice.Sub(line.CostPrice)
		var marginPct decimal.Decimal
		switch {
		case line.CostPrice.IsPositive():
			marginPct = unitMargin.Div(line.CostPrice).Mul(hundred).Round(2)
		case line.SalePrice.IsPositive():
			// Zero cost with revenue: treat as full margin.
			marginPct = hundred
		default:
			marginPct = decimal.Zero
		}

		below := marginPct.LessThan(minMargin)
		if below {
			resp.BelowMinimumCount++
		}
		resp.Lines = append(resp.Lines, dto.MarginLineResult{
			Description:  line.Description,
			Quantity:     qty,
			CostPrice:    line.CostPrice,
			SalePrice:    line.SalePrice,
			MarginAmount: unitMargin.Mul(qtyDec).Round(2),
			MarginPct:    marginPct,
			BelowMinimum: below,
		})

		resp.TotalCost = resp.TotalCost.Add(line.CostPrice.Mul(qtyDec))
		resp.TotalSale = resp.TotalSale.Add(line.SalePrice.Mul(qtyDec))
	}

	resp.TotalMarginAmount = resp.TotalSale.Sub(resp.TotalCost).Round(2)
	if resp.TotalCost.IsPositive() {
		resp.OverallMarginPct = resp.TotalMarginAmount.Div(resp.TotalCost).Mul(hundred).Round(2)
	}
	return resp, nil
}

// Suggest derives a sale price from cost and target margin, then lets the
// accepted price history raise it: when contractors have routinely said yes
// to more, quoting the floor leaves money on the table. History never
// lowers the suggestion below the target margin.
func (s *marginService) Suggest(ctx context.Context, req dto.SuggestPriceRequest) (*dto.SuggestPriceResponse, error) {
	if !req.CostPrice.IsPositive() {
		return nil, NewValidation("cost_price must be positive")
	}
	if req.TargetMarginPct < 0 {
		return nil, NewValidation("target_margin_pct must not be negative")
	}

	hundred := decimal.NewFromInt(100)
	target := decimal.NewFromFloat(req.TargetMarginPct)
	suggested := req.CostPrice.Mul(decimal.NewFromInt(1).Add(target.Div(hundred))).Round(2)

	resp := &dto.SuggestPriceResponse{
		CostPrice:       req.CostPrice,
		TargetMarginPct: target,
	}

	if req.SupplierProductID != nil && s.acceptedRepo != nil {
		productID, err := uuid.Parse(*req.SupplierProductID)
		if err != nil {
			return nil, NewValidation("supplier_product_id is not a valid UUID")
		}
		history, err := s.acceptedRepo.RecentPrices(ctx, productID, historySampleLimit)
		if err != nil {
			return nil, err
		}
		resp.HistoricalSamples = len(history)
		if len(history) > 0 {
			p75 := percentile(history, 75)
			resp.P75AcceptedPrice = &p75
			if p75.GreaterThan(suggested) {
				suggested = p75
			}
		}
	}

	resp.SuggestedPrice = suggested
	resp.MarginPct = suggested.Sub(req.CostPrice).Div(req.CostPrice).Mul(hundred).Round(2)
	return resp, nil
}

// RecordAccepted stores one price a customer said yes to. Future
// suggestions for the product see it immediately.
func (s *marginService) RecordAccepted(ctx context.Context, req dto.RecordAcceptedPriceRequest) (*dto.AcceptedPriceResponse, error) {
	productID, err := uuid.Parse(req.SupplierProductID)
	if err != nil {
		return nil, NewValidation("supplier_product_id is not a valid UUID")
	}
	if !req.AcceptedPrice.IsPositive() {
		return nil, NewValidation("accepted_price must be positive")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("supplier product", productID)
		}
		return nil, err
	}

	rec := &model.AcceptedPrice{
		SupplierProductID: productID,
		Price:             req.AcceptedPrice,
	}
	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, NewValidation("customer_id is not a valid UUID")
		}
		rec.CustomerID = &customerID
	}
	if err := s.acceptedRepo.Record(ctx, rec); err != nil {
		return nil, err
	}
	return acceptedToResponse(rec), nil
}

func (s *marginService) ListAccepted(ctx context.Context, query dto.PriceHistoryQuery) (*dto.PriceHistoryListResponse, error) {
	productID, err := uuid.Parse(query.SupplierProductID)
	if err != nil {
		return nil, NewValidation("supplier_product_id is not a valid UUID")
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	rows, total, err := s.acceptedRepo.ListByProduct(ctx, productID, query.Page, query.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AcceptedPriceResponse, 0, len(rows))
	for i := range rows {
		items = append(items, *acceptedToResponse(&rows[i]))
	}
	return &dto.PriceHistoryListResponse{
		Data:  items,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

func acceptedToResponse(rec *model.AcceptedPrice) *dto.AcceptedPriceResponse {
	resp := &dto.AcceptedPriceResponse{
		ID:                rec.ID.String(),
		SupplierProductID: rec.SupplierProductID.String(),
		Price:             rec.Price,
		CreatedAt:         rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if rec.CustomerID != nil {
		id := rec.CustomerID.String()
		resp.CustomerID = &id
	}
	return resp
}

// percentile computes the nearest-rank percentile over a copy of values.
func percentile(values []decimal.Decimal, p int) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
