package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// searchLimit caps how many catalog entries one comparison fans out over.
const searchLimit = 50

// PriceComparisonService resolves the same article across every supplier
// that lists it and ranks the offers by customer-facing sale price.
type PriceComparisonService interface {
	Compare(ctx context.Context, req dto.ComparePricesQuery) (*dto.ComparisonResponse, error)
}

type priceComparisonService struct {
	productRepo repository.SupplierProductRepository
	resolver    PriceResolverService
	maxParallel int
}

func NewPriceComparisonService(
	productRepo repository.SupplierProductRepository,
	resolver PriceResolverService,
	maxParallel int,
) PriceComparisonService {
	if maxParallel < 1 {
		maxParallel = 8
	}
	return &priceComparisonService{
		productRepo: productRepo,
		resolver:    resolver,
		maxParallel: maxParallel,
	}
}

// ── Compare ───────────────────────────────────────────────────────────────────
// One slow or dead supplier must never sink the whole comparison: every
// matching catalog entry is resolved independently (each with its own
// live-or-cache fallback), failures are collected as exclusions, and the
// survivors are ranked. Only an empty search term is a request-level error.

func (s *priceComparisonService) Compare(ctx context.Context, req dto.ComparePricesQuery) (*dto.ComparisonResponse, error) {
	if req.Search == "" {
		return nil, NewValidation("search term is required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if req.TargetMarginPct < 0 {
		return nil, NewValidation("target_margin must not be negative")
	}

	customerID := uuid.Nil
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, NewValidation("customer_id is not a valid UUID")
		}
		customerID = id
	}

	products, err := s.productRepo.Search(ctx, req.Search, searchLimit)
	if err != nil {
		return nil, err
	}

	targetMargin := decimal.NewFromFloat(req.TargetMarginPct)
	resp := &dto.ComparisonResponse{
		Search:          req.Search,
		Quantity:        req.Quantity,
		TargetMarginPct: targetMargin,
		Results:         []dto.ComparisonEntry{},
		Excluded:        []dto.ExcludedSupplier{},
		PriceSpreadPct:  decimal.Zero,
	}
	if len(products) == 0 {
		return resp, nil
	}

	// Bounded fan-out: each worker owns the result slot of the index it
	// pulled, so no mutex is needed.
	results := make([]*dto.ResolvedPriceResponse, len(products))
	resolveErrs := make([]error, len(products))

	workers := s.maxParallel
	if workers > len(products) {
		workers = len(products)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], resolveErrs[i] = s.resolver.Resolve(ctx, customerID, products[i].ID, req.Quantity)
			}
		}()
	}
	for i := range products {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// A bad customer is a request problem, not a supplier problem.
	for _, rErr := range resolveErrs {
		var nf *NotFoundError
		if errors.As(rErr, &nf) && nf.Resource == "customer" {
			return nil, rErr
		}
	}

	marginFactor := decimal.NewFromInt(1).Add(targetMargin.Div(decimal.NewFromInt(100)))
	for i := range products {
		if resolveErrs[i] != nil {
			resp.Excluded = append(resp.Excluded, dto.ExcludedSupplier{
				SupplierName:      supplierNameOf(&products[i]),
				SupplierProductID: products[i].ID.String(),
				Reason:            resolveErrs[i].Error(),
			})
			continue
		}
		r := results[i]
		resp.Results = append(resp.Results, dto.ComparisonEntry{
			SupplierID:        r.SupplierID,
			SupplierName:      r.SupplierName,
			SupplierProductID: r.SupplierProductID,
			SKU:               r.SKU,
			ProductName:       r.ProductName,
			EffectivePrice:    r.EffectivePrice,
			SalePrice:         r.EffectivePrice.Mul(marginFactor).Round(2),
			PriceSource:       r.PriceSource,
			Origin:            r.Origin,
			IsStale:           r.IsStale,
			Available:         r.Available,
			StockQty:          r.StockQty,
			LeadTimeDays:      r.LeadTimeDays,
			Warning:           r.Warning,
		})
	}

	rankEntries(resp.Results)

	if n := len(resp.Results); n > 0 {
		resp.CheapestSupplier = resp.Results[0].SupplierName
		resp.MostExpensiveSupplier = resp.Results[n-1].SupplierName
		if n >= 2 {
			min := resp.Results[0].SalePrice
			max := resp.Results[n-1].SalePrice
			if min.IsPositive() {
				resp.PriceSpreadPct = max.Sub(min).Div(min).Mul(decimal.NewFromInt(100)).Round(2)
			}
		}
	}
	return resp, nil
}

// rankEntries orders offers cheapest first. Price ties prefer available
// stock, then fresh data over stale.
func rankEntries(entries []dto.ComparisonEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := a.SalePrice.Cmp(b.SalePrice); c != 0 {
			return c < 0
		}
		if a.Available != b.Available {
			return a.Available
		}
		if a.IsStale != b.IsStale {
			return !a.IsStale
		}
		return false
	})
}

func supplierNameOf(p *model.SupplierProduct) string {
	if p.Supplier != nil {
		return p.Supplier.Name
	}
	return p.SupplierID.String()
}
