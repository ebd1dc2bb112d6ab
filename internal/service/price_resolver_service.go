package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"
	"github.com/wukjhc-create/elta-crm-sub009/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Price source labels: which customer pricing layer decided the price.
const (
	PriceSourceStandard         = "standard"
	PriceSourceCustomerSupplier = "customer_supplier"
	PriceSourceCustomerProduct  = "customer_product"
)

type PriceResolverService interface {
	// Resolve produces the effective unit price for one product, customer
	// and quantity. Pass uuid.Nil as customerID for anonymous pricing.
	Resolve(ctx context.Context, customerID, supplierProductID uuid.UUID, quantity int) (*dto.ResolvedPriceResponse, error)
}

type priceResolverService struct {
	productRepo   repository.SupplierProductRepository
	customerRepo  repository.CustomerRepository
	bracketRepo   repository.VolumeBracketRepository
	syncLogRepo   repository.SyncLogRepository
	cache         PriceCacheService
	client        infra.SupplierPriceClient
	dispatcher    *worker.Dispatcher
	timeout       time.Duration
	maxAge        time.Duration
	defaultMargin decimal.Decimal
}

func NewPriceResolverService(
	productRepo repository.SupplierProductRepository,
	customerRepo repository.CustomerRepository,
	bracketRepo repository.VolumeBracketRepository,
	syncLogRepo repository.SyncLogRepository,
	cache PriceCacheService,
	client infra.SupplierPriceClient,
	dispatcher *worker.Dispatcher,
	timeout time.Duration,
	maxAge time.Duration,
	defaultMarginPct float64,
) PriceResolverService {
	if timeout <= 0 {
		timeout = DefaultPriceTimeout
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &priceResolverService{
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		bracketRepo:   bracketRepo,
		syncLogRepo:   syncLogRepo,
		cache:         cache,
		client:        client,
		dispatcher:    dispatcher,
		timeout:       timeout,
		maxAge:        maxAge,
		defaultMargin: decimal.NewFromFloat(defaultMarginPct),
	}
}

// ── Resolve ───────────────────────────────────────────────────────────────────
// Resolution pipeline:
//   1. Validate input, load the product with its supplier
//   2. Source a base price: live API raced against the timeout, cache (then
//      catalog) as fallback — ErrAllSourcesFailed only when all three are out
//   3. Apply the customer layer: product override > supplier agreement > tier
//   4. Apply the volume bracket (skipped after an absolute override)
//   5. Clamp at zero and assemble the response with source metadata plus the
//      quoting terms (agreement custom margin, else house margin adjusted by
//      the tier)

func (s *priceResolverService) Resolve(ctx context.Context, customerID, supplierProductID uuid.UUID, quantity int) (*dto.ResolvedPriceResponse, error) {
	if quantity < 1 {
		return nil, NewValidation("quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, supplierProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("supplier product", supplierProductID)
		}
		return nil, err
	}
	if !product.Active || product.Supplier == nil {
		return nil, NewNotFound("supplier product", supplierProductID)
	}

	// 2. Base price with fallback
	res, err := ExecuteWithFallback(ctx, s.timeout,
		func(callCtx context.Context) (model.PriceSnapshot, error) {
			return s.fetchLive(callCtx, product)
		},
		func() (model.PriceSnapshot, bool) {
			return s.cachedFallback(ctx, product)
		},
	)
	if err != nil {
		return nil, err
	}
	basePrice := res.Snapshot.CostPrice
	if basePrice.IsNegative() {
		return nil, NewValidation(fmt.Sprintf("base cost price %s is negative", basePrice))
	}

	// 3. Customer layer
	discountPct := decimal.Zero
	marginPct := s.defaultMargin
	marginPinned := false
	priceSource := PriceSourceStandard
	var absolute, pinnedSale *decimal.Decimal

	var tier *model.CustomerTier
	if customerID != uuid.Nil {
		customer, err := s.customerRepo.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFound("customer", customerID)
			}
			return nil, err
		}
		if !customer.Active {
			return nil, NewNotFound("customer", customerID)
		}
		tier = customer.Tier

		now := time.Now()
		override, oerr := s.customerRepo.FindOverride(ctx, customerID, supplierProductID)
		if oerr != nil && !errors.Is(oerr, gorm.ErrRecordNotFound) {
			return nil, oerr
		}
		agreement, aerr := s.customerRepo.FindAgreement(ctx, customerID, product.SupplierID)
		if aerr != nil && !errors.Is(aerr, gorm.ErrRecordNotFound) {
			return nil, aerr
		}
		hasOverride := oerr == nil && override.ActiveAt(now)
		hasAgreement := aerr == nil && agreement.ActiveAt(now)

		switch {
		case hasOverride:
			priceSource = PriceSourceCustomerProduct
			if override.Absolute() {
				absolute = override.UnitPrice
			} else if override.DiscountPct != nil {
				discountPct = *override.DiscountPct
			}
			pinnedSale = override.ListPrice
		case hasAgreement:
			priceSource = PriceSourceCustomerSupplier
			discountPct = agreement.DiscountPct
		}

		// The agreement's negotiated margin applies even when a product
		// override decided the purchase price.
		if hasAgreement && agreement.CustomMarginPct != nil {
			marginPct = *agreement.CustomMarginPct
			marginPinned = true
		}
	}

	// Customers without a tier, and anonymous lookups, price on the
	// standard tier. A missing seed row degrades to zero discount.
	if tier == nil {
		t, terr := s.customerRepo.FindTierByName(ctx, model.TierStandard)
		switch {
		case terr == nil:
			tier = t
		case !errors.Is(terr, gorm.ErrRecordNotFound):
			return nil, terr
		}
	}
	if tier != nil {
		if priceSource == PriceSourceStandard {
			discountPct = tier.DiscountPct
		}
		if !marginPinned {
			marginPct = marginPct.Add(tier.MarginAdjustmentPct)
		}
	}

	// 4. Volume bracket — additive with the customer discount, unless an
	// absolute override fixed the price already.
	volumePct := decimal.Zero
	var effective decimal.Decimal
	if absolute != nil {
		effective = *absolute
	} else {
		volumePct, err = s.volumeDiscount(ctx, quantity)
		if err != nil {
			return nil, err
		}
		totalPct := discountPct.Add(volumePct)
		factor := decimal.NewFromInt(1).Sub(totalPct.Div(decimal.NewFromInt(100)))
		effective = basePrice.Mul(factor).Round(2)
	}

	// 5. Clamp — stacked discounts past 100% never go negative.
	if effective.IsNegative() {
		effective = decimal.Zero
	}

	// Sale-side terms: a pinned list price wins and reprices the margin,
	// otherwise the margin goes on top of the effective purchase price.
	hundred := decimal.NewFromInt(100)
	suggestedSale := effective.Mul(decimal.NewFromInt(1).Add(marginPct.Div(hundred))).Round(2)
	if pinnedSale != nil {
		suggestedSale = *pinnedSale
		if effective.IsPositive() {
			marginPct = suggestedSale.Sub(effective).Div(effective).Mul(hundred).Round(2)
		}
	}
	if suggestedSale.IsNegative() {
		suggestedSale = decimal.Zero
	}

	qty := decimal.NewFromInt(int64(quantity))
	return &dto.ResolvedPriceResponse{
		SupplierProductID:  product.ID.String(),
		SupplierID:         product.SupplierID.String(),
		SupplierName:       product.Supplier.Name,
		SKU:                product.SKU,
		ProductName:        product.Name,
		Quantity:           quantity,
		BasePrice:          basePrice,
		EffectivePrice:     effective,
		LineTotal:          effective.Mul(qty).Round(2),
		DiscountPct:        discountPct,
		VolumeDiscountPct:  volumePct,
		SuggestedMarginPct: marginPct,
		SuggestedSalePrice: suggestedSale,
		PriceSource:        priceSource,
		Origin:             res.Origin,
		Provenance:         string(res.Snapshot.Provenance),
		IsStale:            res.IsStale,
		Warning:            res.Warning,
		Available:          res.Snapshot.Available,
		StockQty:           res.Snapshot.StockQty,
		LeadTimeDays:       res.Snapshot.LeadTimeDays,
		FetchedAt:          res.Snapshot.FetchedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, nil
}

// fetchLive calls the supplier API and, on success, refreshes the cache and
// sync log. Side effects run on a background context so a client that
// disconnected mid-request cannot abort them; their failures are logged and
// swallowed — a dead cache never fails a resolution that has a price.
func (s *priceResolverService) fetchLive(ctx context.Context, product *model.SupplierProduct) (model.PriceSnapshot, error) {
	start := time.Now()
	quote, err := s.client.FetchPrice(ctx, product.Supplier, product.SKU)
	durationMs := time.Since(start).Milliseconds()

	if err == nil && quote.CostPrice.IsNegative() {
		err = fmt.Errorf("supplier returned negative price %s", quote.CostPrice)
	}

	if err != nil {
		s.appendSyncLog(product.SupplierID, model.SyncStatusFailure, durationMs, err)
		return model.PriceSnapshot{}, &UpstreamError{SupplierID: product.SupplierID, Err: err}
	}

	s.appendSyncLog(product.SupplierID, model.SyncStatusSuccess, durationMs, nil)

	snap := quote.Snapshot(time.Now())
	if err := s.cache.Put(context.Background(), product.SupplierID, product.ID, snap, model.CacheSourceAPI); err != nil {
		log.Warn().Err(err).Str("supplier_product_id", product.ID.String()).Msg("price_resolver: cache write failed")
	}
	return snap, nil
}

// cachedFallback serves the dedicated cache row, then the catalog's
// last-synced price. Either way a refresh job is enqueued so the next
// lookup has fresher data.
func (s *priceResolverService) cachedFallback(ctx context.Context, product *model.SupplierProduct) (model.PriceSnapshot, bool) {
	defer s.enqueueRefresh(product.ID)

	hit, err := s.cache.Get(ctx, product.ID)
	if err == nil {
		return hit.Snapshot, true
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		log.Warn().Err(err).Str("supplier_product_id", product.ID.String()).Msg("price_resolver: cache read failed, trying catalog")
	}
	return product.CatalogSnapshot(time.Now(), s.maxAge)
}

func (s *priceResolverService) volumeDiscount(ctx context.Context, quantity int) (decimal.Decimal, error) {
	brackets, err := s.bracketRepo.ListOrdered(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for i := range brackets {
		if brackets[i].Matches(quantity) {
			return brackets[i].DiscountPct, nil
		}
	}
	return decimal.Zero, nil
}

func (s *priceResolverService) appendSyncLog(supplierID uuid.UUID, status model.SyncStatus, durationMs int64, cause error) {
	entry := &model.SupplierSyncLog{
		SupplierID: supplierID,
		Status:     status,
		DurationMs: durationMs,
	}
	if cause != nil {
		detail := cause.Error()
		entry.Detail = &detail
	}
	if err := s.syncLogRepo.Append(context.Background(), entry); err != nil {
		log.Warn().Err(err).Str("supplier_id", supplierID.String()).Msg("price_resolver: sync log append failed")
	}
}

func (s *priceResolverService) enqueueRefresh(supplierProductID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.PriceRefreshJobPayload{SupplierProductID: supplierProductID.String()}
	_ = s.dispatcher.EnqueuePriceRefresh(context.Background(), payload)
}
