package service

import (
	"context"
	"errors"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CacheHitKind distinguishes where a batch lookup found its price.
type CacheHitKind string

const (
	// CacheHitCached came from a dedicated cache row.
	CacheHitCached CacheHitKind = "cached"
	// CacheHitCatalog came from the catalog's last-synced price because no
	// cache row exists. Batch lookups only; single Get stays strict.
	CacheHitCatalog CacheHitKind = "catalog"
)

// CacheHit is one resolved cache entry. Kind tells the caller explicitly
// which source produced the snapshot instead of leaving it to guess from
// missing fields.
type CacheHit struct {
	SupplierProductID uuid.UUID
	Kind              CacheHitKind
	Snapshot          model.PriceSnapshot
}

// PriceCacheService is the staleness-aware price cache. Get is strict (a
// miss is a NotFoundError), GetBatch is tolerant (missing entries fall back
// to catalog prices or are skipped), Put refreshes the single row per
// product, Invalidate flips stale flags without deleting data.
type PriceCacheService interface {
	Get(ctx context.Context, supplierProductID uuid.UUID) (*CacheHit, error)
	GetBatch(ctx context.Context, supplierProductIDs []uuid.UUID) (map[uuid.UUID]CacheHit, error)
	Put(ctx context.Context, supplierID, supplierProductID uuid.UUID, snap model.PriceSnapshot, source model.CacheSource) error
	Invalidate(ctx context.Context, supplierProductIDs []uuid.UUID) (int64, error)
	InvalidateSupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
}

type priceCacheService struct {
	cacheRepo   repository.PriceCacheRepository
	productRepo repository.SupplierProductRepository
	maxAge      time.Duration
}

func NewPriceCacheService(
	cacheRepo repository.PriceCacheRepository,
	productRepo repository.SupplierProductRepository,
	maxAge time.Duration,
) PriceCacheService {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &priceCacheService{cacheRepo: cacheRepo, productRepo: productRepo, maxAge: maxAge}
}

func (s *priceCacheService) Get(ctx context.Context, supplierProductID uuid.UUID) (*CacheHit, error) {
	rec, err := s.cacheRepo.FindByProductID(ctx, supplierProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("cached price", supplierProductID)
		}
		return nil, err
	}
	return &CacheHit{
		SupplierProductID: supplierProductID,
		Kind:              CacheHitCached,
		Snapshot:          rec.Snapshot(time.Now(), s.maxAge),
	}, nil
}

// GetBatch never fails on individual misses. Products without a cache row
// degrade to their catalog's last-synced price; products without either are
// simply absent from the result.
func (s *priceCacheService) GetBatch(ctx context.Context, supplierProductIDs []uuid.UUID) (map[uuid.UUID]CacheHit, error) {
	hits := make(map[uuid.UUID]CacheHit, len(supplierProductIDs))
	if len(supplierProductIDs) == 0 {
		return hits, nil
	}

	rows, err := s.cacheRepo.FindByProductIDs(ctx, supplierProductIDs)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range rows {
		rec := &rows[i]
		hits[rec.SupplierProductID] = CacheHit{
			SupplierProductID: rec.SupplierProductID,
			Kind:              CacheHitCached,
			Snapshot:          rec.Snapshot(now, s.maxAge),
		}
	}

	var missing []uuid.UUID
	for _, id := range supplierProductIDs {
		if _, ok := hits[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return hits, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for i := range products {
		p := &products[i]
		snap, ok := p.CatalogSnapshot(now, s.maxAge)
		if !ok {
			continue
		}
		hits[p.ID] = CacheHit{
			SupplierProductID: p.ID,
			Kind:              CacheHitCatalog,
			Snapshot:          snap,
		}
	}
	return hits, nil
}

// Put is idempotent per product: repeated writes refresh the same row and
// reset its stale flag.
func (s *priceCacheService) Put(ctx context.Context, supplierID, supplierProductID uuid.UUID, snap model.PriceSnapshot, source model.CacheSource) error {
	if snap.CostPrice.IsNegative() {
		return NewValidation("cached cost price must not be negative")
	}
	rec := model.NewCachedPrice(supplierID, supplierProductID, snap, source)
	return s.cacheRepo.Upsert(ctx, rec)
}

// Invalidate marks entries stale so the next resolution prefers a live
// fetch. Rows are kept: a stale price still beats no price when the
// supplier is down.
func (s *priceCacheService) Invalidate(ctx context.Context, supplierProductIDs []uuid.UUID) (int64, error) {
	if len(supplierProductIDs) == 0 {
		return 0, NewValidation("at least one supplier_product_id is required")
	}
	return s.cacheRepo.MarkStaleByProductIDs(ctx, supplierProductIDs)
}

func (s *priceCacheService) InvalidateSupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	return s.cacheRepo.MarkStaleBySupplier(ctx, supplierID)
}
