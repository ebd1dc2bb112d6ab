package service

import (
	"context"
	"errors"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/dto"
	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// onlineWindow is how recent the last successful sync must be for a
// supplier to count as online.
const onlineWindow = 24 * time.Hour

// SupplierHealthService derives a display-only health verdict per supplier
// from its recent sync attempts and cache coverage. It observes and never
// decides: the resolution path consults its own fallback chain, not this
// monitor.
type SupplierHealthService interface {
	GetHealth(ctx context.Context, supplierID uuid.UUID) (*dto.SupplierHealthResponse, error)
	ListHealth(ctx context.Context) ([]dto.SupplierHealthResponse, error)
}

type supplierHealthService struct {
	supplierRepo repository.SupplierRepository
	syncLogRepo  repository.SyncLogRepository
	cacheRepo    repository.PriceCacheRepository
	breakers     *infra.BreakerRegistry
	windowSize   int
}

func NewSupplierHealthService(
	supplierRepo repository.SupplierRepository,
	syncLogRepo repository.SyncLogRepository,
	cacheRepo repository.PriceCacheRepository,
	breakers *infra.BreakerRegistry,
	windowSize int,
) SupplierHealthService {
	if windowSize < 1 {
		windowSize = 10
	}
	return &supplierHealthService{
		supplierRepo: supplierRepo,
		syncLogRepo:  syncLogRepo,
		cacheRepo:    cacheRepo,
		breakers:     breakers,
		windowSize:   windowSize,
	}
}

func (s *supplierHealthService) GetHealth(ctx context.Context, supplierID uuid.UUID) (*dto.SupplierHealthResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("supplier", supplierID)
		}
		return nil, err
	}
	return s.buildHealth(ctx, supplier)
}

func (s *supplierHealthService) ListHealth(ctx context.Context) ([]dto.SupplierHealthResponse, error) {
	suppliers, err := s.supplierRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierHealthResponse, 0, len(suppliers))
	for i := range suppliers {
		health, err := s.buildHealth(ctx, &suppliers[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *health)
	}
	return out, nil
}

func (s *supplierHealthService) buildHealth(ctx context.Context, supplier *model.Supplier) (*dto.SupplierHealthResponse, error) {
	logs, err := s.syncLogRepo.ListRecent(ctx, supplier.ID, s.windowSize)
	if err != nil {
		return nil, err
	}

	resp := &dto.SupplierHealthResponse{
		SupplierID:   supplier.ID.String(),
		SupplierName: supplier.Name,
		SupplierCode: supplier.Code,
		Status:       "offline",
		CircuitState: "unknown",
		WindowSize:   s.windowSize,
	}

	var successCount, failureCount int
	var totalSuccessMs int64
	var lastSuccess, lastFailure *time.Time
	for i := range logs {
		entry := &logs[i]
		switch entry.Status {
		case model.SyncStatusSuccess:
			successCount++
			totalSuccessMs += entry.DurationMs
			if lastSuccess == nil {
				t := entry.CreatedAt
				lastSuccess = &t
			}
		case model.SyncStatusFailure:
			failureCount++
			if lastFailure == nil {
				t := entry.CreatedAt
				lastFailure = &t
			}
		}
	}
	resp.FailureCount = failureCount
	if successCount > 0 {
		resp.AverageResponseMs = totalSuccessMs / int64(successCount)
	}
	if lastSuccess != nil {
		formatted := lastSuccess.UTC().Format("2006-01-02T15:04:05Z")
		resp.LastSuccessAt = &formatted
		if time.Since(*lastSuccess) <= onlineWindow {
			resp.Status = "online"
		}
	}
	if lastFailure != nil {
		formatted := lastFailure.UTC().Format("2006-01-02T15:04:05Z")
		resp.LastFailureAt = &formatted
	}

	total, stale, err := s.cacheRepo.CountBySupplier(ctx, supplier.ID)
	if err != nil {
		return nil, err
	}
	resp.CachedRows = total
	resp.StaleRows = stale
	switch {
	case total == 0:
		resp.CacheStatus = "missing"
	case stale*2 > total:
		// Majority stale
		resp.CacheStatus = "stale"
	default:
		resp.CacheStatus = "fresh"
	}

	if s.breakers != nil {
		resp.CircuitState = s.breakers.For(supplier.ID).State().String()
	}
	return resp, nil
}
