package worker

// refresh_worker.go
// Processes cache refresh jobs from QueuePriceRefresh: fetch one live price
// and overwrite the product's cache row. Runs with exponential backoff
// (max 3 attempts); jobs that still fail land in the DLQ. This worker is
// the only place price fetches are retried — the synchronous resolution
// path never retries, it falls back.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxRefreshAttempts = 3

// PriceRefreshJobPayload is the job envelope sent to QueuePriceRefresh.
type PriceRefreshJobPayload struct {
	SupplierProductID string `json:"supplier_product_id"`
}

// CacheWriter is the slice of the cache service the worker needs. Declared
// here so the worker package does not import the service package.
type CacheWriter interface {
	Put(ctx context.Context, supplierID, supplierProductID uuid.UUID, snap model.PriceSnapshot, source model.CacheSource) error
}

// RefreshWorker re-fetches supplier prices in the background and keeps the
// fallback cache warm.
type RefreshWorker struct {
	client      infra.SupplierPriceClient
	productRepo repository.SupplierProductRepository
	cache       CacheWriter
	syncLogRepo repository.SyncLogRepository
	dispatcher  *Dispatcher
}

func NewRefreshWorker(
	client infra.SupplierPriceClient,
	productRepo repository.SupplierProductRepository,
	cache CacheWriter,
	syncLogRepo repository.SyncLogRepository,
	dispatcher *Dispatcher,
) *RefreshWorker {
	return &RefreshWorker{
		client:      client,
		productRepo: productRepo,
		cache:       cache,
		syncLogRepo: syncLogRepo,
		dispatcher:  dispatcher,
	}
}

// Process handles a single refresh job:
//  1. Parse PriceRefreshJobPayload from the job envelope
//  2. Load the supplier product (with its supplier)
//  3. Fetch the live price with exponential backoff (max 3 attempts)
//  4. Record the attempt in the sync log
//  5. Overwrite the cache row, catalog columns follow best-effort
func (w *RefreshWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload PriceRefreshJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("refresh_worker: invalid payload")
		return
	}

	productID, err := uuid.Parse(payload.SupplierProductID)
	if err != nil {
		log.Error().Str("supplier_product_id", payload.SupplierProductID).Msg("refresh_worker: invalid supplier_product_id")
		return
	}

	product, err := w.productRepo.FindByID(ctx, productID)
	if err != nil {
		log.Error().Err(err).Str("supplier_product_id", payload.SupplierProductID).Msg("refresh_worker: product not found")
		return
	}
	if product.Supplier == nil || !product.Active {
		log.Warn().Str("supplier_product_id", payload.SupplierProductID).Msg("refresh_worker: product inactive or unlinked, skipping")
		return
	}

	start := time.Now()
	var quote *infra.SupplierPriceQuote
	fetchErr := withRetry(ctx, maxRefreshAttempts, func(attempt int) error {
		q, err := w.client.FetchPrice(ctx, product.Supplier, product.SKU)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("supplier", product.Supplier.Code).
				Str("sku", product.SKU).
				Msg("refresh_worker: fetch attempt failed")
			return err
		}
		quote = q
		return nil
	})
	durationMs := time.Since(start).Milliseconds()

	if fetchErr != nil {
		detail := fetchErr.Error()
		logEntry := &model.SupplierSyncLog{
			SupplierID: product.SupplierID,
			Status:     model.SyncStatusFailure,
			DurationMs: durationMs,
			Detail:     &detail,
		}
		if err := w.syncLogRepo.Append(ctx, logEntry); err != nil {
			log.Warn().Err(err).Msg("refresh_worker: sync log append failed")
		}
		if w.dispatcher != nil {
			w.dispatcher.SendToDLQ(ctx, QueuePriceRefresh, JobTypePriceRefresh, raw, detail, maxRefreshAttempts)
		}
		return
	}

	if err := w.syncLogRepo.Append(ctx, &model.SupplierSyncLog{
		SupplierID: product.SupplierID,
		Status:     model.SyncStatusSuccess,
		DurationMs: durationMs,
	}); err != nil {
		log.Warn().Err(err).Msg("refresh_worker: sync log append failed")
	}

	snap := quote.Snapshot(time.Now())
	if err := w.cache.Put(ctx, product.SupplierID, product.ID, snap, model.CacheSourceAPI); err != nil {
		// A failed cache write never kills the job — the fetch result is
		// still reflected in the sync log.
		log.Warn().Err(err).Str("supplier_product_id", product.ID.String()).Msg("refresh_worker: cache write failed")
		return
	}
	if err := w.productRepo.MarkSynced(ctx, product.ID, snap); err != nil {
		log.Warn().Err(err).Str("supplier_product_id", product.ID.String()).Msg("refresh_worker: catalog sync update failed")
	}

	log.Info().
		Str("supplier", product.Supplier.Code).
		Str("sku", product.SKU).
		Int64("duration_ms", durationMs).
		Msg("refresh_worker: cache refreshed")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
