package worker

// stale_sweep.go
// Background goroutine that periodically flips the stale flag on cache rows
// older than the configured max age, then enqueues refresh jobs for a batch
// of stale rows. Suppliers whose circuit breaker is open are skipped — a
// refresh against a downed API would only feed the DLQ.

import (
	"context"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"

	"github.com/rs/zerolog/log"
)

const sweepBatchSize = 100

// StaleSweepConfig holds all dependencies for the sweep goroutine.
// Dispatcher and Breakers may be nil: then the sweep only marks rows stale
// without scheduling refreshes (the one-shot CLI runs it that way).
type StaleSweepConfig struct {
	CacheRepo  repository.PriceCacheRepository
	Dispatcher *Dispatcher
	Breakers   *infra.BreakerRegistry
	MaxAge     time.Duration
	Interval   time.Duration
}

// StartStaleSweep launches a background goroutine that runs one sweep per
// interval. It respects the context for graceful shutdown.
func StartStaleSweep(ctx context.Context, cfg StaleSweepConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("stale_sweep: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stale_sweep: shutting down")
				return
			case <-ticker.C:
				SweepOnce(ctx, cfg)
			}
		}
	}()
}

// SweepOnce runs a single mark-and-enqueue pass and returns how many rows
// it marked stale and how many refresh jobs it enqueued.
func SweepOnce(ctx context.Context, cfg StaleSweepConfig) (marked int64, enqueued int) {
	cutoff := time.Now().Add(-cfg.MaxAge)
	marked, err := cfg.CacheRepo.MarkStaleOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("stale_sweep: mark stale failed")
		return 0, 0
	}
	if marked > 0 {
		log.Info().Int64("marked", marked).Time("cutoff", cutoff).Msg("stale_sweep: rows marked stale")
	}

	if cfg.Dispatcher == nil {
		return marked, 0
	}

	rows, err := cfg.CacheRepo.ListStale(ctx, sweepBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("stale_sweep: list stale failed")
		return marked, 0
	}

	for i := range rows {
		row := &rows[i]
		// Skip suppliers that are fast-failing anyway
		if cfg.Breakers != nil && cfg.Breakers.For(row.SupplierID).State() == infra.CBOpen {
			continue
		}
		payload := PriceRefreshJobPayload{SupplierProductID: row.SupplierProductID.String()}
		if err := cfg.Dispatcher.EnqueuePriceRefresh(ctx, payload); err != nil {
			log.Warn().Err(err).Msg("stale_sweep: enqueue failed")
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		log.Info().Int("enqueued", enqueued).Msg("stale_sweep: refresh jobs enqueued")
	}
	return marked, enqueued
}
