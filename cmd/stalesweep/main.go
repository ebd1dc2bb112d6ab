// cmd/stalesweep/main.go — One-shot stale sweep for cron/CI use.
// Marks cache rows older than CACHE_MAX_AGE_HOURS as stale and exits.
// Usage: go run cmd/stalesweep/main.go
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/wukjhc-create/elta-crm-sub009/internal/config"
	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"
	"github.com/wukjhc-create/elta-crm-sub009/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	// No dispatcher and no breakers: the one-shot run only flips flags,
	// refreshes are left to the server's worker pool.
	marked, _ := worker.SweepOnce(context.Background(), worker.StaleSweepConfig{
		CacheRepo: repository.NewPriceCacheRepository(db),
		MaxAge:    cfg.CacheMaxAge(),
	})

	fmt.Printf("stale sweep done: %d rows marked stale\n", marked)
}
