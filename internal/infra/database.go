package infra

import (
	"fmt"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes, seed rows).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema and applies seed/index patches.
// Also called by integration tests against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() ships with PostgreSQL 13+; the extension covers older servers.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.SupplierProduct{},
		&model.CachedPrice{},
		&model.CustomerTier{},
		&model.Customer{},
		&model.CustomerAgreement{},
		&model.CustomerProductOverride{},
		&model.VolumeBracket{},
		&model.SupplierSyncLog{},
		&model.AcceptedPrice{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL/DML that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS / ON CONFLICT DO NOTHING semantics so
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Partial index for the fallback lookup: the resolver only ever loads
		// fresh rows by product, sweeps scan stale rows by age.
		{"partial index on fresh cache rows", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cached_prices_fresh') THEN
    CREATE INDEX idx_cached_prices_fresh
        ON cached_prices (supplier_product_id)
        WHERE is_stale = false;
  END IF;
END $$`},

		// Default customer tiers. Discounts are adjustable per deployment;
		// the names are contractual. Wholesale buys at volume and gets
		// quoted below the house margin.
		{"seed customer tiers", `
INSERT INTO customer_tiers (name, discount_pct, margin_adjustment_pct)
VALUES ('standard', 0, 0), ('preferred', 10, -2.5), ('wholesale', 15, -5)
ON CONFLICT (name) DO NOTHING`},

		// Default volume brackets. min_qty carries a unique index, so the
		// seed is idempotent.
		{"seed volume brackets", `
INSERT INTO volume_brackets (min_qty, max_qty, discount_pct)
VALUES (1, 9, 0), (10, 24, 2), (25, 49, 3.5), (50, 99, 5), (100, NULL, 7.5)
ON CONFLICT (min_qty) DO NOTHING`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
