package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt(v int) *int { return &v }

func ptrDec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestStaleAt(t *testing.T) {
	now := time.Now()
	row := &CachedPrice{CachedAt: now.Add(-2 * time.Hour)}

	assert.False(t, row.StaleAt(now, 24*time.Hour), "fresh row within max age")
	assert.True(t, row.StaleAt(now, time.Hour), "row older than max age")

	row.IsStale = true
	assert.True(t, row.StaleAt(now, 24*time.Hour), "explicit invalidation wins over age")
}

func TestCachedPriceSnapshot(t *testing.T) {
	now := time.Now()
	cachedAt := now.Add(-3 * time.Hour)
	row := &CachedPrice{
		CostPrice:    decimal.NewFromFloat(91.2),
		ListPrice:    ptrDec(109.9),
		Available:    true,
		StockQty:     ptrInt(120),
		LeadTimeDays: ptrInt(2),
		CachedAt:     cachedAt,
		Source:       CacheSourceAPI,
	}

	snap := row.Snapshot(now, 24*time.Hour)

	assert.Equal(t, "91.2", snap.CostPrice.String())
	require.NotNil(t, snap.ListPrice)
	assert.Equal(t, "109.9", snap.ListPrice.String())
	assert.True(t, snap.Available)
	assert.Equal(t, 120, *snap.StockQty)
	assert.Equal(t, 2, *snap.LeadTimeDays)
	assert.Equal(t, cachedAt, snap.FetchedAt)
	assert.Equal(t, CacheSourceAPI, snap.Provenance)
	assert.False(t, snap.Stale)

	// Same row judged against a tighter max age
	assert.True(t, row.Snapshot(now, time.Hour).Stale)
}

func TestNewCachedPrice_ResetsStaleFlag(t *testing.T) {
	fetched := time.Now().Add(-10 * time.Minute)
	snap := PriceSnapshot{
		CostPrice: decimal.NewFromFloat(4.5),
		Available: true,
		FetchedAt: fetched,
		Stale:     true, // a stale snapshot still produces a fresh row
	}

	row := NewCachedPrice(uuid.New(), uuid.New(), snap, CacheSourceAPI)

	assert.False(t, row.IsStale)
	assert.Equal(t, fetched, row.CachedAt)
	assert.Equal(t, "4.5", row.CostPrice.String())
}

func TestNewCachedPrice_FallbackPriorityPerSource(t *testing.T) {
	snap := PriceSnapshot{CostPrice: decimal.NewFromInt(1), FetchedAt: time.Now()}

	assert.Equal(t, 2, NewCachedPrice(uuid.New(), uuid.New(), snap, CacheSourceAPI).FallbackPriority)
	assert.Equal(t, 1, NewCachedPrice(uuid.New(), uuid.New(), snap, CacheSourceImport).FallbackPriority)
	assert.Equal(t, 0, NewCachedPrice(uuid.New(), uuid.New(), snap, CacheSourceManual).FallbackPriority)
}

func TestNewCachedPrice_StampsMissingFetchTime(t *testing.T) {
	before := time.Now()
	row := NewCachedPrice(uuid.New(), uuid.New(), PriceSnapshot{CostPrice: decimal.NewFromInt(1)}, CacheSourceManual)
	after := time.Now()

	assert.False(t, row.CachedAt.Before(before))
	assert.False(t, row.CachedAt.After(after))
}
