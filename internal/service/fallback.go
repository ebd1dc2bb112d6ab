package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"
)

// DefaultPriceTimeout bounds a live supplier call when no explicit budget
// is configured.
const DefaultPriceTimeout = 10 * time.Second

// Origin of a resolved price: the live supplier API or the local fallback.
const (
	PriceOriginLive  = "live"
	PriceOriginCache = "cache"
)

// WarnUpstreamUnavailable annotates every price served from fallback.
const WarnUpstreamUnavailable = "supplier API unavailable, served from cache"

// FallbackResult is the outcome of one execute-with-fallback round.
// IsStale is true for every fallback result regardless of the age of the
// cached row: the caller asked for a live price and got something older.
type FallbackResult struct {
	Snapshot model.PriceSnapshot
	Origin   string
	IsStale  bool
	Warning  string
}

// ExecuteWithFallback races primary against the timeout and falls back on
// any primary failure. The rules are strict:
//
//   - primary succeeds within budget: its snapshot wins, fallback is never
//     consulted.
//   - primary errors or the budget expires: fallback decides. The primary
//     error is never surfaced on a successful fallback.
//   - fallback has nothing either: ErrAllSourcesFailed.
//
// The primary call gets a child context that is cancelled when the budget
// expires, so an abandoned HTTP call stops consuming a connection. The
// fallback closure runs on the parent context and must not depend on the
// expired child.
func ExecuteWithFallback(
	ctx context.Context,
	timeout time.Duration,
	primary func(ctx context.Context) (model.PriceSnapshot, error),
	fallback func() (model.PriceSnapshot, bool),
) (FallbackResult, error) {
	if timeout <= 0 {
		timeout = DefaultPriceTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		snap model.PriceSnapshot
		err  error
	}
	// Buffered so the primary goroutine can exit even after the race is lost.
	done := make(chan outcome, 1)
	go func() {
		snap, err := primary(callCtx)
		done <- outcome{snap: snap, err: err}
	}()

	var primaryErr error
	select {
	case out := <-done:
		if out.err == nil {
			return FallbackResult{Snapshot: out.snap, Origin: PriceOriginLive}, nil
		}
		primaryErr = out.err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			primaryErr = ErrUpstreamTimeout
		} else {
			primaryErr = callCtx.Err()
		}
	}

	if snap, ok := fallback(); ok {
		return FallbackResult{
			Snapshot: snap,
			Origin:   PriceOriginCache,
			IsStale:  true,
			Warning:  WarnUpstreamUnavailable,
		}, nil
	}
	return FallbackResult{}, fmt.Errorf("live fetch failed (%v) and no fallback exists: %w", primaryErr, ErrAllSourcesFailed)
}
