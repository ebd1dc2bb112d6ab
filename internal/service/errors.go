package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel and typed errors shared by the pricing services. Handlers map
// them onto HTTP statuses; upstream failures deliberately have no mapping
// because the fallback chain absorbs them before they reach a handler.
var (
	// ErrAllSourcesFailed means the live call failed and no cached or
	// catalog price exists. The only hard failure of price resolution.
	ErrAllSourcesFailed = errors.New("all price sources failed")

	// ErrUpstreamTimeout marks a live supplier call that exceeded its
	// budget. Never surfaced to clients; it always triggers fallback.
	ErrUpstreamTimeout = errors.New("supplier call timed out")
)

// ValidationError rejects malformed input before any price source is
// consulted.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError is the normal negative result for lookups of entities that
// do not exist. It does not mean a source failed.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// UpstreamError wraps a failed live supplier call with the supplier it
// belongs to, so sync logs and health counters can attribute it.
type UpstreamError struct {
	SupplierID uuid.UUID
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("supplier %s: %v", e.SupplierID, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
