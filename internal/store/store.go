// Package store provides lead persistence: the capture sink that
// qualified leads are handed off to.
package store

import (
	"context"

	"github.com/ashureev/autostream/internal/domain"
)

// Repository defines the interface for persisting captured leads.
type Repository interface {
	// Capture persists a qualified lead. The caller guarantees
	// at-most-once invocation per session; Capture itself only needs to
	// be safe to retry after a failure.
	Capture(ctx context.Context, lead *domain.Lead) error

	// ListLeads returns the most recently captured leads, newest first.
	ListLeads(ctx context.Context, limit int) ([]*domain.Lead, error)

	// CountLeads returns the total number of captured leads.
	CountLeads(ctx context.Context) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
