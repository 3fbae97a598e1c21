package ports

import (
	"context"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// ListTrackingsFilter carries the query parameters for listing records.
type ListTrackingsFilter struct {
	Status string // optional: summary status
	Search string // optional: tracking number prefix
	Page   int    // 1-based
	Limit  int    // capped at 100 by the service
}

// TrackingRepository persists the per-shipment customs projection.
type TrackingRepository interface {
	// FindByTrackingNumber returns domain.ErrTrackingNotFound when absent.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.CustomsRecord, error)

	// Upsert writes the record, creating it when needed.
	Upsert(ctx context.Context, rec *domain.CustomsRecord) error

	// CreatePending inserts UNKNOWN records for numbers that are not stored
	// yet and returns how many were created.
	CreatePending(ctx context.Context, numbers []string, source string) (int, error)

	// List returns a page of records and the total count.
	List(ctx context.Context, filter ListTrackingsFilter) ([]*domain.CustomsRecord, int64, error)

	// ListOpen returns up to limit tracking numbers whose summary is not
	// CLEARED, least recently updated first.
	ListOpen(ctx context.Context, limit int) ([]string, error)
}
