package ports

import (
	"context"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// EventRepository stores the classified timeline of each shipment.
type EventRepository interface {
	// InsertEvents stores events with insert-or-ignore semantics keyed on
	// (tracking number, dedup key) and returns how many were new.
	InsertEvents(ctx context.Context, trackingNumber string, events []domain.ClassifiedEvent) (int, error)

	// Timeline returns every stored event of the shipment, in no particular order.
	Timeline(ctx context.Context, trackingNumber string) ([]domain.ClassifiedEvent, error)
}
