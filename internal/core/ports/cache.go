package ports

import (
	"context"
	"time"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// DeliveryDedup remembers which provider deliveries were already processed.
type DeliveryDedup interface {
	IsDuplicate(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// SummaryCache caches customs views computed in "any" mode. Entries are
// keyed by tracking number and record revision, so a view computed before
// an ingest can never be served after it.
type SummaryCache interface {
	Get(ctx context.Context, trackingNumber string, revision int64) (*CustomsView, bool, error)
	Set(ctx context.Context, view *CustomsView) error
	Invalidate(ctx context.Context, trackingNumber string, revision int64) error
}

// SummaryChange is published whenever the stored summary status moves.
type SummaryChange struct {
	TrackingNumber string               `json:"tracking_number"`
	Previous       domain.SummaryStatus `json:"previous"`
	Current        domain.SummaryStatus `json:"current"`
	Summary        domain.Summary       `json:"summary"`
	ChangedAt      time.Time            `json:"changed_at"`
}

// SummaryPublisher announces summary changes to other systems.
type SummaryPublisher interface {
	PublishSummaryChanged(ctx context.Context, change SummaryChange) error
}
