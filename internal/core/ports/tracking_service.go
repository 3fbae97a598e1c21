package ports

import (
	"context"
	"time"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
)

// IngestInput is one provider delivery for one tracking number.
type IngestInput struct {
	TrackingNumber string
	Event          string // provider event name, empty for polled data
	Source         string // domain.SourceWebhook, SourcePoll or SourceAPI
	Payload        map[string]any
	ReceivedAt     time.Time
}

// IngestResult reports what one delivery changed.
type IngestResult struct {
	TrackingNumber string
	Duplicate      bool
	Inserted       int
	Stats          tracking.NormalizeStats
	Summary        domain.Summary
	StatusChanged  bool
}

// CustomsView is the customs status of one shipment as served to clients.
type CustomsView struct {
	TrackingNumber string             `json:"tracking_number"`
	Mode           domain.SummaryMode `json:"mode"`
	Summary        domain.Summary     `json:"summary"`
	Timeline       domain.Timeline    `json:"timeline"`
	RawCount       int                `json:"raw_count"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Revision       int64              `json:"revision"`
}

// PreviewResult is the outcome of normalizing a payload without storing it.
type PreviewResult struct {
	Summary  domain.Summary          `json:"summary"`
	Timeline domain.Timeline         `json:"timeline"`
	Stats    tracking.NormalizeStats `json:"stats"`
}

// ListTrackingsResult is returned by List.
type ListTrackingsResult struct {
	Items      []*domain.CustomsRecord
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TrackingService defines the customs tracking use cases.
type TrackingService interface {
	Ingest(ctx context.Context, in IngestInput) (*IngestResult, error)
	Customs(ctx context.Context, trackingNumber string, mode domain.SummaryMode) (*CustomsView, error)
	Preview(raw map[string]any, mode domain.SummaryMode) (*PreviewResult, error)
	Inspect(ctx context.Context, trackingNumber string, mode domain.SummaryMode) (*PreviewResult, error)
	Register(ctx context.Context, numbers []string) (*RegisterOutcome, error)
	Refresh(ctx context.Context, numbers []string) ([]*IngestResult, error)
	RequestPush(ctx context.Context, numbers []string) error
	List(ctx context.Context, filter ListTrackingsFilter) (*ListTrackingsResult, error)
}
