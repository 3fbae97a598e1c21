package domain

import (
	"errors"
	"time"
)

var (
	ErrTrackingNotFound = errors.New("tracking not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrEmptyBatch       = errors.New("no tracking numbers given")
	ErrBatchTooLarge    = errors.New("too many tracking numbers")
	ErrMissingNumber    = errors.New("tracking number is required")
)

// Delivery sources.
const (
	SourceWebhook = "webhook"
	SourcePoll    = "poll"
	SourceAPI     = "api"
)

// CustomsRecord is the stored projection of one tracked shipment.
type CustomsRecord struct {
	TrackingNumber string    `json:"tracking_number" bson:"tracking_number"`
	Summary        Summary   `json:"summary"         bson:"summary"`
	RawCount       int       `json:"raw_count"       bson:"raw_count"`
	EventCount     int       `json:"event_count"     bson:"event_count"`
	Source         string    `json:"source"          bson:"source"`
	RegisteredAt   time.Time `json:"registered_at"   bson:"registered_at"`
	UpdatedAt      time.Time `json:"updated_at"      bson:"updated_at"`
	// Revision grows by one on every ingest. Cached views are keyed by it.
	Revision int64 `json:"revision" bson:"revision"`
}
