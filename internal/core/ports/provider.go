package ports

import "context"

// ProviderRecord is the raw tracking payload of one number.
type ProviderRecord struct {
	Number  string
	Payload map[string]any
}

// Rejection explains why the provider refused a number.
type Rejection struct {
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// RegisterOutcome is the provider answer to a registration request.
type RegisterOutcome struct {
	Accepted []string    `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

// TrackingProvider is the external tracking API. Implementations batch and
// retry internally, callers may pass any number of tracking numbers.
type TrackingProvider interface {
	Register(ctx context.Context, numbers []string) (*RegisterOutcome, error)
	Push(ctx context.Context, numbers []string) error
	GetTrackInfo(ctx context.Context, numbers []string) ([]ProviderRecord, error)
}
