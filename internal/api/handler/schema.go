package handler

import (
	"time"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
)

type trackingNumbersRequest struct {
	Numbers []string `json:"numbers" validate:"required,min=1,max=200,dive,required"`
}

type sampleWebhookRequest struct {
	Number string `json:"number" validate:"required"`
	Event  string `json:"event"  validate:"omitempty,oneof=TRACKING_UPDATED TRACKING_STOPPED"`
}

type webhookAck struct {
	OK      bool   `json:"ok"`
	Skipped string `json:"skipped,omitempty"`
	Number  string `json:"number,omitempty"`
}

type previewResponse struct {
	Summary  domain.Summary          `json:"summary"`
	Timeline domain.Timeline         `json:"timeline"`
	Stats    tracking.NormalizeStats `json:"stats"`
}

type customsRecordResponse struct {
	TrackingNumber string         `json:"tracking_number"`
	Summary        domain.Summary `json:"summary"`
	RawCount       int            `json:"raw_count"`
	EventCount     int            `json:"event_count"`
	Source         string         `json:"source"`
	RegisteredAt   time.Time      `json:"registered_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type listTrackingsResponse struct {
	Items      []customsRecordResponse `json:"items"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

type registerResponse struct {
	Accepted []string          `json:"accepted"`
	Rejected []ports.Rejection `json:"rejected"`
}

type ingestResultResponse struct {
	TrackingNumber string                  `json:"tracking_number"`
	Duplicate      bool                    `json:"duplicate"`
	Inserted       int                     `json:"inserted"`
	Status         domain.SummaryStatus    `json:"status"`
	StatusChanged  bool                    `json:"status_changed"`
	Stats          tracking.NormalizeStats `json:"stats"`
}

type refreshResponse struct {
	Results []ingestResultResponse `json:"results"`
	Errors  []string               `json:"errors,omitempty"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
