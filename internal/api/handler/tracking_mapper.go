package handler

import (
	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

func toPreviewResponse(r *ports.PreviewResult) previewResponse {
	tl := r.Timeline
	if tl == nil {
		tl = domain.Timeline{}
	}
	return previewResponse{Summary: r.Summary, Timeline: tl, Stats: r.Stats}
}

func toRecordResponse(rec *domain.CustomsRecord) customsRecordResponse {
	return customsRecordResponse{
		TrackingNumber: rec.TrackingNumber,
		Summary:        rec.Summary,
		RawCount:       rec.RawCount,
		EventCount:     rec.EventCount,
		Source:         rec.Source,
		RegisteredAt:   rec.RegisteredAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func toListResponse(r *ports.ListTrackingsResult) listTrackingsResponse {
	items := make([]customsRecordResponse, 0, len(r.Items))
	for _, rec := range r.Items {
		items = append(items, toRecordResponse(rec))
	}
	return listTrackingsResponse{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}

func toIngestResponse(r *ports.IngestResult) ingestResultResponse {
	return ingestResultResponse{
		TrackingNumber: r.TrackingNumber,
		Duplicate:      r.Duplicate,
		Inserted:       r.Inserted,
		Status:         r.Summary.Status,
		StatusChanged:  r.StatusChanged,
		Stats:          r.Stats,
	}
}

func toRegisterResponse(out *ports.RegisterOutcome) registerResponse {
	resp := registerResponse{Accepted: out.Accepted, Rejected: out.Rejected}
	if resp.Accepted == nil {
		resp.Accepted = []string{}
	}
	if resp.Rejected == nil {
		resp.Rejected = []ports.Rejection{}
	}
	return resp
}
