package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// MaxBatch bounds how many numbers one API call may register or refresh.
	MaxBatch = 200
)

// TrackingDeps groups the collaborators of TrackingService. Cache and
// Publisher are optional.
type TrackingDeps struct {
	Events     ports.EventRepository
	Records    ports.TrackingRepository
	Provider   ports.TrackingProvider
	Dedup      ports.DeliveryDedup
	Cache      ports.SummaryCache
	Publisher  ports.SummaryPublisher
	Normalizer *tracking.Normalizer
}

type TrackingService struct {
	deps TrackingDeps
	log  zerolog.Logger
	now  func() time.Time
}

func NewTrackingService(deps TrackingDeps, log zerolog.Logger) *TrackingService {
	return &TrackingService{deps: deps, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Ingest normalizes one provider delivery, merges it into the stored timeline
// and refreshes the stored summary. Deliveries for the same tracking number
// must not be ingested concurrently; the dispatcher guarantees that.
func (s *TrackingService) Ingest(ctx context.Context, in ports.IngestInput) (*ports.IngestResult, error) {
	number := strings.TrimSpace(in.TrackingNumber)
	if number == "" {
		return nil, fmt.Errorf("ingest: %w", domain.ErrMissingNumber)
	}
	res := &ports.IngestResult{TrackingNumber: number}
	log := s.log.With().Str("tracking", number).Str("source", in.Source).Logger()

	// 1. Delivery dedup. A failing store never blocks ingestion.
	key := deliveryKey(number, in.Event, in.Payload)
	if s.deps.Dedup != nil {
		dup, err := s.deps.Dedup.IsDuplicate(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("dedup check failed, processing anyway")
		} else if dup {
			log.Debug().Str("event", in.Event).Msg("duplicate delivery skipped")
			res.Duplicate = true
			return res, nil
		}
	}

	// 2. Normalize and store the new entries.
	tl, stats := s.deps.Normalizer.Normalize(in.Payload)
	res.Stats = stats

	inserted, err := s.deps.Events.InsertEvents(ctx, number, tl)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: store events: %w", number, err)
	}
	res.Inserted = inserted

	// 3. Rebuild from everything stored so far.
	stored, err := s.deps.Events.Timeline(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: load timeline: %w", number, err)
	}
	full := tracking.BuildTimeline(stored)

	summary, err := tracking.Summarize(full, domain.ModeAny)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", number, err)
	}

	prev, err := s.deps.Records.FindByTrackingNumber(ctx, number)
	if err != nil && !errors.Is(err, domain.ErrTrackingNotFound) {
		return nil, fmt.Errorf("ingest %s: load record: %w", number, err)
	}

	now := s.now()
	rec := &domain.CustomsRecord{
		TrackingNumber: number,
		RawCount:       stats.RawCount,
		EventCount:     len(full),
		Source:         in.Source,
		RegisteredAt:   now,
		UpdatedAt:      now,
	}
	var prevSummary *domain.Summary
	prevStatus := domain.StatusUnknown
	rec.Revision = 1
	if prev != nil {
		prevSummary = &prev.Summary
		prevStatus = prev.Summary.Status
		rec.RawCount = max(rec.RawCount, prev.RawCount)
		rec.Revision = prev.Revision + 1
		if !prev.RegisteredAt.IsZero() {
			rec.RegisteredAt = prev.RegisteredAt
		}
	}
	rec.Summary = domain.MergeSummary(prevSummary, summary.WithPreCustoms(rec.RawCount))

	// 4. Persist the projection.
	if err := s.deps.Records.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("ingest %s: store summary: %w", number, err)
	}
	res.Summary = rec.Summary

	if s.deps.Dedup != nil {
		if err := s.deps.Dedup.Mark(ctx, key); err != nil {
			log.Warn().Err(err).Msg("failed to set dedup key")
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Invalidate(ctx, number, rec.Revision-1); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate summary cache")
		}
	}

	// 5. Announce status moves (non-fatal).
	if rec.Summary.Status != prevStatus {
		res.StatusChanged = true
		if s.deps.Publisher != nil {
			change := ports.SummaryChange{
				TrackingNumber: number,
				Previous:       prevStatus,
				Current:        rec.Summary.Status,
				Summary:        rec.Summary,
				ChangedAt:      now,
			}
			if err := s.deps.Publisher.PublishSummaryChanged(ctx, change); err != nil {
				log.Warn().Err(err).Msg("failed to publish summary change")
			}
		}
	}

	ev := log.Info()
	if stats.Regressed {
		ev = log.Warn()
	}
	ev.Int("raw", stats.RawCount).
		Int("classified", stats.Classified).
		Int("inserted", inserted).
		Bool("regressed", stats.Regressed).
		Str("status", string(rec.Summary.Status)).
		Msg("delivery ingested")

	return res, nil
}

// Customs returns the summary and timeline of a stored shipment. The "any"
// view is merged with the stored summary and read through the cache under
// the record's current revision. A view built while an ingest runs is stored
// under the revision it was read at, which later readers no longer ask for.
func (s *TrackingService) Customs(ctx context.Context, trackingNumber string, mode domain.SummaryMode) (*ports.CustomsView, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(trackingNumber)
	if number == "" {
		return nil, domain.ErrMissingNumber
	}

	rec, err := s.deps.Records.FindByTrackingNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("customs %s: %w", number, err)
	}

	cacheable := mode == domain.ModeAny && s.deps.Cache != nil
	if cacheable {
		view, ok, err := s.deps.Cache.Get(ctx, number, rec.Revision)
		if err != nil {
			s.log.Warn().Err(err).Str("tracking", number).Msg("summary cache read failed")
		} else if ok {
			return view, nil
		}
	}
	stored, err := s.deps.Events.Timeline(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("customs %s: load timeline: %w", number, err)
	}
	tl := tracking.BuildTimeline(stored)

	summary, err := tracking.Summarize(tl, mode)
	if err != nil {
		return nil, err
	}
	summary = summary.WithPreCustoms(rec.RawCount)
	if mode == domain.ModeAny {
		summary = domain.MergeSummary(&rec.Summary, summary)
	}

	view := &ports.CustomsView{
		TrackingNumber: number,
		Mode:           mode,
		Summary:        summary,
		Timeline:       tl,
		RawCount:       rec.RawCount,
		UpdatedAt:      rec.UpdatedAt,
		Revision:       rec.Revision,
	}
	if cacheable {
		if err := s.deps.Cache.Set(ctx, view); err != nil {
			s.log.Warn().Err(err).Str("tracking", number).Msg("summary cache write failed")
		}
	}
	return view, nil
}

// Preview runs the pipeline over raw without touching storage.
func (s *TrackingService) Preview(raw map[string]any, mode domain.SummaryMode) (*ports.PreviewResult, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	tl, stats := s.deps.Normalizer.Normalize(raw)
	summary, err := tracking.Summarize(tl, mode)
	if err != nil {
		return nil, err
	}
	return &ports.PreviewResult{
		Summary:  summary.WithPreCustoms(stats.RawCount),
		Timeline: tl,
		Stats:    stats,
	}, nil
}

// Inspect fetches the current provider payload of one number and runs it
// through the pipeline without storing anything.
func (s *TrackingService) Inspect(ctx context.Context, trackingNumber string, mode domain.SummaryMode) (*ports.PreviewResult, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(trackingNumber)
	if number == "" {
		return nil, domain.ErrMissingNumber
	}

	records, err := s.deps.Provider.GetTrackInfo(ctx, []string{number})
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", number, err)
	}
	for _, r := range records {
		if r.Number == number {
			return s.Preview(r.Payload, mode)
		}
	}
	return nil, fmt.Errorf("inspect %s: %w", number, domain.ErrTrackingNotFound)
}

// Register subscribes numbers with the provider and stores a pending record
// for every accepted one.
func (s *TrackingService) Register(ctx context.Context, numbers []string) (*ports.RegisterOutcome, error) {
	numbers, err := cleanNumbers(numbers)
	if err != nil {
		return nil, err
	}

	out, err := s.deps.Provider.Register(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	created, err := s.deps.Records.CreatePending(ctx, out.Accepted, domain.SourceAPI)
	if err != nil {
		return nil, fmt.Errorf("register: store pending: %w", err)
	}

	s.log.Info().
		Int("requested", len(numbers)).
		Int("accepted", len(out.Accepted)).
		Int("rejected", len(out.Rejected)).
		Int("created", created).
		Msg("tracking numbers registered")
	return out, nil
}

// Refresh pulls the current payload of each number from the provider and
// ingests it. Per-number failures are collected, the rest still proceed.
func (s *TrackingService) Refresh(ctx context.Context, numbers []string) ([]*ports.IngestResult, error) {
	numbers, err := cleanNumbers(numbers)
	if err != nil {
		return nil, err
	}

	records, err := s.deps.Provider.GetTrackInfo(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	results := make([]*ports.IngestResult, 0, len(records))
	var errs []error
	for _, r := range records {
		res, err := s.Ingest(ctx, ports.IngestInput{
			TrackingNumber: r.Number,
			Source:         domain.SourcePoll,
			Payload:        r.Payload,
			ReceivedAt:     s.now(),
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// RequestPush asks the provider to re-deliver the latest data through the
// webhook.
func (s *TrackingService) RequestPush(ctx context.Context, numbers []string) error {
	numbers, err := cleanNumbers(numbers)
	if err != nil {
		return err
	}
	if err := s.deps.Provider.Push(ctx, numbers); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

func (s *TrackingService) List(ctx context.Context, filter ports.ListTrackingsFilter) (*ports.ListTrackingsResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	items, total, err := s.deps.Records.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list trackings: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListTrackingsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// cleanNumbers trims, drops blanks and removes repeats while keeping order.
func cleanNumbers(numbers []string) ([]string, error) {
	out := make([]string, 0, len(numbers))
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(out) > MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrBatchTooLarge, len(out), MaxBatch)
	}
	return out, nil
}

// deliveryKey identifies a delivery by number, event name and payload hash.
func deliveryKey(number, event string, payload map[string]any) string {
	body, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		body = []byte(fmt.Sprint(payload))
	}
	sum := sha256.Sum256(body)
	return number + ":" + strings.ToLower(event) + ":" + hex.EncodeToString(sum[:12])
}
