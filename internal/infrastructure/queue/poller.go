package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/customs-tracking/internal/api/metrics"
	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

const (
	defaultPollInterval = 15 * time.Minute
	defaultPollLimit    = 400
	pollPage            = 40
)

type openLister interface {
	ListOpen(ctx context.Context, limit int) ([]string, error)
}

type enqueuer interface {
	Enqueue(in ports.IngestInput)
}

// Poller periodically pulls the provider state of shipments that have not
// cleared customs yet, for deployments where webhooks are lost or disabled.
type Poller struct {
	records  openLister
	provider ports.TrackingProvider
	queue    enqueuer
	interval time.Duration
	limit    int
	log      zerolog.Logger
}

func NewPoller(records openLister, provider ports.TrackingProvider, queue enqueuer, interval time.Duration, limit int, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if limit <= 0 {
		limit = defaultPollLimit
	}
	return &Poller{
		records:  records,
		provider: provider,
		queue:    queue,
		interval: interval,
		limit:    limit,
		log:      log,
	}
}

// Run polls once immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if n, err := p.PollOnce(ctx); err != nil {
			metrics.PollRunsTotal.WithLabelValues("error").Inc()
			p.log.Error().Err(err).Msg("poll cycle failed")
		} else {
			metrics.PollRunsTotal.WithLabelValues("ok").Inc()
			p.log.Debug().Int("enqueued", n).Msg("poll cycle done")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce fetches open shipments page by page and enqueues every payload
// returned. A failing page is logged and skipped.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	numbers, err := p.records.ListOpen(ctx, p.limit)
	if err != nil {
		return 0, fmt.Errorf("poll: list open: %w", err)
	}

	enqueued := 0
	for start := 0; start < len(numbers); start += pollPage {
		if err := ctx.Err(); err != nil {
			return enqueued, err
		}
		page := numbers[start:min(start+pollPage, len(numbers))]

		records, err := p.provider.GetTrackInfo(ctx, page)
		if err != nil {
			p.log.Warn().Err(err).Int("page_size", len(page)).Msg("poll page failed")
			continue
		}
		now := time.Now().UTC()
		for _, r := range records {
			p.queue.Enqueue(ports.IngestInput{
				TrackingNumber: r.Number,
				Source:         domain.SourcePoll,
				Payload:        r.Payload,
				ReceivedAt:     now,
			})
			enqueued++
		}
	}
	return enqueued, nil
}
