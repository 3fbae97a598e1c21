package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

const defaultSummaryTTL = 5 * time.Minute

// SummaryCache keeps serialized customs views for a short while.
// Key format: customs:view:<tracking_number>:<revision>
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &SummaryCache{client: client, ttl: ttl}
}

func (c *SummaryCache) Get(ctx context.Context, trackingNumber string, revision int64) (*ports.CustomsView, bool, error) {
	data, err := c.client.Get(ctx, viewKey(trackingNumber, revision)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	view, err := decodeView(data)
	if err != nil || view.Revision != revision {
		// A stale layout is treated as a miss.
		return nil, false, nil
	}
	return view, true, nil
}

func (c *SummaryCache) Set(ctx context.Context, view *ports.CustomsView) error {
	data, err := sonic.Marshal(view)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, viewKey(view.TrackingNumber, view.Revision), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the view of one revision. Older revisions are never read
// again and expire on their own.
func (c *SummaryCache) Invalidate(ctx context.Context, trackingNumber string, revision int64) error {
	if err := c.client.Del(ctx, viewKey(trackingNumber, revision)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func viewKey(trackingNumber string, revision int64) string {
	return "customs:view:" + trackingNumber + ":" + strconv.FormatInt(revision, 10)
}

func decodeView(data []byte) (*ports.CustomsView, error) {
	var view ports.CustomsView
	if err := sonic.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	if view.TrackingNumber == "" {
		return nil, errors.New("cached view without tracking number")
	}
	if view.Summary.Delays == nil {
		view.Summary.Delays = []domain.Delay{}
	}
	return &view, nil
}
