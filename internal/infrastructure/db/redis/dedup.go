package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = time.Hour

// DeliveryDedup remembers processed provider deliveries.
// Key format: dedup:<tracking_number>:<event>:<payload_hash>
type DeliveryDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryDedup wraps client. A non-positive ttl falls back to one hour.
func NewDeliveryDedup(client *redis.Client, ttl time.Duration) *DeliveryDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DeliveryDedup{client: client, ttl: ttl}
}

// IsDuplicate reports whether this exact delivery has already been processed.
func (d *DeliveryDedup) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this delivery has been processed (expires after ttl).
func (d *DeliveryDedup) Mark(ctx context.Context, key string) error {
	if err := d.client.Set(ctx, dedupKey(key), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func dedupKey(key string) string {
	return "dedup:" + key
}
