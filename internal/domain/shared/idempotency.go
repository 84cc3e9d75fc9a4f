package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL covers the payment processor's three-day redelivery window.
const DefaultIdempotencyTTL = 96 * time.Hour

// IdempotencyStore remembers which webhook events have already been handled.
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl. It reports true when the event
	// was not seen before and false for a duplicate delivery.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether eventID is currently recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Kind names the backing store ("memory", "redis").
	Kind() string

	Close() error
}
