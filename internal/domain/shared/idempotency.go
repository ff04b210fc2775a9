package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so a retried write
// is executed at most once
type IdempotencyStore interface {
	// Claim reserves key for ttl. It returns false when the key is already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a key so the request can be retried
	Release(ctx context.Context, key string) error
}
