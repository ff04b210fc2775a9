package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PresenceStore keeps the last activity time per user
type PresenceStore interface {
	Touch(ctx context.Context, userID uuid.UUID, at time.Time) error
	// LastSeen returns the last activity time, or nil when unknown
	LastSeen(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	LastSeenMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]time.Time, error)
}
