package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopdesk/backend/internal/domain/identity"
)

const presencePrefix = "shopdesk:presence:"

// RedisPresenceStore stores last activity as unix-millisecond values with a TTL
type RedisPresenceStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisPresenceStore creates a presence store; entries expire after ttl
func NewRedisPresenceStore(client redis.UniversalClient, ttl time.Duration) *RedisPresenceStore {
	return &RedisPresenceStore{client: client, ttl: ttl}
}

func presenceKey(id uuid.UUID) string {
	return presencePrefix + id.String()
}

// Touch records activity for userID
func (s *RedisPresenceStore) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if err := s.client.Set(ctx, presenceKey(userID), at.UnixMilli(), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record presence: %w", err)
	}
	return nil
}

// LastSeen returns the last recorded activity for userID
func (s *RedisPresenceStore) LastSeen(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	seen, err := s.LastSeenMany(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if at, ok := seen[userID]; ok {
		return &at, nil
	}
	return nil, nil
}

// LastSeenMany fetches activity for several users with one MGET
func (s *RedisPresenceStore) LastSeenMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	result := make(map[uuid.UUID]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presenceKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		result[userIDs[i]] = time.UnixMilli(ms)
	}
	return result, nil
}

// InMemoryPresenceStore is a process-local presence store
type InMemoryPresenceStore struct {
	mu   sync.RWMutex
	seen map[uuid.UUID]time.Time
}

// NewInMemoryPresenceStore creates an empty in-memory presence store
func NewInMemoryPresenceStore() *InMemoryPresenceStore {
	return &InMemoryPresenceStore{seen: make(map[uuid.UUID]time.Time)}
}

// Touch records activity, keeping the latest time
func (s *InMemoryPresenceStore) Touch(_ context.Context, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.seen[userID]; !ok || at.After(prev) {
		s.seen[userID] = at
	}
	return nil
}

// LastSeen returns the last recorded activity for userID
func (s *InMemoryPresenceStore) LastSeen(_ context.Context, userID uuid.UUID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if at, ok := s.seen[userID]; ok {
		return &at, nil
	}
	return nil, nil
}

// LastSeenMany returns recorded activity for the given users
func (s *InMemoryPresenceStore) LastSeenMany(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[uuid.UUID]time.Time, len(userIDs))
	for _, id := range userIDs {
		if at, ok := s.seen[id]; ok {
			result[id] = at
		}
	}
	return result, nil
}

var (
	_ identity.PresenceStore = (*RedisPresenceStore)(nil)
	_ identity.PresenceStore = (*InMemoryPresenceStore)(nil)
)
