package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPresenceStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryPresenceStore()
	alice, bob := uuid.New(), uuid.New()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	seen, err := store.LastSeen(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, seen)

	require.NoError(t, store.Touch(ctx, alice, now))
	require.NoError(t, store.Touch(ctx, alice, now.Add(-time.Hour)))

	seen, err = store.LastSeen(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, now, *seen)

	many, err := store.LastSeenMany(ctx, []uuid.UUID{alice, bob})
	require.NoError(t, err)
	assert.Len(t, many, 1)
	assert.Contains(t, many, alice)
}

func TestInMemoryPresenceStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryPresenceStore()
	id := uuid.New()
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Touch(ctx, id, base.Add(time.Duration(i)*time.Second))
		}(i)
	}
	wg.Wait()

	seen, err := store.LastSeen(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, base.Add(49*time.Second), *seen)
}
