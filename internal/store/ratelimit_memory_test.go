package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/linkgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemoryStore(t *testing.T) {
	t.Run("records and counts requests", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		count1, err := s.Record(context.Background(), "key1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count1)

		count2, err := s.Record(context.Background(), "key1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count2)

		count3, err := s.Record(context.Background(), "key1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count3)
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "key1", time.Minute)
		_, _ = s.Record(context.Background(), "key1", time.Minute)

		count, err := s.Record(context.Background(), "key2", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "key2 should have its own counter")
	})

	t.Run("prunes expired entries", func(t *testing.T) {
		now := time.Unix(1700000000, 0)
		s := store.NewRateLimitMemoryStore().WithClock(func() time.Time { return now })

		_, _ = s.Record(context.Background(), "key1", time.Minute)
		_, _ = s.Record(context.Background(), "key1", time.Minute)

		now = now.Add(61 * time.Second)

		count, err := s.Record(context.Background(), "key1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "expired entries should be pruned")
	})

	t.Run("sweep drops idle visitors", func(t *testing.T) {
		now := time.Unix(1700000000, 0)
		s := store.NewRateLimitMemoryStore().WithClock(func() time.Time { return now })

		_, _ = s.Record(context.Background(), "203.0.113.1", time.Minute)
		_, _ = s.Record(context.Background(), "203.0.113.2", time.Hour)

		now = now.Add(2 * time.Minute)
		s.Sweep()

		assert.Equal(t, 1, s.Keys())

		count, err := s.Record(context.Background(), "203.0.113.2", time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
