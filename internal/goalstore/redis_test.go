package goalstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/logger"
	"aitutor/internal/models"
)

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	_, err := NewRedisStore(context.Background(), logger.Nop(), "", "", 0, time.Minute)
	assert.Error(t, err)
}

// newTestRedisStore connects to REDIS_ADDR, skipping when it is unset
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), logger.Nop(), addr, os.Getenv("REDIS_PASSWORD"), 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)
	visitor := uuid.NewString()
	t.Cleanup(func() { s.rdb.Del(context.Background(), Key(visitor)) })

	goals, err := s.Load(ctx, visitor)
	require.NoError(t, err)
	assert.NotNil(t, goals)
	assert.Empty(t, goals)

	saved := []models.Goal{{ID: "temp_2", Title: "b", UserID: "anonymous"}, {ID: "temp_1", Title: "a", UserID: "anonymous"}}
	require.NoError(t, s.Save(ctx, visitor, saved))

	goals, err = s.Load(ctx, visitor)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "temp_2", goals[0].ID)
	assert.Equal(t, "a", goals[1].Title)

	ttl, err := s.rdb.TTL(ctx, Key(visitor)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisStoreDiscardsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)
	visitor := uuid.NewString()
	t.Cleanup(func() { s.rdb.Del(context.Background(), Key(visitor)) })

	require.NoError(t, s.rdb.Set(ctx, Key(visitor), "not json", time.Minute).Err())

	goals, err := s.Load(ctx, visitor)
	require.NoError(t, err)
	assert.NotNil(t, goals)
	assert.Empty(t, goals)
}
