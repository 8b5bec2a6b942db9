package goalstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"aitutor/internal/logger"
	"aitutor/internal/models"
)

// RedisStore keeps visitor goals in Redis so they survive restarts and are
// shared between server instances
type RedisStore struct {
	log *logger.Logger
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to addr and verifies the connection
func NewRedisStore(ctx context.Context, log *logger.Logger, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		log: log.With("service", "RedisGoalStore"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (s *RedisStore) Load(ctx context.Context, visitorID string) ([]models.Goal, error) {
	raw, err := s.rdb.Get(ctx, Key(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.Goal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	goals := []models.Goal{}
	if err := json.Unmarshal(raw, &goals); err != nil {
		// a corrupt entry is treated as empty and overwritten on next save
		s.log.Warn("Discarding unreadable temp goals", "visitor", visitorID, "error", err.Error())
		return []models.Goal{}, nil
	}
	return goals, nil
}

func (s *RedisStore) Save(ctx context.Context, visitorID string, goals []models.Goal) error {
	raw, err := json.Marshal(goals)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, Key(visitorID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
