package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	processedSessionKeyPrefix = "processed_session_"
	processedSessionMarker    = "processed"
)

// ProcessedSessionStore records which checkout sessions have already been
// handled. Presence of the key is the sole source of truth; entries expire
// on their own via the TTL, nothing ever deletes or updates them.
type ProcessedSessionStore struct {
	db  *redis.Client
	ttl time.Duration
}

func NewProcessedSessionStore(db *redis.Client, ttl time.Duration) *ProcessedSessionStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &ProcessedSessionStore{db: db, ttl: ttl}
}

func (s *ProcessedSessionStore) IsProcessed(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.db.Get(ctx, processedSessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ProcessedSessionStore) MarkProcessed(ctx context.Context, sessionID string) error {
	return s.db.Set(ctx, processedSessionKey(sessionID), processedSessionMarker, s.ttl).Err()
}

func processedSessionKey(sessionID string) string {
	return processedSessionKeyPrefix + sessionID
}
