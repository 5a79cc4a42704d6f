package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// markerTTL keeps markers slightly longer than a full trial window so a
// restarted trial cannot collide with stale keys from the previous one.
const markerTTL = 8 * 24 * time.Hour

type redisMarkerStore struct {
	client redis.UniversalClient
}

// NewRedisMarkerStore returns a Redis-backed MarkerStore. Markers expire
// after the trial window has long passed, so the keyspace stays bounded.
func NewRedisMarkerStore(client redis.UniversalClient) (MarkerStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &redisMarkerStore{client: client}, nil
}

func markerRedisKey(tenantID uuid.UUID, threshold int) string {
	return fmt.Sprintf("trial:notified:%s:%d", tenantID, threshold)
}

func (s *redisMarkerStore) AlreadyNotified(ctx context.Context, tenantID uuid.UUID, threshold int) (bool, error) {
	n, err := s.client.Exists(ctx, markerRedisKey(tenantID, threshold)).Result()
	if err != nil {
		return false, errors.Join(ErrMarkerStoreFailed, err)
	}
	return n > 0, nil
}

func (s *redisMarkerStore) MarkNotified(ctx context.Context, tenantID uuid.UUID, threshold int) error {
	if err := s.client.Set(ctx, markerRedisKey(tenantID, threshold), "1", markerTTL).Err(); err != nil {
		return errors.Join(ErrMarkerStoreFailed, err)
	}
	return nil
}

func (s *redisMarkerStore) ClearTenant(ctx context.Context, tenantID uuid.UUID) error {
	keys := make([]string, 0, len(thresholds))
	for _, threshold := range thresholds {
		keys = append(keys, markerRedisKey(tenantID, threshold))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Join(ErrMarkerStoreFailed, err)
	}
	return nil
}
