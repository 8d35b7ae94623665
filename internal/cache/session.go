package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/pkg/apperr"
)

// SessionStore keeps one logical session per user: the UserView at
// login/refresh time, hash-encoded under user:<id>. A new login or refresh
// replaces the snapshot wholesale; there is no per-device session list.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Put writes the snapshot and starts its TTL. The pipeline keeps the write
// and the expiry in one round trip.
func (s *SessionStore) Put(ctx context.Context, view model.UserView) error {
	key := UserKey(view.ID)
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, view.ToMap())
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// Get returns the snapshot, or ok=false when the entry has been evicted or
// revoked. Cache unavailability is a hard error: the auth path never fails open.
func (s *SessionStore) Get(ctx context.Context, userID string) (model.UserView, bool, error) {
	m, err := s.rdb.HGetAll(ctx, UserKey(userID)).Result()
	if err != nil {
		return model.UserView{}, false, apperr.Upstream(err)
	}
	if len(m) == 0 {
		return model.UserView{}, false, nil
	}
	return model.UserViewFromMap(m), true, nil
}

// Renew restarts the TTL without touching the snapshot; used on token refresh.
func (s *SessionStore) Renew(ctx context.Context, userID string) error {
	if err := s.rdb.Expire(ctx, UserKey(userID), s.ttl).Err(); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// Delete revokes the session. Idempotent.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, UserKey(userID)).Err(); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// scanPageSize bounds each SCAN reply so a large keyspace never blocks the server.
const scanPageSize = 100

// ForEachActive walks every live session snapshot via cursor-based SCAN and
// invokes fn with the decoded view. Keys of the wrong type are skipped.
func (s *SessionStore) ForEachActive(ctx context.Context, fn func(view model.UserView) error) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "user:*", scanPageSize).Result()
		if err != nil {
			return apperr.Upstream(err)
		}
		for _, key := range keys {
			m, err := s.rdb.HGetAll(ctx, key).Result()
			if err != nil {
				// WRONGTYPE means a non-session key slipped into the pattern
				if isWrongType(err) {
					continue
				}
				return apperr.Upstream(err)
			}
			if len(m) == 0 {
				continue
			}
			if err := fn(model.UserViewFromMap(m)); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func isWrongType(err error) bool {
	var rErr redis.Error
	return errors.As(err, &rErr) && len(rErr.Error()) >= 9 && rErr.Error()[:9] == "WRONGTYPE"
}
