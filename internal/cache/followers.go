package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/pkg/apperr"
)

// FollowerStore holds the denormalized follower snapshots. Each followed user
// owns one hash (followers:<id>, field = follower id, value = JSON snapshot)
// plus an id list (followers:index:<id>) for paged reads. Both expire after
// ttl, which bounds how long a missed fan-out patch can stay visible.
type FollowerStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFollowerStore(rdb *redis.Client, ttl time.Duration) *FollowerStore {
	return &FollowerStore{rdb: rdb, ttl: ttl}
}

// Add writes one snapshot into the followed user's collection and pushes the
// follower onto the index list head (newest first, matching the rebuild order).
func (s *FollowerStore) Add(ctx context.Context, followedID string, snap model.FollowerSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	key := FollowersKey(followedID)
	idx := FollowerIndexKey(followedID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, snap.ID, payload)
	pipe.Expire(ctx, key, s.ttl)
	pipe.LRem(ctx, idx, 0, snap.ID)
	pipe.LPush(ctx, idx, snap.ID)
	pipe.Expire(ctx, idx, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// Remove deletes the snapshot and its index entry. Idempotent.
func (s *FollowerStore) Remove(ctx context.Context, followedID, followerID string) error {
	pipe := s.rdb.Pipeline()
	pipe.HDel(ctx, FollowersKey(followedID), followerID)
	pipe.LRem(ctx, FollowerIndexKey(followedID), 0, followerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// All returns every snapshot in the collection. Entries that no longer decode
// are skipped rather than failing the whole read.
func (s *FollowerStore) All(ctx context.Context, followedID string) ([]model.FollowerSnapshot, error) {
	m, err := s.rdb.HGetAll(ctx, FollowersKey(followedID)).Result()
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	out := make([]model.FollowerSnapshot, 0, len(m))
	for _, raw := range m {
		var snap model.FollowerSnapshot
		if uErr := json.Unmarshal([]byte(raw), &snap); uErr == nil {
			out = append(out, snap)
		}
	}
	return out, nil
}

// WriteAll replaces the whole collection from a store rebuild.
func (s *FollowerStore) WriteAll(ctx context.Context, followedID string, snaps []model.FollowerSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	key := FollowersKey(followedID)
	idx := FollowerIndexKey(followedID)
	fields := make(map[string]interface{}, len(snaps))
	ids := make([]interface{}, len(snaps))
	for i, snap := range snaps {
		payload, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		fields[snap.ID] = payload
		ids[i] = snap.ID
	}
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	pipe.Del(ctx, idx)
	pipe.RPush(ctx, idx, ids...)
	pipe.Expire(ctx, idx, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// PageIDs returns one page of follower ids from the index list, newest first.
// An empty result means the index is cold and the caller should rebuild.
func (s *FollowerStore) PageIDs(ctx context.Context, followedID string, offset, limit int) ([]string, error) {
	stop := int64(offset + limit - 1)
	ids, err := s.rdb.LRange(ctx, FollowerIndexKey(followedID), int64(offset), stop).Result()
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return ids, nil
}

// PatchIdentity visits every snapshot collection in the keyspace and rewrites
// the entries whose id matches the changed user. O(total snapshots); the
// caller runs it off the request path. Returns how many entries were patched.
func (s *FollowerStore) PatchIdentity(ctx context.Context, view model.UserView) (int, error) {
	patched := 0
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "followers:*", scanPageSize).Result()
		if err != nil {
			return patched, apperr.Upstream(err)
		}
		for _, key := range keys {
			// index lists share the prefix; only the hashes hold snapshots
			if kind, err := s.rdb.Type(ctx, key).Result(); err != nil || kind != "hash" {
				continue
			}
			entries, err := s.rdb.HGetAll(ctx, key).Result()
			if err != nil {
				return patched, apperr.Upstream(err)
			}
			pipe := s.rdb.Pipeline()
			dirty := false
			for followerID, raw := range entries {
				var snap model.FollowerSnapshot
				if uErr := json.Unmarshal([]byte(raw), &snap); uErr != nil {
					continue
				}
				if snap.ID != view.ID {
					continue
				}
				snap.Username = view.Username
				snap.ProfilePic = view.ProfilePic
				payload, mErr := json.Marshal(snap)
				if mErr != nil {
					continue
				}
				pipe.HSet(ctx, key, followerID, payload)
				dirty = true
				patched++
			}
			if dirty {
				if _, err := pipe.Exec(ctx); err != nil {
					return patched, apperr.Upstream(err)
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return patched, nil
		}
	}
}
