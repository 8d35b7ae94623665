package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialnet/pkg/apperr"
)

// ViewCounter tracks per-post view counts as sorted-set member scores.
// Increments are atomic and the score never decreases; there is no rollback
// path, the counts are best-effort telemetry.
type ViewCounter struct {
	rdb *redis.Client
}

func NewViewCounter(rdb *redis.Client) *ViewCounter { return &ViewCounter{rdb: rdb} }

// Increment bumps the post's score by one and returns the new value.
func (v *ViewCounter) Increment(ctx context.Context, postID string) (int64, error) {
	score, err := v.rdb.ZIncrBy(ctx, viewCountKey, 1, postID).Result()
	if err != nil {
		return 0, apperr.Upstream(err)
	}
	return int64(score), nil
}

// Count reads the current score without bumping it; 0 for an unseen post.
func (v *ViewCounter) Count(ctx context.Context, postID string) (int64, error) {
	score, err := v.rdb.ZScore(ctx, viewCountKey, postID).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, apperr.Upstream(err)
	}
	return int64(score), nil
}
