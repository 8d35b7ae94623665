package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialnet/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID string) error
	Delete(ctx context.Context, followerID, followedID string) error
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollowerViews(ctx context.Context, followedID string) ([]model.FollowerSnapshot, error)
	CountFollowers(ctx context.Context, followedID string) (int64, error)
	CountFollowing(ctx context.Context, followerID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followedID string) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FollowedID: followedID}
	// 幂等：重复关注不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ListFollowerViews joins the edge table to users+profiles and projects the
// public identity of every follower of followedID. This is the rebuild path
// for an evicted snapshot collection.
func (r *followRepository) ListFollowerViews(ctx context.Context, followedID string) ([]model.FollowerSnapshot, error) {
	var rows []model.FollowerSnapshot
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.id", "users.username", "profile_info.profile_pic").
		Joins("JOIN users ON follows.follower_id = users.id").
		Joins("LEFT JOIN profile_info ON profile_info.user_id = users.id").
		Where("follows.followed_id = ?", followedID).
		Order("follows.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, followedID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followed_id = ?", followedID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}
