package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/apperr"
)

// FollowOutcome reports which way the toggle went.
type FollowOutcome string

const (
	OutcomeFollowed   FollowOutcome = "followed"
	OutcomeUnfollowed FollowOutcome = "unfollowed"
)

// RelationshipService 关系链服务: owns the follow edge and its denormalized
// follower snapshot, keeping the two eventually in agreement.
type RelationshipService interface {
	Follow(ctx context.Context, followerID, followedID string) (FollowOutcome, error)
	Unfollow(ctx context.Context, followerID, followedID string) error
	ListFollowers(ctx context.Context, followedID string) ([]model.FollowerSnapshot, error)
	ListFollowersPage(ctx context.Context, followedID string, page, pageSize int) ([]model.FollowerSnapshot, error)
	PropagateIdentityChange(view model.UserView)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	followers  *cache.FollowerStore
	propagator *IdentityPropagator
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository,
	followers *cache.FollowerStore, propagator *IdentityPropagator) RelationshipService {
	return &relationshipService{followRepo: followRepo, userRepo: userRepo, followers: followers, propagator: propagator}
}

// Follow toggles the edge: absent inserts it and writes the follower's
// snapshot, present degrades to unfollow. The store write always lands before
// the cache write it is reflected by.
func (s *relationshipService) Follow(ctx context.Context, followerID, followedID string) (FollowOutcome, error) {
	if followerID == followedID {
		return "", apperr.ErrSelfFollow
	}
	exists, err := s.followRepo.Exists(ctx, followerID, followedID)
	if err != nil {
		return "", apperr.Upstream(err)
	}
	if exists {
		if err := s.Unfollow(ctx, followerID, followedID); err != nil {
			return "", err
		}
		return OutcomeUnfollowed, nil
	}

	if err := s.followRepo.Create(ctx, followerID, followedID); err != nil {
		return "", apperr.Upstream(err)
	}
	snap, err := s.followerIdentity(ctx, followerID)
	if err != nil {
		return "", err
	}
	if err := s.followers.Add(ctx, followedID, snap); err != nil {
		return "", err
	}
	return OutcomeFollowed, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := s.followRepo.Delete(ctx, followerID, followedID); err != nil {
		return apperr.Upstream(err)
	}
	return s.followers.Remove(ctx, followedID, followerID)
}

// ListFollowers reads the snapshot collection, rebuilding it from the edge
// table when cold. Zero followers is an empty slice, not an error.
func (s *relationshipService) ListFollowers(ctx context.Context, followedID string) ([]model.FollowerSnapshot, error) {
	snaps, err := s.followers.All(ctx, followedID)
	if err != nil {
		return nil, err
	}
	if len(snaps) > 0 {
		return snaps, nil
	}
	rebuilt, err := s.followRepo.ListFollowerViews(ctx, followedID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if err := s.followers.WriteAll(ctx, followedID, rebuilt); err != nil {
		return nil, err
	}
	return rebuilt, nil
}

// ListFollowersPage serves one page off the follower index list, falling back
// to a full rebuild when the index is cold.
func (s *relationshipService) ListFollowersPage(ctx context.Context, followedID string, page, pageSize int) ([]model.FollowerSnapshot, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	ids, err := s.followers.PageIDs(ctx, followedID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		all, err := s.ListFollowers(ctx, followedID)
		if err != nil {
			return nil, err
		}
		if offset >= len(all) {
			return []model.FollowerSnapshot{}, nil
		}
		end := offset + pageSize
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], nil
	}

	byID := make(map[string]model.FollowerSnapshot)
	snaps, err := s.followers.All(ctx, followedID)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		byID[snap.ID] = snap
	}
	out := make([]model.FollowerSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := byID[id]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

// PropagateIdentityChange hands the changed identity to the async fan-out.
// It returns immediately; the triggering request never blocks on completion.
func (s *relationshipService) PropagateIdentityChange(view model.UserView) {
	if s.propagator != nil {
		s.propagator.Enqueue(view)
	}
}

// followerIdentity loads the public identity written into snapshots.
func (s *relationshipService) followerIdentity(ctx context.Context, followerID string) (model.FollowerSnapshot, error) {
	view, err := s.userRepo.FindView(ctx, followerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.FollowerSnapshot{}, apperr.ErrNotFound
		}
		return model.FollowerSnapshot{}, apperr.Upstream(err)
	}
	return model.FollowerSnapshot{ID: view.ID, Username: view.Username, ProfilePic: view.ProfilePic}, nil
}
