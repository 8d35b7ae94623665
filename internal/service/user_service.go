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

type AccountUpdate struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ProfileUpdate struct {
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
	Gender     string `json:"gender"`
}

// ProfileResult is the self-profile response with relation counts.
type ProfileResult struct {
	Profile   model.UserView `json:"profile"`
	Followers int64          `json:"followers"`
	Following int64          `json:"following"`
}

// UserService owns a user's own account and profile fields. These are the
// cheap, well-known field-level updates that get written through into the
// session snapshot instead of invalidated.
type UserService interface {
	Profile(ctx context.Context, userID string) (ProfileResult, error)
	UpdateAccount(ctx context.Context, userID string, update AccountUpdate) (model.UserView, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (model.UserView, error)
}

type userService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	sessions   *cache.SessionStore
	relations  RelationshipService
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository,
	sessions *cache.SessionStore, relations RelationshipService) UserService {
	return &userService{userRepo: userRepo, followRepo: followRepo, sessions: sessions, relations: relations}
}

func (s *userService) Profile(ctx context.Context, userID string) (ProfileResult, error) {
	view, err := s.userRepo.FindView(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileResult{}, apperr.ErrNotFound
		}
		return ProfileResult{}, apperr.Upstream(err)
	}
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return ProfileResult{}, apperr.Upstream(err)
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return ProfileResult{}, apperr.Upstream(err)
	}
	return ProfileResult{Profile: view, Followers: followers, Following: following}, nil
}

// UpdateAccount changes fullName/username/email. Store first, then the
// session snapshot; a username change additionally kicks off the follower
// snapshot fan-out, which the request does not wait for.
func (s *userService) UpdateAccount(ctx context.Context, userID string, update AccountUpdate) (model.UserView, error) {
	current, err := s.userRepo.FindView(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.UserView{}, apperr.ErrNotFound
		}
		return model.UserView{}, apperr.Upstream(err)
	}

	if update.FullName == "" {
		update.FullName = current.FullName
	}
	if update.Username == "" {
		update.Username = current.Username
	}
	if update.Email == "" {
		update.Email = current.Email
	}

	taken, err := s.userRepo.ExistsOther(ctx, userID, update.Username, update.Email)
	if err != nil {
		return model.UserView{}, apperr.Upstream(err)
	}
	if taken {
		return model.UserView{}, apperr.ErrConflict
	}

	fields := map[string]any{
		"full_name": update.FullName,
		"username":  update.Username,
		"email":     update.Email,
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return model.UserView{}, apperr.Upstream(err)
	}

	view, err := s.userRepo.FindView(ctx, userID)
	if err != nil {
		return model.UserView{}, apperr.Upstream(err)
	}
	if err := s.writeThroughSession(ctx, view); err != nil {
		return model.UserView{}, err
	}
	if view.Username != current.Username {
		s.relations.PropagateIdentityChange(view)
	}
	return view, nil
}

// UpdateProfile changes bio/avatar/gender, creating the profile row on first
// use. An avatar change fans out like a rename does.
func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (model.UserView, error) {
	profile, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return model.UserView{}, apperr.Upstream(err)
		}
		profile = &model.ProfileInfo{UserID: userID, AccountStatus: model.AccountActive}
	}
	oldPic := profile.ProfilePic

	if update.ProfilePic != "" {
		profile.ProfilePic = update.ProfilePic
	}
	if update.Bio != "" {
		profile.Bio = update.Bio
	}
	if update.Gender != "" {
		profile.Gender = update.Gender
	}
	if err := s.userRepo.SaveProfile(ctx, profile); err != nil {
		return model.UserView{}, apperr.Upstream(err)
	}

	view, err := s.userRepo.FindView(ctx, userID)
	if err != nil {
		return model.UserView{}, apperr.Upstream(err)
	}
	if err := s.writeThroughSession(ctx, view); err != nil {
		return model.UserView{}, err
	}
	if view.ProfilePic != oldPic {
		s.relations.PropagateIdentityChange(view)
	}
	return view, nil
}

// writeThroughSession refreshes the cached snapshot only while a session
// exists; a logged-out user's update must not resurrect one.
func (s *userService) writeThroughSession(ctx context.Context, view model.UserView) error {
	_, ok, err := s.sessions.Get(ctx, view.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.sessions.Put(ctx, view)
}
