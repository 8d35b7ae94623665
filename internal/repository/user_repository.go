package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	ExistsOther(ctx context.Context, id, username, email string) (bool, error)
	FindProfile(ctx context.Context, userID string) (*model.ProfileInfo, error)
	SaveProfile(ctx context.Context, profile *model.ProfileInfo) error
	FindView(ctx context.Context, id string) (model.UserView, error)
	SearchByUsername(ctx context.Context, pattern string) ([]model.UserView, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// ExistsOther reports whether a different user already holds the username or email.
func (r *userRepository) ExistsOther(ctx context.Context, id, username, email string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, id).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *userRepository) FindProfile(ctx context.Context, userID string) (*model.ProfileInfo, error) {
	var p model.ProfileInfo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *userRepository) SaveProfile(ctx context.Context, profile *model.ProfileInfo) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// FindView assembles the flattened user+profile projection. A user without a
// profile row still resolves, with zero-valued profile fields.
func (r *userRepository) FindView(ctx context.Context, id string) (model.UserView, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return model.UserView{}, err
	}
	p, err := r.FindProfile(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return model.UserView{}, err
		}
		p = &model.ProfileInfo{UserID: id, AccountStatus: model.AccountActive}
	}
	return model.CombineUserProfile(*u, *p), nil
}

// SearchByUsername runs the pattern (already wildcarded and escaped, see
// search.EscapeLike) case-insensitively against the username column.
func (r *userRepository) SearchByUsername(ctx context.Context, pattern string) ([]model.UserView, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		v, err := r.FindView(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
