package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialnet/internal/model"
)

// relationLimit caps how many comments and likers get assembled into a PostView.
const relationLimit = 50

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindViewByID(ctx context.Context, id string) (model.PostView, error)
	ListIDs(ctx context.Context, offset, limit int) ([]string, error)
	DeleteCascade(ctx context.Context, id string) error
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, postID string, limit int) ([]model.PostComment, error)
	CreateLike(ctx context.Context, postID, userID string) error
	DeleteLike(ctx context.Context, postID, userID string) error
	LikeExists(ctx context.Context, postID, userID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindViewByID assembles post + author identity + newest comments + likers
// into the aggregate the cache stores.
func (r *postRepository) FindViewByID(ctx context.Context, id string) (model.PostView, error) {
	post, err := r.FindByID(ctx, id)
	if err != nil {
		return model.PostView{}, err
	}

	var author model.User
	if err := r.db.WithContext(ctx).Where("id = ?", post.AuthorID).First(&author).Error; err != nil {
		return model.PostView{}, err
	}

	comments, err := r.ListComments(ctx, id, relationLimit)
	if err != nil {
		return model.PostView{}, err
	}

	var likers []model.PostAuthor
	err = r.db.WithContext(ctx).
		Table("likes").
		Select("users.id", "users.username").
		Joins("JOIN users ON likes.user_id = users.id").
		Where("likes.post_id = ?", id).
		Order("likes.created_at DESC").
		Limit(relationLimit).
		Scan(&likers).Error
	if err != nil {
		return model.PostView{}, err
	}

	return model.PostView{
		ID:        post.ID,
		Text:      post.Text,
		Image:     post.Image,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Author:    model.PostAuthor{ID: author.ID, Username: author.Username},
		Comments:  comments,
		Likes:     likers,
	}, nil
}

func (r *postRepository) ListIDs(ctx context.Context, offset, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteCascade removes the post together with its comments and likes in one
// transaction, the single-store write boundary for post deletion.
func (r *postRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

func (r *postRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *postRepository) ListComments(ctx context.Context, postID string, limit int) ([]model.PostComment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.PostComment, len(comments))
	for i, c := range comments {
		out[i] = model.PostComment{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Text:      c.Text,
			ReplyToID: c.ReplyToID,
			CreatedAt: c.CreatedAt,
		}
	}
	return out, nil
}

func (r *postRepository) CreateLike(ctx context.Context, postID, userID string) error {
	l := &model.Like{ID: uuid.New().String(), PostID: postID, UserID: userID}
	// 幂等：重复点赞不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
}

func (r *postRepository) DeleteLike(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.Like{}).Error
}

func (r *postRepository) LikeExists(ctx context.Context, postID, userID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&cnt).Error
	return cnt, err
}
