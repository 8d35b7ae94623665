package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/apperr"
	"github.com/d60-Lab/socialnet/pkg/pagination"
)

// PostResult is a served post: the cached aggregate plus the live view count,
// merged at serve time so the aggregate never goes stale on views alone.
type PostResult struct {
	Post  model.PostView `json:"post"`
	Views int64          `json:"views"`
}

// PostList is one page of posts with its cursors.
type PostList struct {
	Posts  []model.PostView  `json:"posts"`
	Window pagination.Window `json:"window"`
}

// LikeOutcome reports which way the like toggle went.
type LikeOutcome string

const (
	OutcomeLiked    LikeOutcome = "liked"
	OutcomeDisliked LikeOutcome = "disliked"
)

type PostService interface {
	Create(ctx context.Context, authorID, text, image string) (model.PostView, error)
	Get(ctx context.Context, postID string) (PostResult, error)
	List(ctx context.Context, page, pageSize int) (PostList, error)
	ToggleLike(ctx context.Context, postID, userID string) (LikeOutcome, error)
	AddComment(ctx context.Context, postID, authorID, text string, replyToID *string) (model.PostComment, error)
	Delete(ctx context.Context, postID, requesterID string, requesterRole string) error
}

type postService struct {
	postRepo repository.PostRepository
	posts    *cache.Cache[model.PostView]
	views    *cache.ViewCounter
}

func NewPostService(postRepo repository.PostRepository, posts *cache.Cache[model.PostView], views *cache.ViewCounter) PostService {
	return &postService{postRepo: postRepo, posts: posts, views: views}
}

func (s *postService) Create(ctx context.Context, authorID, text, image string) (model.PostView, error) {
	post := &model.Post{ID: uuid.New().String(), AuthorID: authorID, Text: text, Image: image}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return model.PostView{}, apperr.Upstream(err)
	}
	view, err := s.postRepo.FindViewByID(ctx, post.ID)
	if err != nil {
		return model.PostView{}, apperr.Upstream(err)
	}
	if err := s.posts.Put(ctx, post.ID, view); err != nil {
		return model.PostView{}, err
	}
	return view, nil
}

// Get counts the view first, then serves the aggregate cache-aside.
func (s *postService) Get(ctx context.Context, postID string) (PostResult, error) {
	count, err := s.views.Increment(ctx, postID)
	if err != nil {
		return PostResult{}, err
	}
	view, err := s.posts.GetOrLoad(ctx, postID, s.loader(postID))
	if err != nil {
		return PostResult{}, err
	}
	return PostResult{Post: view, Views: count}, nil
}

func (s *postService) List(ctx context.Context, page, pageSize int) (PostList, error) {
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return PostList{}, apperr.Upstream(err)
	}
	window, err := pagination.Page(page, pageSize, total)
	if err != nil {
		return PostList{}, err
	}
	ids, err := s.postRepo.ListIDs(ctx, window.StartIndex, pageSize)
	if err != nil {
		return PostList{}, apperr.Upstream(err)
	}
	out := make([]model.PostView, 0, len(ids))
	for _, id := range ids {
		view, err := s.posts.GetOrLoad(ctx, id, s.loader(id))
		if err != nil {
			return PostList{}, err
		}
		out = append(out, view)
	}
	return PostList{Posts: out, Window: window}, nil
}

// ToggleLike mutates a relation under the aggregate, so it invalidates and
// lets the next read rebuild instead of patching the cached view.
func (s *postService) ToggleLike(ctx context.Context, postID, userID string) (LikeOutcome, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ErrNotFound
		}
		return "", apperr.Upstream(err)
	}
	liked, err := s.postRepo.LikeExists(ctx, postID, userID)
	if err != nil {
		return "", apperr.Upstream(err)
	}
	outcome := OutcomeLiked
	if liked {
		err = s.postRepo.DeleteLike(ctx, postID, userID)
		outcome = OutcomeDisliked
	} else {
		err = s.postRepo.CreateLike(ctx, postID, userID)
	}
	if err != nil {
		return "", apperr.Upstream(err)
	}
	if err := s.posts.Invalidate(ctx, postID); err != nil {
		return "", err
	}
	return outcome, nil
}

func (s *postService) AddComment(ctx context.Context, postID, authorID, text string, replyToID *string) (model.PostComment, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PostComment{}, apperr.ErrNotFound
		}
		return model.PostComment{}, apperr.Upstream(err)
	}
	comment := &model.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		ReplyToID: replyToID,
	}
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return model.PostComment{}, apperr.Upstream(err)
	}
	if err := s.posts.Invalidate(ctx, postID); err != nil {
		return model.PostComment{}, err
	}
	return model.PostComment{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		ReplyToID: comment.ReplyToID,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// Delete removes the post with its comments and likes, then drops the cached
// aggregate. Only the author or an admin may delete.
func (s *postService) Delete(ctx context.Context, postID, requesterID, requesterRole string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.Upstream(err)
	}
	if post.AuthorID != requesterID && requesterRole != model.RoleAdmin {
		return apperr.ErrUnauthenticated
	}
	if err := s.postRepo.DeleteCascade(ctx, postID); err != nil {
		return apperr.Upstream(err)
	}
	return s.posts.Invalidate(ctx, postID)
}

func (s *postService) loader(postID string) cache.Loader[model.PostView] {
	return func(ctx context.Context) (model.PostView, error) {
		view, err := s.postRepo.FindViewByID(ctx, postID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.PostView{}, apperr.ErrNotFound
			}
			return model.PostView{}, apperr.Upstream(err)
		}
		return view, nil
	}
}
