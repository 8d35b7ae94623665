package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/apperr"
)

// SearchScope selects the search strategy.
type SearchScope string

const (
	// ScopeActive scans live session entries only: a heuristic over users
	// with a session, not a complete index.
	ScopeActive SearchScope = "active"
	// ScopeAll matches against the primary store's username column.
	ScopeAll SearchScope = "all"
)

// SearchService 用户名近似搜索：无全文索引，cache 扫描 + 子串匹配兜底。
type SearchService interface {
	Search(ctx context.Context, query string, scope SearchScope, requesterID string) ([]model.UserView, error)
}

type searchService struct {
	userRepo repository.UserRepository
	sessions *cache.SessionStore
}

func NewSearchService(userRepo repository.UserRepository, sessions *cache.SessionStore) SearchService {
	return &searchService{userRepo: userRepo, sessions: sessions}
}

// likeMetaChars are the characters a wildcarded pattern engine would
// interpret; user input must match them literally.
const likeMetaChars = `-/\^$*+?.()|[]{}%_`

// EscapeLike backslash-escapes every metacharacter before the query is
// embedded in a %...% pattern, so "a.b*c" matches the literal substring.
func EscapeLike(query string) string {
	var b strings.Builder
	b.Grow(len(query) * 2)
	for _, r := range query {
		if strings.ContainsRune(likeMetaChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *searchService) Search(ctx context.Context, query string, scope SearchScope, requesterID string) ([]model.UserView, error) {
	if scope == ScopeActive {
		return s.searchActive(ctx, query, requesterID)
	}
	return s.searchAll(ctx, query, requesterID)
}

// searchActive pages through the session keyspace with a cursor and tests
// each username case-insensitively. Only users with a live session can match.
func (s *searchService) searchActive(ctx context.Context, query, requesterID string) ([]model.UserView, error) {
	needle := strings.ToLower(query)
	matched := make([]model.UserView, 0)
	err := s.sessions.ForEachActive(ctx, func(view model.UserView) error {
		if view.ID == requesterID {
			return nil
		}
		if strings.Contains(strings.ToLower(view.Username), needle) {
			matched = append(matched, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (s *searchService) searchAll(ctx context.Context, query, requesterID string) ([]model.UserView, error) {
	pattern := "%" + EscapeLike(query) + "%"
	views, err := s.userRepo.SearchByUsername(ctx, pattern)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	out := views[:0]
	for _, v := range views {
		if v.ID != requesterID {
			out = append(out, v)
		}
	}
	return out, nil
}
