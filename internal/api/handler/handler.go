package handler

import (
	"github.com/d60-Lab/socialnet/internal/service"
)

// Handler bundles the services the HTTP layer exposes.
type Handler struct {
	authService   service.AuthService
	userService   service.UserService
	relService    service.RelationshipService
	searchService service.SearchService
	postService   service.PostService
	propagator    *service.IdentityPropagator
}

func New(auth service.AuthService, user service.UserService, rel service.RelationshipService,
	search service.SearchService, post service.PostService, propagator *service.IdentityPropagator) *Handler {
	return &Handler{
		authService:   auth,
		userService:   user,
		relService:    rel,
		searchService: search,
		postService:   post,
		propagator:    propagator,
	}
}
