package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"nudduck.com/nudduck/internal/dto"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/repository"
	"nudduck.com/nudduck/pkg/apperror"
	"nudduck.com/nudduck/pkg/logger"
)

type CommunityService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
	// GetPostByID is the detail read; it increments the view count for every
	// caller, the author included.
	GetPostByID(ctx context.Context, postID uuid.UUID) (*dto.PostResponse, error)
	GetPosts(ctx context.Context, p dto.PaginationQuery) (*dto.PaginatedPostResponse, error)
	GetPostsByCategory(ctx context.Context, category string, p dto.PaginationQuery) (*dto.PaginatedPostResponse, error)
	SearchPosts(ctx context.Context, q dto.SearchPostQuery) (*dto.PaginatedPostResponse, error)
}

type communityService struct {
	postRepo    repository.PostRepository
	search      SearchService
	redisClient *redis.Client
	rateLimits  RateLimits
}

// RateLimits holds the per-action creation cooldowns.
type RateLimits struct {
	Global  time.Duration
	Post    time.Duration
	Comment time.Duration
}

func NewCommunityService(postRepo repository.PostRepository, search SearchService, redisClient *redis.Client, rateLimits RateLimits) CommunityService {
	return &communityService{
		postRepo:    postRepo,
		search:      search,
		redisClient: redisClient,
		rateLimits:  rateLimits,
	}
}

func (s *communityService) CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest) (*dto.PostResponse, error) {
	if err := acquireCooldowns(ctx, s.redisClient, userID, "post", s.rateLimits, s.rateLimits.Post); err != nil {
		return nil, err
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			releaseCooldowns(ctx, s.redisClient, userID, "post")
		}
	}()

	post := &model.Post{
		UserID:   userID,
		Category: req.Category,
		Title:    req.Title,
		Content:  sanitize(req.Content),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	creationFailed = false

	// Reload to pick up the author for the response
	created, err := s.postRepo.FindByID(ctx, post.ID)
	if err == nil {
		post = created
	}

	s.indexAsync(post)

	return mapPostToResponse(post), nil
}

func (s *communityService) UpdatePost(ctx context.Context, userID, postID uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if err := CheckOwnership(userID, post.UserID); err != nil {
		return nil, err
	}

	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = sanitize(*req.Content)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.indexAsync(post)

	return mapPostToResponse(post), nil
}

func (s *communityService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return mapNotFound(err)
	}

	if err := CheckOwnership(userID, post.UserID); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeletePost(postID); err != nil {
			logger.L().Warn("failed to remove post from search index",
				zap.String("post_id", postID.String()), zap.Error(err))
		}
	}

	return nil
}

func (s *communityService) GetPostByID(ctx context.Context, postID uuid.UUID) (*dto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		return nil, err
	}
	post.ViewCount++

	return mapPostToResponse(post), nil
}

func (s *communityService) GetPosts(ctx context.Context, p dto.PaginationQuery) (*dto.PaginatedPostResponse, error) {
	p.Normalize()

	posts, total, err := s.postRepo.FindAll(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return paginatedPosts(posts, total), nil
}

func (s *communityService) GetPostsByCategory(ctx context.Context, category string, p dto.PaginationQuery) (*dto.PaginatedPostResponse, error) {
	p.Normalize()

	posts, total, err := s.postRepo.FindByCategory(ctx, category, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return paginatedPosts(posts, total), nil
}

func (s *communityService) SearchPosts(ctx context.Context, q dto.SearchPostQuery) (*dto.PaginatedPostResponse, error) {
	if s.search == nil {
		return nil, apperror.ErrInternal
	}
	q.Normalize()

	ids, total, err := s.search.Search(q.Query, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Keep the relevance order returned by the index
	byID := make(map[uuid.UUID]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return paginatedPosts(ordered, total), nil
}

func (s *communityService) indexAsync(post *model.Post) {
	if s.search == nil {
		return
	}
	go func() {
		if err := s.search.IndexPost(post); err != nil {
			logger.L().Warn("failed to index post",
				zap.String("post_id", post.ID.String()), zap.Error(err))
		}
	}()
}

func paginatedPosts(posts []*model.Post, total int64) *dto.PaginatedPostResponse {
	resp := &dto.PaginatedPostResponse{
		Posts: make([]dto.PostResponse, 0, len(posts)),
		Total: total,
	}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, *mapPostToResponse(p))
	}
	return resp
}

func mapPostToResponse(post *model.Post) *dto.PostResponse {
	return &dto.PostResponse{
		ID:        post.ID,
		Category:  post.Category,
		Title:     post.Title,
		Content:   post.Content,
		ViewCount: post.ViewCount,
		Author: dto.AuthorResponse{
			UserID:   post.UserID,
			Nickname: post.User.Nickname,
			ImageURL: post.User.ImageURL,
		},
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
