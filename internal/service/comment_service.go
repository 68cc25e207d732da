package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"nudduck.com/nudduck/internal/dto"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/repository"
	"nudduck.com/nudduck/pkg/apperror"
)

type CommentService interface {
	CreateComment(ctx context.Context, postID, userID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	// CreateReply attaches a reply under the given comment. The reply's post is
	// always derived from the parent row, never taken from the caller.
	CreateReply(ctx context.Context, parentCommentID, userID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, commentID, userID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID, userID uuid.UUID) error
	GetCommentsWithReplies(ctx context.Context, postID uuid.UUID, p dto.PaginationQuery) (*dto.CommentListResponse, error)
	GetRepliesByCommentID(ctx context.Context, commentID uuid.UUID, p dto.PaginationQuery) (*dto.CommentListResponse, error)
}

type commentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	notification NotificationService
	redisClient  *redis.Client
	rateLimits   RateLimits
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository, notification NotificationService, redisClient *redis.Client, rateLimits RateLimits) CommentService {
	return &commentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		userRepo:     userRepo,
		notification: notification,
		redisClient:  redisClient,
		rateLimits:   rateLimits,
	}
}

func (s *commentService) CreateComment(ctx context.Context, postID, userID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(fmt.Errorf("post lookup: %w", err))
	}

	if err := acquireCooldowns(ctx, s.redisClient, userID, "comment", s.rateLimits, s.rateLimits.Comment); err != nil {
		return nil, err
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			releaseCooldowns(ctx, s.redisClient, userID, "comment")
		}
	}()

	comment := &model.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: sanitize(req.Content),
	}

	var notification *model.Notification
	if post.UserID != userID {
		notification = &model.Notification{
			UserID:  post.UserID,
			ActorID: userID,
			PostID:  &post.ID,
			Type:    "comment_post",
			Message: fmt.Sprintf("Someone commented on your post '%s'", post.Title),
		}
	}

	// Comment and notification land in one transaction
	if err := s.commentRepo.CreateWithNotification(ctx, comment, notification); err != nil {
		return nil, err
	}
	creationFailed = false

	if notification != nil && s.notification != nil {
		s.notification.Publish(ctx, notification)
	}

	return s.loadResponse(ctx, comment, 0), nil
}

func (s *commentService) CreateReply(ctx context.Context, parentCommentID, userID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	parent, err := s.commentRepo.FindByID(ctx, parentCommentID)
	if err != nil {
		return nil, mapNotFound(fmt.Errorf("parent comment lookup: %w", err))
	}

	// Only one level of nesting exists
	if parent.ParentID != nil {
		return nil, apperror.ErrBadRequest
	}

	if err := acquireCooldowns(ctx, s.redisClient, userID, "comment", s.rateLimits, s.rateLimits.Comment); err != nil {
		return nil, err
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			releaseCooldowns(ctx, s.redisClient, userID, "comment")
		}
	}()

	reply := &model.Comment{
		PostID:   parent.PostID,
		ParentID: &parent.ID,
		UserID:   userID,
		Content:  sanitize(req.Content),
	}

	var notification *model.Notification
	if parent.UserID != userID {
		notification = &model.Notification{
			UserID:  parent.UserID,
			ActorID: userID,
			PostID:  &parent.PostID,
			Type:    "reply_comment",
			Message: "Someone replied to your comment",
		}
	}

	if err := s.commentRepo.CreateWithNotification(ctx, reply, notification); err != nil {
		return nil, err
	}
	creationFailed = false

	if notification != nil && s.notification != nil {
		s.notification.Publish(ctx, notification)
	}

	return s.loadResponse(ctx, reply, 0), nil
}

func (s *commentService) UpdateComment(ctx context.Context, commentID, userID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if err := CheckOwnership(userID, comment.UserID); err != nil {
		return nil, err
	}

	comment.Content = sanitize(req.Content)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, comment, 0), nil
}

func (s *commentService) DeleteComment(ctx context.Context, commentID, userID uuid.UUID) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return mapNotFound(err)
	}

	if err := CheckOwnership(userID, comment.UserID); err != nil {
		return err
	}

	return s.commentRepo.Delete(ctx, commentID)
}

func (s *commentService) GetCommentsWithReplies(ctx context.Context, postID uuid.UUID, p dto.PaginationQuery) (*dto.CommentListResponse, error) {
	p.Normalize()

	rows, total, err := s.commentRepo.FindTopLevelByPostID(ctx, postID, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	authors, err := s.loadAuthors(ctx, authorIDsFromRows(rows))
	if err != nil {
		return nil, err
	}

	resp := &dto.CommentListResponse{
		Comments: make([]dto.CommentResponse, 0, len(rows)),
		Total:    total,
	}
	for _, row := range rows {
		resp.Comments = append(resp.Comments, mapCommentToResponse(&row.Comment, row.ReplyCount, authors[row.UserID]))
	}

	return resp, nil
}

func (s *commentService) GetRepliesByCommentID(ctx context.Context, commentID uuid.UUID, p dto.PaginationQuery) (*dto.CommentListResponse, error) {
	p.Normalize()

	replies, total, err := s.commentRepo.FindRepliesByParentID(ctx, commentID, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.CommentListResponse{
		Comments: make([]dto.CommentResponse, 0, len(replies)),
		Total:    total,
	}
	for _, reply := range replies {
		resp.Comments = append(resp.Comments, mapCommentToResponse(reply, 0, &reply.User))
	}

	return resp, nil
}

func (s *commentService) loadResponse(ctx context.Context, comment *model.Comment, replyCount int64) *dto.CommentResponse {
	author, err := s.userRepo.FindByID(ctx, comment.UserID)
	if err != nil {
		author = nil
	}
	resp := mapCommentToResponse(comment, replyCount, author)
	return &resp
}

func (s *commentService) loadAuthors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.User, error) {
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func authorIDsFromRows(rows []repository.CommentWithReplyCount) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		ids = append(ids, row.UserID)
	}
	return ids
}

func mapCommentToResponse(comment *model.Comment, replyCount int64, author *model.User) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:         comment.ID,
		PostID:     comment.PostID,
		ParentID:   comment.ParentID,
		Content:    comment.Content,
		ReplyCount: replyCount,
		Author: dto.AuthorResponse{
			UserID: comment.UserID,
		},
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if author != nil {
		resp.Author.Nickname = author.Nickname
		resp.Author.ImageURL = author.ImageURL
	}
	return resp
}
