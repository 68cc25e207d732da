package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID         uuid.UUID      `json:"id"`
	PostID     uuid.UUID      `json:"post_id"`
	ParentID   *uuid.UUID     `json:"parent_id,omitempty"`
	Content    string         `json:"content"`
	ReplyCount int64          `json:"reply_count"`
	Author     AuthorResponse `json:"author"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int64             `json:"total"`
}
