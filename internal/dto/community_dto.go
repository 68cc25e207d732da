package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Category string `json:"category" binding:"required,max=50"`
	Title    string `json:"title" binding:"required,max=255"`
	Content  string `json:"content" binding:"required"`
}

type UpdatePostRequest struct {
	Category *string `json:"category" binding:"omitempty,max=50"`
	Title    *string `json:"title" binding:"omitempty,max=255"`
	Content  *string `json:"content"`
}

type PostResponse struct {
	ID        uuid.UUID      `json:"id"`
	Category  string         `json:"category"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	ViewCount int            `json:"view_count"`
	Author    AuthorResponse `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type PaginatedPostResponse struct {
	Posts []PostResponse `json:"posts"`
	Total int64          `json:"total"`
}

type SearchPostQuery struct {
	Query string `form:"q" binding:"required"`
	PaginationQuery
}
