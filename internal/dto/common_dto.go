package dto

import "github.com/google/uuid"

type AuthorResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Nickname string    `json:"nickname"`
	ImageURL *string   `json:"image_url"`
}

// PaginationQuery is a limit/offset pair bounding a page of an ordered result
// set. Defaults are applied by the services.
type PaginationQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=50"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (p *PaginationQuery) Normalize() {
	if p.Limit == 0 {
		p.Limit = 10
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
