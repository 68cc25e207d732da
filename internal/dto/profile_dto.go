package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	ImageURL  *string   `json:"image_url"`
	Hashtags  []string  `json:"hashtags"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Nickname *string   `json:"nickname" binding:"omitempty,min=2,max=50"`
	Hashtags *[]string `json:"hashtags" binding:"omitempty,max=10"`
}

// UserProfileResponse is the public view of another user, shown in the
// community profile modal.
type UserProfileResponse struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Nickname          string             `json:"nickname"`
	ImageURL          *string            `json:"image_url"`
	Hashtags          []string           `json:"hashtags"`
	FavoriteLifeGraph *LifeGraphResponse `json:"favorite_life_graph,omitempty"`
}

type LifeGraphResponse struct {
	ID        uuid.UUID                `json:"id"`
	Title     string                   `json:"title"`
	Events    []LifeGraphEventResponse `json:"events"`
	CreatedAt time.Time                `json:"created_at"`
}

type LifeGraphEventResponse struct {
	Age   int    `json:"age"`
	Score int    `json:"score"`
	Title string `json:"title"`
}

type CreateLifeGraphRequest struct {
	Title  string                 `json:"title" binding:"required,max=255"`
	Events []CreateLifeGraphEvent `json:"events" binding:"required,min=1,dive"`
}

type CreateLifeGraphEvent struct {
	Age   int    `json:"age" binding:"required,min=0,max=120"`
	Score int    `json:"score" binding:"min=-5,max=5"`
	Title string `json:"title" binding:"required,max=255"`
}
