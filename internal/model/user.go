package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email               string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Nickname            string     `gorm:"size:50;uniqueIndex;not null" json:"nickname"`
	Name                string     `gorm:"size:100;not null" json:"name"`
	PasswordHash        string     `gorm:"size:255;not null" json:"-"`
	ImageURL            *string    `gorm:"type:text" json:"image_url,omitempty"`
	Hashtags            []string   `gorm:"serializer:json;type:jsonb" json:"hashtags"`
	FavoriteLifeGraphID *uuid.UUID `gorm:"type:uuid" json:"favorite_life_graph_id,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
