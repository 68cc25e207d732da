package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LifeGraph is a scored timeline of life events shown on a user's profile.
type LifeGraph struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User             `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Events    []LifeGraphEvent `gorm:"foreignKey:LifeGraphID;constraint:OnDelete:CASCADE" json:"events"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *LifeGraph) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID, err = uuid.NewV7()
	}
	return
}

type LifeGraphEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LifeGraphID uuid.UUID `gorm:"type:uuid;not null;index" json:"life_graph_id"`
	Age         int       `gorm:"not null" json:"age"`
	Score       int       `gorm:"not null" json:"score"` // -5 .. 5
	Title       string    `gorm:"size:255;not null" json:"title"`
}
