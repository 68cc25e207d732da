package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/model"
)

type LifeGraphRepository interface {
	Create(ctx context.Context, graph *model.LifeGraph) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LifeGraph, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*model.LifeGraph, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type lifeGraphRepository struct {
	db *gorm.DB
}

func NewLifeGraphRepository(db *gorm.DB) LifeGraphRepository {
	return &lifeGraphRepository{db: db}
}

func (r *lifeGraphRepository) Create(ctx context.Context, graph *model.LifeGraph) error {
	return r.db.WithContext(ctx).Create(graph).Error
}

func (r *lifeGraphRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LifeGraph, error) {
	var graph model.LifeGraph
	if err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("age ASC")
		}).
		Where("id = ?", id).
		First(&graph).Error; err != nil {
		return nil, err
	}
	return &graph, nil
}

func (r *lifeGraphRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*model.LifeGraph, error) {
	var graphs []*model.LifeGraph
	if err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("age ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&graphs).Error; err != nil {
		return nil, err
	}
	return graphs, nil
}

func (r *lifeGraphRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.LifeGraph{}, "id = ?", id).Error
}
