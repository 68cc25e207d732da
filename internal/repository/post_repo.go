package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Post, error)
	FindAll(ctx context.Context, offset, limit int) ([]*model.Post, int64, error)
	FindByCategory(ctx context.Context, category string, offset, limit int) ([]*model.Post, int64, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}

	var posts []*model.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) FindAll(ctx context.Context, offset, limit int) ([]*model.Post, int64, error) {
	return r.findPage(ctx, r.db.WithContext(ctx), offset, limit)
}

func (r *postRepository) FindByCategory(ctx context.Context, category string, offset, limit int) ([]*model.Post, int64, error) {
	query := r.db.WithContext(ctx).Where("category = ?", category)
	return r.findPage(ctx, query, offset, limit)
}

func (r *postRepository) findPage(ctx context.Context, query *gorm.DB, offset, limit int) ([]*model.Post, int64, error) {
	var posts []*model.Post
	var total int64

	if err := query.Model(&model.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Secondary order on id keeps paging deterministic within one timestamp.
	if err := query.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}

// IncrementViewCount adds one to the stored view count in a single UPDATE so
// concurrent readers cannot lose increments to a read-modify-write race.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}
