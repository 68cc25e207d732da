package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/model"
)

// CommentWithReplyCount carries the per-comment reply count computed at query
// time. The count is never stored, so it cannot drift on concurrent deletes.
type CommentWithReplyCount struct {
	model.Comment
	ReplyCount int64
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// CreateWithNotification inserts the comment and, when notification is
	// non-nil, the notification row in one transaction.
	CreateWithNotification(ctx context.Context, comment *model.Comment, notification *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	FindTopLevelByPostID(ctx context.Context, postID uuid.UUID, offset, limit int) ([]CommentWithReplyCount, int64, error)
	FindRepliesByParentID(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]*model.Comment, int64, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) CreateWithNotification(ctx context.Context, comment *model.Comment, notification *model.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if notification != nil {
			notification.CommentID = &comment.ID
			if err := tx.Create(notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindTopLevelByPostID(ctx context.Context, postID uuid.UUID, offset, limit int) ([]CommentWithReplyCount, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []CommentWithReplyCount
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("comments.*, COUNT(replies.id) AS reply_count").
		Joins("LEFT JOIN comments replies ON replies.parent_id = comments.id").
		Where("comments.post_id = ? AND comments.parent_id IS NULL", postID).
		Group("comments.id").
		Order("comments.created_at ASC").Order("comments.id ASC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *commentRepository) FindRepliesByParentID(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]*model.Comment, int64, error) {
	query := r.db.WithContext(ctx).Where("parent_id = ?", parentID)

	var total int64
	if err := query.Model(&model.Comment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var replies []*model.Comment
	if err := query.Preload("User").
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&replies).Error; err != nil {
		return nil, 0, err
	}

	return replies, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Replies cascade via the parent_id foreign key.
	return r.db.WithContext(ctx).Delete(&model.Comment{}, "id = ?", id).Error
}
