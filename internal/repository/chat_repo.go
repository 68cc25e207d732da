package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/model"
)

type ChatRepository interface {
	CreateSession(ctx context.Context, session *model.ChatSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error)
	FindSessionsByUser(ctx context.Context, userID uuid.UUID) ([]*model.ChatSession, error)
	FindLatestSessionByUser(ctx context.Context, userID uuid.UUID) (*model.ChatSession, error)
	FindMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*model.ChatMessage, error)
	// CreateExchange persists one user turn and the matching AI turn in a
	// single transaction so a stored question is never left unanswered.
	CreateExchange(ctx context.Context, userMsg, aiMsg *model.ChatMessage) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateSession(ctx context.Context, session *model.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *chatRepository) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepository) FindSessionsByUser(ctx context.Context, userID uuid.UUID) ([]*model.ChatSession, error) {
	var sessions []*model.ChatSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *chatRepository) FindLatestSessionByUser(ctx context.Context, userID uuid.UUID) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepository) FindMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) CreateExchange(ctx context.Context, userMsg, aiMsg *model.ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		return tx.Create(aiMsg).Error
	})
}
