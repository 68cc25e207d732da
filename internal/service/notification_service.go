package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/repository"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	// Publish pushes an already-persisted notification to the recipient's live
	// channel. Used when the row was inserted inside another transaction.
	Publish(ctx context.Context, notification *model.Notification)
	GetNotifications(ctx context.Context, userID uuid.UUID, p PageArgs) ([]*model.Notification, error)
	// MarkAsRead only touches the caller's own notification; anyone else's id
	// surfaces as not found.
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PageArgs is the repo-level limit/offset pair.
type PageArgs struct {
	Limit  int
	Offset int
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// NotificationChannel is the redis pub/sub channel for one recipient.
func NotificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}
	s.Publish(ctx, notification)
	return nil
}

func (s *notificationService) Publish(ctx context.Context, notification *model.Notification) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	s.redisClient.Publish(ctx, NotificationChannel(notification.UserID), payload)
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, p PageArgs) ([]*model.Notification, error) {
	if p.Limit == 0 {
		p.Limit = 20
	}
	return s.repo.FindByUserID(ctx, userID, p.Offset, p.Limit)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return mapNotFound(s.repo.MarkAsRead(ctx, userID, id))
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
