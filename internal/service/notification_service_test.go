package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/service"
	"nudduck.com/nudduck/pkg/apperror"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*model.Notification
	order         []uuid.UUID
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	stored := *notification
	r.notifications[notification.ID] = &stored
	r.order = append(r.order, notification.ID)
	return nil
}

func (r *fakeNotificationRepo) FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Notification
	for i := len(r.order) - 1; i >= 0; i-- {
		n := r.notifications[r.order[i]]
		if n.UserID == userID {
			copied := *n
			out = append(out, &copied)
		}
	}
	if offset >= len(out) {
		return []*model.Notification{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func seedNotification(t *testing.T, repo *fakeNotificationRepo, recipient uuid.UUID) *model.Notification {
	t.Helper()
	n := &model.Notification{
		UserID:  recipient,
		ActorID: uuid.New(),
		Type:    "comment_post",
		Message: "Someone commented on your post",
	}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func TestMarkAsRead_OnlyForRecipient(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := service.NewNotificationService(repo, nil)
	recipient := uuid.New()
	n := seedNotification(t, repo, recipient)

	// Another user's id does not reveal or touch the row
	err := svc.MarkAsRead(context.Background(), uuid.New(), n.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if count, _ := svc.UnreadCount(context.Background(), recipient); count != 1 {
		t.Errorf("unread count = %d, want 1", count)
	}

	if err := svc.MarkAsRead(context.Background(), recipient, n.ID); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if count, _ := svc.UnreadCount(context.Background(), recipient); count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}

func TestMarkAsRead_MissingNotification(t *testing.T) {
	svc := service.NewNotificationService(newFakeNotificationRepo(), nil)

	err := svc.MarkAsRead(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := service.NewNotificationService(repo, nil)
	recipient := uuid.New()
	other := uuid.New()

	seedNotification(t, repo, recipient)
	seedNotification(t, repo, recipient)
	seedNotification(t, repo, other)

	if err := svc.MarkAllAsRead(context.Background(), recipient); err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}

	if count, _ := svc.UnreadCount(context.Background(), recipient); count != 0 {
		t.Errorf("recipient unread = %d, want 0", count)
	}
	if count, _ := svc.UnreadCount(context.Background(), other); count != 1 {
		t.Errorf("other unread = %d, want 1", count)
	}
}
