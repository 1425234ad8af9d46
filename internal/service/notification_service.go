package service

import (
	"context"

	"github.com/GTDGit/bakery_api/internal/models"
)

type notificationStore interface {
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Inbox is a user's notification list.
type Inbox struct {
	Unread        int                   `json:"unread"`
	Notifications []models.Notification `json:"notifications"`
}

type NotificationService struct {
	repo notificationStore
}

func NewNotificationService(repo notificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Inbox(ctx context.Context, userID string, unreadOnly bool, limit int) (*Inbox, error) {
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Unread: unread, Notifications: list}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
