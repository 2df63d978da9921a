package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/store"
)

// NotificationService handles notification-related business logic
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	hub              *Hub
}

// NewNotificationService creates a new notification service. The hub
// may be nil when no live delivery is wanted (tests).
func NewNotificationService(notificationRepo *repository.NotificationRepository, hub *Hub) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
	}
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.notificationRepo.ListForRecipient(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, store.NewError(store.Permission, repository.CollectionNotifications, "notification %s does not belong to user", notificationID)
	}
	return s.notificationRepo.MarkRead(ctx, notificationID, true)
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many were flipped.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.notificationRepo.ListForRecipient(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	for _, n := range unread {
		if _, err := s.notificationRepo.MarkRead(ctx, n.ID, true); err != nil {
			return 0, fmt.Errorf("failed to mark notification %s: %w", n.ID, err)
		}
	}
	return len(unread), nil
}

// Notify persists a notification and pushes it to the recipient's
// WebSocket connection when online. Delivery is best effort; the
// persisted record is the source of truth.
func (s *NotificationService) Notify(ctx context.Context, p repository.CreateNotificationParams) (*models.Notification, error) {
	n, err := s.notificationRepo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	if s.hub != nil && s.hub.IsOnline(n.RecipientID) {
		if err := s.hub.SendToUser(n.RecipientID, Event{Type: "notification", Notification: n}); err != nil {
			log.Error().
				Err(err).
				Str("recipient_id", n.RecipientID).
				Str("notification_id", n.ID).
				Msg("Failed to push notification")
		}
	}
	return n, nil
}
