package repository

import (
	"context"
	"fmt"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/store"
)

// NotificationRepository handles store operations for notifications
type NotificationRepository struct {
	store store.Client
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(st store.Client) *NotificationRepository {
	return &NotificationRepository{store: st}
}

// CreateNotificationParams are the fields for a new notification.
type CreateNotificationParams struct {
	RecipientID string
	SenderID    *string
	LoanID      *string
	Type        string
	Message     string
}

// Create inserts a new unread notification.
func (r *NotificationRepository) Create(ctx context.Context, p CreateNotificationParams) (*models.Notification, error) {
	switch p.Type {
	case models.NotificationDueDate, models.NotificationReturnRequest, models.NotificationReturnConfirmation:
	default:
		return nil, store.NewError(store.Validation, CollectionNotifications, "unknown notification type %q", p.Type)
	}

	rec := store.Record{
		"recipient_id": p.RecipientID,
		"type":         p.Type,
		"message":      p.Message,
		"is_read":      false,
	}
	if p.SenderID != nil {
		rec["sender_id"] = *p.SenderID
	}
	if p.LoanID != nil {
		rec["loan_id"] = *p.LoanID
	}

	created, err := r.store.Create(ctx, CollectionNotifications, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notificationFromRecord(created), nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	rec, err := r.store.FetchOne(ctx, CollectionNotifications, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return notificationFromRecord(rec), nil
}

// ListForRecipient returns a user's notifications, newest first.
// When unreadOnly is true, read notifications are excluded.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	predicates := map[string]any{"recipient_id": userID}
	if unreadOnly {
		predicates["is_read"] = false
	}

	recs, err := r.store.FetchMany(ctx, CollectionNotifications, predicates, &store.Ordering{Column: "created_at", Descending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	notifications := make([]models.Notification, len(recs))
	for i, rec := range recs {
		notifications[i] = *notificationFromRecord(rec)
	}
	return notifications, nil
}

// MarkRead flips the read flag, the only mutation notifications allow.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, read bool) (*models.Notification, error) {
	updated, err := r.store.Update(ctx, CollectionNotifications, id, store.Record{"is_read": read})
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification: %w", err)
	}
	return notificationFromRecord(updated), nil
}

func notificationFromRecord(rec store.Record) *models.Notification {
	return &models.Notification{
		ID:          asString(rec["id"]),
		RecipientID: asString(rec["recipient_id"]),
		SenderID:    asStringPtr(rec["sender_id"]),
		LoanID:      asStringPtr(rec["loan_id"]),
		Type:        asString(rec["type"]),
		Message:     asString(rec["message"]),
		IsRead:      asBool(rec["is_read"]),
		CreatedAt:   asTime(rec["created_at"]),
	}
}
