package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/abuildsit/borrowlog/internal/middleware"
	"github.com/abuildsit/borrowlog/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications handles GET /api/v1/notifications?unread=true
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	unreadOnly := false
	if v := r.URL.Query().Get("unread"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, "unread must be a boolean", http.StatusBadRequest)
			return
		}
		unreadOnly = parsed
	}

	notifications, err := h.notificationService.List(ctx, userID, unreadOnly)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list notifications")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// MarkRead handles POST /api/v1/notifications/{notification_id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	notificationID := chi.URLParam(r, "notification_id")

	notification, err := h.notificationService.MarkRead(ctx, userID, notificationID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("notification_id", notificationID).Msg("Failed to mark notification read")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	count, err := h.notificationService.MarkAllRead(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to mark notifications read")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"marked": count})
}
