package handler

import (
	"log"
	"net/http"

	"redesocial/internal/httputil"
	"redesocial/internal/service"
	"redesocial/internal/transport/http/middleware"
)

// NotificationHandler handles notification feed endpoints
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Feed handles GET /api/notifications
func (h *NotificationHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	feed, err := h.notificationService.FeedFor(r.Context(), userID)
	if err != nil {
		log.Printf("[NotificationHandler] feed failed: %v", err)
		httputil.WriteInternalError(w, "Failed to load notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// MarkAllRead handles POST /api/notifications/read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		log.Printf("[NotificationHandler] mark read failed: %v", err)
		httputil.WriteInternalError(w, "Failed to mark notifications as read")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notifications marked as read"})
}

// UnreadCount handles GET /api/notifications/unread
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Printf("[NotificationHandler] unread count failed: %v", err)
		httputil.WriteInternalError(w, "Failed to load unread count")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread": count})
}
