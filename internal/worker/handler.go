package worker

import (
	"context"
	"fmt"
	"log"

	"redesocial/internal/cache"
	"redesocial/internal/queue"
)

// Handler applies notification events to the unread badge cache.
// It never touches the database; the store was written before the event
// was published, so the cache only needs the delta.
type Handler struct {
	unreadCache cache.UnreadCache
}

// NewHandler creates a new event handler.
func NewHandler(unreadCache cache.UnreadCache) *Handler {
	return &Handler{unreadCache: unreadCache}
}

// HandleEvent dispatches a single event. Unknown event types are logged
// and acknowledged rather than retried.
func (h *Handler) HandleEvent(ctx context.Context, event queue.NotificationEvent) error {
	switch event.Type {
	case queue.EventNotificationCreated:
		return h.handleCreated(ctx, event)
	case queue.EventNotificationsRead:
		return h.handleRead(ctx, event)
	default:
		log.Printf("[Handler] Unknown event type: %s", event.Type)
		return nil
	}
}

func (h *Handler) handleCreated(ctx context.Context, event queue.NotificationEvent) error {
	if err := h.unreadCache.Increment(ctx, event.RecipientID); err != nil {
		return fmt.Errorf("increment unread for user %d: %w", event.RecipientID, err)
	}
	return nil
}

func (h *Handler) handleRead(ctx context.Context, event queue.NotificationEvent) error {
	if err := h.unreadCache.Reset(ctx, event.RecipientID); err != nil {
		return fmt.Errorf("reset unread for user %d: %w", event.RecipientID, err)
	}
	return nil
}
