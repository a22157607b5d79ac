package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the notification stream
const (
	EventNotificationCreated = "notification_created"
	EventNotificationsRead   = "notifications_read"
)

// Stream names
const (
	StreamNotifications = "stream:notifications"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// NotificationEvent is published after a notification-affecting write has
// committed. Workers use it to keep the per-user unread badge cache warm;
// the database row is always written first and remains the source of truth.
type NotificationEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// RecipientID is the notification queue owner.
	RecipientID int64 `json:"recipient_id"`

	// NotificationCreated only
	ActorID   int64  `json:"actor_id,omitempty"`
	NotifType string `json:"notif_type,omitempty"` // like, friend_request, friend_accepted, dm
	RefID     int64  `json:"ref_id,omitempty"`     // post or message id when present
}

// NewNotificationCreatedEvent describes a freshly enqueued notification.
// The worker increments the recipient's unread counter.
func NewNotificationCreatedEvent(recipientID, actorID int64, notifType string, refID int64) NotificationEvent {
	return NotificationEvent{
		Type:        EventNotificationCreated,
		Timestamp:   time.Now().Unix(),
		RecipientID: recipientID,
		ActorID:     actorID,
		NotifType:   notifType,
		RefID:       refID,
	}
}

// NewNotificationsReadEvent describes a mark-all-read drain.
// The worker resets the recipient's unread counter to zero.
func NewNotificationsReadEvent(recipientID int64) NotificationEvent {
	return NotificationEvent{
		Type:        EventNotificationsRead,
		Timestamp:   time.Now().Unix(),
		RecipientID: recipientID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e NotificationEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseNotificationEvent parses a NotificationEvent from Redis stream message values.
func ParseNotificationEvent(values map[string]interface{}) (NotificationEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return NotificationEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event NotificationEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
