package model

import (
	"fmt"
	"time"
)

// Notification types
const (
	NotificationTypeLike           = "like"
	NotificationTypeFriendRequest  = "friend_request"
	NotificationTypeFriendAccepted = "friend_accepted"
	NotificationTypeDM             = "dm"
)

// NotificationFeedCap is the maximum number of items returned per feed
// read. The unread count is computed over the full set before capping.
const NotificationFeedCap = 50

// Notification is a single entry in a user's notification queue.
// ActorID is the user whose action produced it; RefID points at the
// related post or message when one exists.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"` // Recipient
	Type      string    `db:"type" json:"type"`
	ActorID   *int64    `db:"actor_id" json:"actor_id"`
	RefID     *int64    `db:"ref_id" json:"ref_id"`
	Read      bool      `db:"read" json:"read"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// NotificationFeed is the poll response for a user's notification queue.
type NotificationFeed struct {
	Unread int            `json:"unread"`
	Items  []Notification `json:"items"`
}

// NotificationText derives the display text for a notification type from
// the actor's display name. Texts match the product's original wording.
func NotificationText(notifType, actorName string) string {
	switch notifType {
	case NotificationTypeLike:
		return fmt.Sprintf("%s curtiu seu post", actorName)
	case NotificationTypeFriendRequest:
		return fmt.Sprintf("%s enviou uma solicitação de amizade", actorName)
	case NotificationTypeFriendAccepted:
		return fmt.Sprintf("%s aceitou sua solicitação de amizade", actorName)
	case NotificationTypeDM:
		return fmt.Sprintf("Nova DM de: %s", actorName)
	default:
		return actorName
	}
}
