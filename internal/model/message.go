package model

import (
	"errors"
	"time"
)

// Message is a direct message between two friends. Messages are immutable
// once created; id order is the canonical retrieval order.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID int64     `db:"receiver_id" json:"receiver_id"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"timestamp"`
}

// SendMessageRequest is the request body for sending a direct message.
type SendMessageRequest struct {
	PartnerID int64  `json:"partner_id" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

// MessageListResponse wraps an incremental poll result. Clients pass the
// highest id previously seen as since_id; the response only carries
// strictly newer messages, ascending by id.
type MessageListResponse struct {
	Messages []Message `json:"messages"`
}

var (
	// ErrEmptyMessage is returned when the message content is blank after trimming
	ErrEmptyMessage = errors.New("message content is empty")
)
