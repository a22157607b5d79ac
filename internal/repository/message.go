package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, tx *sqlx.Tx, senderID, receiverID int64, content string) (*model.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES (?, ?, ?)
		RETURNING id, sender_id, receiver_id, content, created_at
	`
	var msg model.Message
	err := tx.GetContext(ctx, &msg, query, senderID, receiverID, content)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) ListBetweenSince(ctx context.Context, a, b, sinceID int64) ([]model.Message, error) {
	// Cursor scan: strictly newer than sinceID, ascending, so a client
	// polling with its highest seen id never sees a repeat or a skip back.
	query := `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE id > ?
		  AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
		ORDER BY id ASC
	`
	var messages []model.Message
	err := r.db.SelectContext(ctx, &messages, query, sinceID, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
