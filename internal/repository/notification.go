package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, actor_id, ref_id, text)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, read, created_at
	`
	err := tx.QueryRowxContext(ctx, query, n.UserID, n.Type, n.ActorID, n.RefID, n.Text).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListFor(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, type, actor_id, ref_id, read, text, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	var items []model.Notification
	err := r.db.SelectContext(ctx, &items, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	// read only ever flips 0 -> 1; rows are kept for later rendering.
	query := `UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) DeleteFriendRequest(ctx context.Context, tx *sqlx.Tx, recipientID, requesterID int64) error {
	query := `
		DELETE FROM notifications
		WHERE user_id = ? AND actor_id = ? AND type = ?
	`
	_, err := tx.ExecContext(ctx, query, recipientID, requesterID, model.NotificationTypeFriendRequest)
	if err != nil {
		return fmt.Errorf("delete friend request notification: %w", err)
	}
	return nil
}
