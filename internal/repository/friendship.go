package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
)

type friendshipRepository struct {
	db *sqlx.DB
}

func NewFriendshipRepository(db *sqlx.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, tx *sqlx.Tx, requesterID, addresseeID int64) (bool, error) {
	// The unique (pair_lo, pair_hi) index rejects a second edge for the
	// pair in either direction; OR IGNORE turns that into rows == 0.
	query := `
		INSERT OR IGNORE INTO friendships (requester_id, addressee_id, status)
		VALUES (?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query, requesterID, addresseeID, model.FriendshipStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to create friendship: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *friendshipRepository) Accept(ctx context.Context, tx *sqlx.Tx, requesterID, addresseeID int64) (bool, error) {
	// Direction matters: only the addressee of the pending edge accepts.
	query := `
		UPDATE friendships
		SET status = ?
		WHERE requester_id = ? AND addressee_id = ? AND status = ?
	`
	result, err := tx.ExecContext(ctx, query,
		model.FriendshipStatusAccepted, requesterID, addresseeID, model.FriendshipStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to accept friendship: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *friendshipRepository) DeletePending(ctx context.Context, tx *sqlx.Tx, requesterID, addresseeID int64) (bool, error) {
	// Rejecting deletes the edge outright; a later re-request is allowed.
	query := `
		DELETE FROM friendships
		WHERE requester_id = ? AND addressee_id = ? AND status = ?
	`
	result, err := tx.ExecContext(ctx, query, requesterID, addresseeID, model.FriendshipStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to delete pending friendship: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *friendshipRepository) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE pair_lo = MIN(?, ?) AND pair_hi = MAX(?, ?) AND status = ?
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, a, b, a, b, model.FriendshipStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

func (r *friendshipRepository) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT CASE WHEN requester_id = ? THEN addressee_id ELSE requester_id END
		FROM friendships
		WHERE status = ? AND (requester_id = ? OR addressee_id = ?)
	`
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID, model.FriendshipStatusAccepted, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}
	return ids, nil
}

func (r *friendshipRepository) Friends(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END
		WHERE f.status = ? AND (f.requester_id = ? OR f.addressee_id = ?)
		ORDER BY u.username
	`
	var friends []model.UserSummary
	err := r.db.SelectContext(ctx, &friends, query, userID, model.FriendshipStatusAccepted, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	return friends, nil
}

func (r *friendshipRepository) PendingFor(ctx context.Context, userID int64) ([]model.PendingRequest, error) {
	query := `
		SELECT f.requester_id, u.username AS requester_name, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = ? AND f.status = ?
		ORDER BY f.id DESC
	`
	var requests []model.PendingRequest
	err := r.db.SelectContext(ctx, &requests, query, userID, model.FriendshipStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending requests: %w", err)
	}
	return requests, nil
}
