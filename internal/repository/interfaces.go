package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
)

// Write operations that participate in a larger unit of work take an
// explicit *sqlx.Tx; the owning service opens and commits the transaction
// so id assignment, counters and notification side effects land atomically.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Exists reports whether a user id is registered.
	Exists(ctx context.Context, id int64) (bool, error)
	// List returns every user except excludeID (the chat partner picker).
	List(ctx context.Context, excludeID int64) ([]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, authorID int64, authorName, content string) (*model.Post, error)
	// GetByID returns the post with its like set loaded.
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// VisibleTo returns the viewer's posts plus accepted friends' posts,
	// newest first, like sets loaded.
	VisibleTo(ctx context.Context, viewerID int64) ([]model.Post, error)
	Edit(ctx context.Context, postID int64, content string, editedAt time.Time) error
	Delete(ctx context.Context, postID int64) error
	// LikeState returns the bulk {likes, likes_by} snapshot for every post.
	LikeState(ctx context.Context) (map[int64]model.LikeState, error)

	// Like accounting. InsertLike reports false when the actor already
	// liked the post; DeleteLike reports false when there was no like.
	InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	IncrementLikes(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	LikeCount(ctx context.Context, postID int64) (int, error)
}

type FriendshipRepository interface {
	// Create inserts a pending edge. Returns false when any edge already
	// exists between the pair, in either direction.
	Create(ctx context.Context, tx *sqlx.Tx, requesterID, addresseeID int64) (bool, error)
	// Accept flips the pending (requester -> addressee) edge to accepted.
	// Returns false when no such pending edge exists.
	Accept(ctx context.Context, tx *sqlx.Tx, requesterID, addresseeID int64) (bool, error)
	// DeletePending removes the pending (requester -> addressee) edge.
	// Returns false when no such pending edge exists.
	DeletePending(ctx context.Context, tx *sqlx.Tx, requesterID, addresseeID int64) (bool, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
	Friends(ctx context.Context, userID int64) ([]model.UserSummary, error)
	PendingFor(ctx context.Context, userID int64) ([]model.PendingRequest, error)
}

type MessageRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, senderID, receiverID int64, content string) (*model.Message, error)
	// ListBetweenSince returns messages exchanged between a and b with
	// id > sinceID, ascending by id.
	ListBetweenSince(ctx context.Context, a, b, sinceID int64) ([]model.Message, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error
	// ListFor returns the newest notifications for a user, capped at limit.
	ListFor(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	// UnreadCount counts unread notifications over the full, uncapped set.
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkAllRead(ctx context.Context, userID int64) error
	// DeleteFriendRequest purges friend_request notifications sent to
	// recipient by requester, so resolved requests never linger.
	DeleteFriendRequest(ctx context.Context, tx *sqlx.Tx, recipientID, requesterID int64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
