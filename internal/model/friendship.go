package model

import (
	"errors"
	"time"
)

// Friendship statuses. There is no stored "rejected" state: rejecting a
// request deletes the row, so the same pair may request again later.
const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
)

// Friendship is the single stored edge between an unordered pair of users.
// RequesterID/AddresseeID keep the request direction; uniqueness is
// enforced per unordered pair regardless of direction.
type Friendship struct {
	ID          int64     `db:"id" json:"id"`
	RequesterID int64     `db:"requester_id" json:"requester_id"`
	AddresseeID int64     `db:"addressee_id" json:"addressee_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PendingRequest is a pending edge enriched with the requester's username
// for display.
type PendingRequest struct {
	RequesterID   int64     `db:"requester_id" json:"requester_id"`
	RequesterName string    `db:"requester_name" json:"requester_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

var (
	// ErrCannotBefriendSelf is returned when a user sends a request to themself
	ErrCannotBefriendSelf = errors.New("cannot send a friend request to yourself")

	// ErrFriendshipExists is returned when any edge (pending or accepted,
	// either direction) already exists between the pair
	ErrFriendshipExists = errors.New("friendship or pending request already exists")

	// ErrFriendRequestNotFound is returned when no matching pending request exists
	ErrFriendRequestNotFound = errors.New("friend request not found")

	// ErrNotFriends is returned when an operation requires an accepted friendship
	ErrNotFriends = errors.New("users are not friends")
)
