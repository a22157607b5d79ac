package model

import (
	"errors"
	"time"
)

// Post represents a feed post. AuthorName is a snapshot of the author's
// username at creation time, not a live reference: renaming a user leaves
// historical posts untouched.
type Post struct {
	ID         int64      `db:"id" json:"id"`
	AuthorID   int64      `db:"author_id" json:"author_id"`
	AuthorName string     `db:"author_name" json:"author_name"`
	Content    string     `db:"content" json:"content"`
	Likes      int        `db:"likes" json:"likes"`
	CreatedAt  time.Time  `db:"created_at" json:"timestamp"`
	UpdatedAt  *time.Time `db:"updated_at" json:"edited_at,omitempty"`

	// LikesBy is joined from post_likes, in like-insertion order.
	// Invariant: Likes == len(LikesBy), no duplicates.
	LikesBy []int64 `json:"likes_by"`
}

// LikeState is the per-post like snapshot used by clients to reconcile
// optimistic local like state.
type LikeState struct {
	Likes   int     `json:"likes"`
	LikesBy []int64 `json:"likes_by"`
}

// ToggleLikeResult reports the outcome of a like toggle.
// Liked is true when the actor's like was added, false when removed.
type ToggleLikeResult struct {
	PostID int64 `json:"post_id"`
	Liked  bool  `json:"liked"`
	Likes  int   `json:"likes"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required"`
}

// EditPostRequest is the request body for editing a post.
type EditPostRequest struct {
	Content string `json:"content" validate:"required"`
}

// Post constraints
const (
	MaxPostContentLength = 2200
)

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrEmptyContent   = errors.New("post content is empty")
	ErrContentTooLong = errors.New("post content too long")
)
