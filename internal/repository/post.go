package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, authorID int64, authorName, content string) (*model.Post, error) {
	query := `
		INSERT INTO posts (author_id, author_name, content)
		VALUES (?, ?, ?)
		RETURNING id, author_id, author_name, content, likes, created_at, updated_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, authorID, authorName, content)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	post.LikesBy = []int64{}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, author_id, author_name, content, likes, created_at, updated_at
		FROM posts
		WHERE id = ?
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts := []model.Post{post}
	if err := r.loadLikes(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *postRepository) VisibleTo(ctx context.Context, viewerID int64) ([]model.Post, error) {
	// Own posts plus posts by users connected through an accepted edge.
	query := `
		SELECT id, author_id, author_name, content, likes, created_at, updated_at
		FROM posts
		WHERE author_id = ?
		   OR author_id IN (
			SELECT CASE WHEN requester_id = ? THEN addressee_id ELSE requester_id END
			FROM friendships
			WHERE status = 'accepted' AND (requester_id = ? OR addressee_id = ?)
		   )
		ORDER BY id DESC
	`
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, viewerID, viewerID, viewerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get visible posts: %w", err)
	}

	if err := r.loadLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Edit(ctx context.Context, postID int64, content string, editedAt time.Time) error {
	query := `UPDATE posts SET content = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, content, editedAt, postID)
	if err != nil {
		return fmt.Errorf("edit post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) LikeState(ctx context.Context) (map[int64]model.LikeState, error) {
	state := make(map[int64]model.LikeState)

	type postLikes struct {
		ID    int64 `db:"id"`
		Likes int   `db:"likes"`
	}
	var counts []postLikes
	if err := r.db.SelectContext(ctx, &counts, `SELECT id, likes FROM posts`); err != nil {
		return nil, fmt.Errorf("get like counts: %w", err)
	}
	for _, p := range counts {
		state[p.ID] = model.LikeState{Likes: p.Likes, LikesBy: []int64{}}
	}

	type likeRow struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var likes []likeRow
	err := r.db.SelectContext(ctx, &likes, `SELECT post_id, user_id FROM post_likes ORDER BY post_id, rowid`)
	if err != nil {
		return nil, fmt.Errorf("get like rows: %w", err)
	}
	for _, l := range likes {
		s := state[l.PostID]
		s.LikesBy = append(s.LikesBy, l.UserID)
		state[l.PostID] = s
	}

	return state, nil
}

func (r *postRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := `INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postRepository) IncrementLikes(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	query := `UPDATE posts SET likes = likes + ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, delta, postID); err != nil {
		return fmt.Errorf("increment likes: %w", err)
	}
	return nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT likes FROM posts WHERE id = ?`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrPostNotFound
		}
		return 0, fmt.Errorf("get like count: %w", err)
	}
	return count, nil
}

// loadLikes fills LikesBy for each post with one batch query.
// Like order is insertion order (post_likes rowid).
func (r *postRepository) loadLikes(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].LikesBy = []int64{}
	}

	query, args, err := sqlx.In(`SELECT post_id, user_id FROM post_likes WHERE post_id IN (?) ORDER BY post_id, rowid`, ids)
	if err != nil {
		return fmt.Errorf("build likes query: %w", err)
	}

	type likeRow struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var likes []likeRow
	if err := r.db.SelectContext(ctx, &likes, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load likes: %w", err)
	}

	for _, l := range likes {
		i := index[l.PostID]
		posts[i].LikesBy = append(posts[i].LikesBy, l.UserID)
	}
	return nil
}
