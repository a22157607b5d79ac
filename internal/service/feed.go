package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
	"redesocial/internal/queue"
	"redesocial/internal/repository"
)

// FeedService owns post creation, friend-scoped feed visibility, and the
// like toggle. Toggling is a pure alternation: two identical calls restore
// the original state, and only the like-add transition notifies the author.
type FeedService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	db        *sqlx.DB
	publisher queue.Publisher // nil when Redis is not configured
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		db:        db,
		publisher: publisher,
	}
}

// CreatePost stamps the author's current username onto the post. The name
// is a creation-time snapshot; later renames do not rewrite history.
func (s *FeedService) CreatePost(ctx context.Context, authorID int64, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.ErrEmptyContent
	}
	if len(content) > model.MaxPostContentLength {
		return nil, model.ErrContentTooLong
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, authorID, author.Username, content)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// VisibleFeedFor returns the viewer's own posts plus their accepted
// friends' posts, newest first.
func (s *FeedService) VisibleFeedFor(ctx context.Context, viewerID int64) ([]model.Post, error) {
	posts, err := s.postRepo.VisibleTo(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// ToggleLike alternates the actor's like on a post. The like row, the
// denormalized counter, and the author's notification land in a single
// transaction so likes == |likes_by| holds at every commit point.
func (s *FeedService) ToggleLike(ctx context.Context, postID, actorID int64) (*model.ToggleLikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.postRepo.InsertLike(ctx, tx, postID, actorID)
	if err != nil {
		return nil, err
	}

	result := &model.ToggleLikeResult{PostID: postID}

	if inserted {
		if err := s.postRepo.IncrementLikes(ctx, tx, postID, 1); err != nil {
			return nil, err
		}
		result.Liked = true
		result.Likes = post.Likes + 1

		// Self-likes stay silent.
		if actorID != post.AuthorID {
			notif := &model.Notification{
				UserID:  post.AuthorID,
				Type:    model.NotificationTypeLike,
				ActorID: &actorID,
				RefID:   &postID,
				Text:    model.NotificationText(model.NotificationTypeLike, actor.Username),
			}
			if err := s.notifRepo.Create(ctx, tx, notif); err != nil {
				return nil, err
			}
		}
	} else {
		if _, err := s.postRepo.DeleteLike(ctx, tx, postID, actorID); err != nil {
			return nil, err
		}
		if err := s.postRepo.IncrementLikes(ctx, tx, postID, -1); err != nil {
			return nil, err
		}
		result.Liked = false
		result.Likes = post.Likes - 1
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if result.Liked && actorID != post.AuthorID && s.publisher != nil {
		event := queue.NewNotificationCreatedEvent(post.AuthorID, actorID, model.NotificationTypeLike, postID)
		if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
			log.Printf("[FeedService] Failed to publish like event: post=%d err=%v", postID, err)
		}
	}

	return result, nil
}

// EditPost rewrites the content and stamps updated_at; created_at and
// feed position are preserved.
func (s *FeedService) EditPost(ctx context.Context, postID, actorID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.ErrEmptyContent
	}
	if len(content) > model.MaxPostContentLength {
		return model.ErrContentTooLong
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return model.ErrNotPostOwner
	}

	return s.postRepo.Edit(ctx, postID, content, time.Now().UTC())
}

func (s *FeedService) DeletePost(ctx context.Context, postID, actorID int64) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return model.ErrNotPostOwner
	}

	return s.postRepo.Delete(ctx, postID)
}

// LikeState is the bulk snapshot clients reconcile optimistic like UI
// against after a poll.
func (s *FeedService) LikeState(ctx context.Context) (map[int64]model.LikeState, error) {
	return s.postRepo.LikeState(ctx)
}
