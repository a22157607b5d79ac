package service

import (
	"context"
	"log"

	"redesocial/internal/cache"
	"redesocial/internal/model"
	"redesocial/internal/queue"
	"redesocial/internal/repository"
)

// NotificationService reads a user's notification queue and drains it.
// Emission happens inside the other services' transactions; this service
// only owns the read and mark-read side.
type NotificationService struct {
	notifRepo   repository.NotificationRepository
	unreadCache cache.UnreadCache // nil when Redis is not configured
	publisher   queue.Publisher   // nil when Redis is not configured
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	unreadCache cache.UnreadCache,
	publisher queue.Publisher,
) *NotificationService {
	return &NotificationService{
		notifRepo:   notifRepo,
		unreadCache: unreadCache,
		publisher:   publisher,
	}
}

// FeedFor returns the newest items capped at the feed limit, with the
// unread count computed over the full uncapped set.
func (s *NotificationService) FeedFor(ctx context.Context, userID int64) (*model.NotificationFeed, error) {
	unread, err := s.notifRepo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.notifRepo.ListFor(ctx, userID, model.NotificationFeedCap)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Notification{}
	}

	return &model.NotificationFeed{Unread: unread, Items: items}, nil
}

// MarkAllRead flips every unread notification to read. Rows are kept, so
// a client that missed a render can still show them afterwards.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewNotificationsReadEvent(userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
			log.Printf("[NotificationService] Failed to publish read event: user=%d err=%v", userID, err)
		}
	}
	return nil
}

// UnreadCount serves the badge. The cache answers when warm; a miss falls
// back to the store and repopulates the counter.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if s.unreadCache != nil {
		count, found, err := s.unreadCache.Get(ctx, userID)
		if err != nil {
			log.Printf("[NotificationService] Unread cache read failed: user=%d err=%v", userID, err)
		} else if found {
			return int(count), nil
		}
	}

	count, err := s.notifRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.unreadCache != nil {
		if err := s.unreadCache.Set(ctx, userID, int64(count)); err != nil {
			log.Printf("[NotificationService] Unread cache warm failed: user=%d err=%v", userID, err)
		}
	}
	return count, nil
}
