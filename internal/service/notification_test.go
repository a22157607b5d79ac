package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
	"redesocial/internal/queue"
)

type mockNotificationRepository struct {
	createFn      func(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error
	listForFn     func(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	unreadCountFn func(ctx context.Context, userID int64) (int, error)

	markAllReadCalls  int
	deleteRequestArgs [][2]int64
	created           []*model.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error {
	m.created = append(m.created, n)
	if m.createFn != nil {
		return m.createFn(ctx, tx, n)
	}
	return nil
}

func (m *mockNotificationRepository) ListFor(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if m.listForFn != nil {
		return m.listForFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if m.unreadCountFn != nil {
		return m.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	m.markAllReadCalls++
	return nil
}

func (m *mockNotificationRepository) DeleteFriendRequest(ctx context.Context, tx *sqlx.Tx, recipientID, requesterID int64) error {
	m.deleteRequestArgs = append(m.deleteRequestArgs, [2]int64{recipientID, requesterID})
	return nil
}

// fakeUnreadCache is an in-memory stand-in for the Redis counter cache.
type fakeUnreadCache struct {
	counts map[int64]int64

	setCalls   int
	resetCalls int
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{counts: make(map[int64]int64)}
}

func (c *fakeUnreadCache) Get(ctx context.Context, userID int64) (int64, bool, error) {
	count, ok := c.counts[userID]
	return count, ok, nil
}

func (c *fakeUnreadCache) Set(ctx context.Context, userID, count int64) error {
	c.setCalls++
	c.counts[userID] = count
	return nil
}

func (c *fakeUnreadCache) Increment(ctx context.Context, userID int64) error {
	if _, ok := c.counts[userID]; ok {
		c.counts[userID]++
	}
	return nil
}

func (c *fakeUnreadCache) Reset(ctx context.Context, userID int64) error {
	c.resetCalls++
	c.counts[userID] = 0
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	events []queue.NotificationEvent
}

func (p *fakePublisher) Publish(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
	p.events = append(p.events, event)
	return "0-1", nil
}

func TestNotificationService_FeedFor_CapsItemsNotUnread(t *testing.T) {
	// 60 unread total, but the feed is capped; unread must still report 60.
	repo := &mockNotificationRepository{
		unreadCountFn: func(ctx context.Context, userID int64) (int, error) {
			return 60, nil
		},
		listForFn: func(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
			if limit != model.NotificationFeedCap {
				t.Errorf("limit = %d, want %d", limit, model.NotificationFeedCap)
			}
			items := make([]model.Notification, limit)
			return items, nil
		},
	}
	svc := NewNotificationService(repo, nil, nil)

	feed, err := svc.FeedFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if feed.Unread != 60 {
		t.Errorf("unread = %d, want 60", feed.Unread)
	}
	if len(feed.Items) != model.NotificationFeedCap {
		t.Errorf("items = %d, want %d", len(feed.Items), model.NotificationFeedCap)
	}
}

func TestNotificationService_FeedFor_EmptyIsNotNil(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, nil, nil)

	feed, err := svc.FeedFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if feed.Items == nil {
		t.Error("items should be an empty slice, not nil")
	}
}

func TestNotificationService_UnreadCount_CacheHit(t *testing.T) {
	repo := &mockNotificationRepository{
		unreadCountFn: func(ctx context.Context, userID int64) (int, error) {
			t.Error("store should not be hit on a warm cache")
			return 0, nil
		},
	}
	unreadCache := newFakeUnreadCache()
	unreadCache.counts[1] = 5

	svc := NewNotificationService(repo, unreadCache, nil)

	count, err := svc.UnreadCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}

func TestNotificationService_UnreadCount_MissFallsBackAndWarms(t *testing.T) {
	repo := &mockNotificationRepository{
		unreadCountFn: func(ctx context.Context, userID int64) (int, error) {
			return 3, nil
		},
	}
	unreadCache := newFakeUnreadCache()

	svc := NewNotificationService(repo, unreadCache, nil)

	count, err := svc.UnreadCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if unreadCache.setCalls != 1 {
		t.Errorf("cache Set called %d times, want 1", unreadCache.setCalls)
	}
	if unreadCache.counts[1] != 3 {
		t.Errorf("cached count = %d, want 3", unreadCache.counts[1])
	}
}

func TestNotificationService_UnreadCount_NoCacheConfigured(t *testing.T) {
	repo := &mockNotificationRepository{
		unreadCountFn: func(ctx context.Context, userID int64) (int, error) {
			return 2, nil
		},
	}
	svc := NewNotificationService(repo, nil, nil)

	count, err := svc.UnreadCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestNotificationService_MarkAllRead_PublishesReadEvent(t *testing.T) {
	repo := &mockNotificationRepository{}
	pub := &fakePublisher{}
	svc := NewNotificationService(repo, nil, pub)

	if err := svc.MarkAllRead(context.Background(), 9); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if repo.markAllReadCalls != 1 {
		t.Errorf("MarkAllRead called %d times, want 1", repo.markAllReadCalls)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	if pub.events[0].Type != queue.EventNotificationsRead {
		t.Errorf("event type = %q, want %q", pub.events[0].Type, queue.EventNotificationsRead)
	}
	if pub.events[0].RecipientID != 9 {
		t.Errorf("recipient = %d, want 9", pub.events[0].RecipientID)
	}
}
