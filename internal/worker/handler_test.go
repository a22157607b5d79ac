package worker

import (
	"context"
	"testing"

	"redesocial/internal/queue"
)

type fakeUnreadCache struct {
	counts map[int64]int64
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{counts: make(map[int64]int64)}
}

func (c *fakeUnreadCache) Get(ctx context.Context, userID int64) (int64, bool, error) {
	count, ok := c.counts[userID]
	return count, ok, nil
}

func (c *fakeUnreadCache) Set(ctx context.Context, userID, count int64) error {
	c.counts[userID] = count
	return nil
}

func (c *fakeUnreadCache) Increment(ctx context.Context, userID int64) error {
	// Mirrors the Redis cache: a missing key stays missing so the next
	// read repopulates from the store.
	if _, ok := c.counts[userID]; ok {
		c.counts[userID]++
	}
	return nil
}

func (c *fakeUnreadCache) Reset(ctx context.Context, userID int64) error {
	c.counts[userID] = 0
	return nil
}

func TestHandler_CreatedIncrementsWarmCounter(t *testing.T) {
	unreadCache := newFakeUnreadCache()
	unreadCache.counts[7] = 2
	h := NewHandler(unreadCache)

	event := queue.NewNotificationCreatedEvent(7, 3, "like", 12)
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if unreadCache.counts[7] != 3 {
		t.Errorf("count = %d, want 3", unreadCache.counts[7])
	}
}

func TestHandler_CreatedLeavesColdCounterCold(t *testing.T) {
	unreadCache := newFakeUnreadCache()
	h := NewHandler(unreadCache)

	event := queue.NewNotificationCreatedEvent(7, 3, "dm", 5)
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, ok := unreadCache.counts[7]; ok {
		t.Error("a cold counter must stay cold so the store repopulates it")
	}
}

func TestHandler_ReadResetsCounter(t *testing.T) {
	unreadCache := newFakeUnreadCache()
	unreadCache.counts[7] = 9
	h := NewHandler(unreadCache)

	event := queue.NewNotificationsReadEvent(7)
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if unreadCache.counts[7] != 0 {
		t.Errorf("count = %d, want 0", unreadCache.counts[7])
	}
}

func TestHandler_UnknownEventIsAcknowledged(t *testing.T) {
	h := NewHandler(newFakeUnreadCache())

	err := h.HandleEvent(context.Background(), queue.NotificationEvent{Type: "unknown"})
	if err != nil {
		t.Errorf("unknown event should be dropped without error, got: %v", err)
	}
}
