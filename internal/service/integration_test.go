package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"redesocial/internal/database/migrations"
	"redesocial/internal/model"
	"redesocial/internal/repository"
)

// testEnv wires real repositories and services over an in-memory SQLite
// database with the real schema. No Redis: publisher and cache are nil.
type testEnv struct {
	db *sqlx.DB

	users         *UserService
	friendships   *FriendshipService
	feed          *FeedService
	messages      *MessageService
	notifications *NotificationService

	notifRepo repository.NotificationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := migrations.MigrateUp(db.DB); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	return &testEnv{
		db:            db,
		users:         NewUserService(userRepo),
		friendships:   NewFriendshipService(friendshipRepo, userRepo, notifRepo, db, nil),
		feed:          NewFeedService(postRepo, userRepo, notifRepo, db, nil),
		messages:      NewMessageService(messageRepo, friendshipRepo, userRepo, notifRepo, db, nil),
		notifications: NewNotificationService(notifRepo, nil, nil),
		notifRepo:     notifRepo,
	}
}

func (env *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := env.users.Register(context.Background(), &model.RegisterRequest{
		Username: username,
		Password: "password123",
		Email:    fmt.Sprintf("%s@example.com", username),
	})
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return user
}

func (env *testEnv) befriend(t *testing.T, requester, addressee *model.User) {
	t.Helper()
	ctx := context.Background()
	if err := env.friendships.SendRequest(ctx, requester.ID, addressee.ID); err != nil {
		t.Fatalf("send request %s -> %s: %v", requester.Username, addressee.Username, err)
	}
	if err := env.friendships.AcceptRequest(ctx, addressee.ID, requester.ID); err != nil {
		t.Fatalf("accept request %s -> %s: %v", requester.Username, addressee.Username, err)
	}
}

func TestFriendship_RequestAcceptLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")

	if err := env.friendships.SendRequest(ctx, bruno.ID, ana.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}

	// Ana sees the pending request and got a notification
	pending, err := env.friendships.PendingRequestsFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].RequesterID != bruno.ID {
		t.Fatalf("pending = %+v, want one request from bruno", pending)
	}

	feed, err := env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(feed.Items) != 1 || feed.Items[0].Type != model.NotificationTypeFriendRequest {
		t.Fatalf("notifications = %+v, want one friend_request", feed.Items)
	}
	if feed.Items[0].Text != "bruno enviou uma solicitação de amizade" {
		t.Errorf("notification text = %q", feed.Items[0].Text)
	}

	// A duplicate request is a conflict
	if err := env.friendships.SendRequest(ctx, bruno.ID, ana.ID); !errors.Is(err, model.ErrFriendshipExists) {
		t.Errorf("duplicate request: error = %v, want %v", err, model.ErrFriendshipExists)
	}

	// So is the reciprocal request while the first is pending
	if err := env.friendships.SendRequest(ctx, ana.ID, bruno.ID); !errors.Is(err, model.ErrFriendshipExists) {
		t.Errorf("reciprocal request: error = %v, want %v", err, model.ErrFriendshipExists)
	}

	if err := env.friendships.AcceptRequest(ctx, ana.ID, bruno.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Friendship is symmetric
	for _, pair := range [][2]int64{{ana.ID, bruno.ID}, {bruno.ID, ana.ID}} {
		friends, err := env.friendships.AreFriends(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("are friends: %v", err)
		}
		if !friends {
			t.Errorf("AreFriends(%d, %d) = false, want true", pair[0], pair[1])
		}
	}

	// The pending list is drained
	pending, err = env.friendships.PendingRequestsFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("pending after accept: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after accept = %+v, want empty", pending)
	}

	// Ana's friend_request notification is purged by the accept;
	// Bruno received a friend_accepted notification.
	feed, err = env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("ana notifications: %v", err)
	}
	for _, n := range feed.Items {
		if n.Type == model.NotificationTypeFriendRequest {
			t.Error("friend_request notification should be purged after accept")
		}
	}

	feed, err = env.notifications.FeedFor(ctx, bruno.ID)
	if err != nil {
		t.Fatalf("bruno notifications: %v", err)
	}
	if len(feed.Items) != 1 || feed.Items[0].Type != model.NotificationTypeFriendAccepted {
		t.Fatalf("bruno notifications = %+v, want one friend_accepted", feed.Items)
	}
	if feed.Items[0].Text != "ana aceitou sua solicitação de amizade" {
		t.Errorf("notification text = %q", feed.Items[0].Text)
	}

	// Requesting an existing friend is still a conflict
	if err := env.friendships.SendRequest(ctx, ana.ID, bruno.ID); !errors.Is(err, model.ErrFriendshipExists) {
		t.Errorf("request to friend: error = %v, want %v", err, model.ErrFriendshipExists)
	}
}

func TestFriendship_RejectAllowsReRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")

	if err := env.friendships.SendRequest(ctx, bruno.ID, ana.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}
	if err := env.friendships.RejectRequest(ctx, ana.ID, bruno.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Rejection removes the edge entirely: no friendship, no pending,
	// no lingering notification, and a fresh request goes through.
	friends, err := env.friendships.AreFriends(ctx, ana.ID, bruno.ID)
	if err != nil {
		t.Fatalf("are friends: %v", err)
	}
	if friends {
		t.Error("reject should not create a friendship")
	}

	feed, err := env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(feed.Items) != 0 {
		t.Errorf("notifications after reject = %+v, want empty", feed.Items)
	}

	if err := env.friendships.SendRequest(ctx, bruno.ID, ana.ID); err != nil {
		t.Errorf("re-request after reject: %v", err)
	}
}

func TestFriendship_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")

	if err := env.friendships.SendRequest(ctx, ana.ID, ana.ID); !errors.Is(err, model.ErrCannotBefriendSelf) {
		t.Errorf("self request: error = %v, want %v", err, model.ErrCannotBefriendSelf)
	}
	if err := env.friendships.SendRequest(ctx, ana.ID, 9999); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("unknown addressee: error = %v, want %v", err, model.ErrUserNotFound)
	}
	if err := env.friendships.AcceptRequest(ctx, ana.ID, 9999); !errors.Is(err, model.ErrFriendRequestNotFound) {
		t.Errorf("accept missing: error = %v, want %v", err, model.ErrFriendRequestNotFound)
	}
	if err := env.friendships.RejectRequest(ctx, ana.ID, 9999); !errors.Is(err, model.ErrFriendRequestNotFound) {
		t.Errorf("reject missing: error = %v, want %v", err, model.ErrFriendRequestNotFound)
	}
}

func TestFeed_VisibilityFollowsFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")

	post, err := env.feed.CreatePost(ctx, ana.ID, "primeiro post")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.AuthorName != "ana" {
		t.Errorf("author name = %q, want %q", post.AuthorName, "ana")
	}

	// Ana sees her own post; Bruno sees nothing yet
	anaFeed, err := env.feed.VisibleFeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("ana feed: %v", err)
	}
	if len(anaFeed) != 1 {
		t.Fatalf("ana feed = %d posts, want 1", len(anaFeed))
	}

	brunoFeed, err := env.feed.VisibleFeedFor(ctx, bruno.ID)
	if err != nil {
		t.Fatalf("bruno feed: %v", err)
	}
	if len(brunoFeed) != 0 {
		t.Errorf("bruno feed = %d posts, want 0 before friendship", len(brunoFeed))
	}

	env.befriend(t, bruno, ana)

	brunoFeed, err = env.feed.VisibleFeedFor(ctx, bruno.ID)
	if err != nil {
		t.Fatalf("bruno feed after friendship: %v", err)
	}
	if len(brunoFeed) != 1 || brunoFeed[0].ID != post.ID {
		t.Fatalf("bruno feed after friendship = %+v, want ana's post", brunoFeed)
	}
}

func TestFeed_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	for i := 1; i <= 3; i++ {
		if _, err := env.feed.CreatePost(ctx, ana.ID, fmt.Sprintf("post %d", i)); err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}

	posts, err := env.feed.VisibleFeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("feed = %d posts, want 3", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i-1].ID < posts[i].ID {
			t.Errorf("feed out of order: id %d before %d", posts[i-1].ID, posts[i].ID)
		}
	}
}

func TestToggleLike_AddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")
	env.befriend(t, bruno, ana)

	post, err := env.feed.CreatePost(ctx, ana.ID, "curtam")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	result, err := env.feed.ToggleLike(ctx, post.ID, bruno.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !result.Liked || result.Likes != 1 {
		t.Errorf("first toggle = {liked: %v, likes: %d}, want {true, 1}", result.Liked, result.Likes)
	}

	// Counter and like set stay consistent
	got, err := env.feed.LikeState(ctx)
	if err != nil {
		t.Fatalf("like state: %v", err)
	}
	state := got[post.ID]
	if state.Likes != 1 || len(state.LikesBy) != 1 || state.LikesBy[0] != bruno.ID {
		t.Errorf("like state = %+v, want likes=1 by bruno", state)
	}

	// Ana got exactly one like notification
	feed, err := env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	likeCount := 0
	for _, n := range feed.Items {
		if n.Type == model.NotificationTypeLike {
			likeCount++
			if n.Text != "bruno curtiu seu post" {
				t.Errorf("notification text = %q", n.Text)
			}
		}
	}
	if likeCount != 1 {
		t.Errorf("like notifications = %d, want 1", likeCount)
	}

	// Second toggle removes the like and restores the count
	result, err = env.feed.ToggleLike(ctx, post.ID, bruno.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if result.Liked || result.Likes != 0 {
		t.Errorf("second toggle = {liked: %v, likes: %d}, want {false, 0}", result.Liked, result.Likes)
	}

	got, err = env.feed.LikeState(ctx)
	if err != nil {
		t.Fatalf("like state: %v", err)
	}
	state = got[post.ID]
	if state.Likes != 0 || len(state.LikesBy) != 0 {
		t.Errorf("like state after untoggle = %+v, want empty", state)
	}
}

func TestToggleLike_SelfLikeIsSilent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	post, err := env.feed.CreatePost(ctx, ana.ID, "auto-curtida")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	result, err := env.feed.ToggleLike(ctx, post.ID, ana.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !result.Liked || result.Likes != 1 {
		t.Errorf("toggle = {liked: %v, likes: %d}, want {true, 1}", result.Liked, result.Likes)
	}

	feed, err := env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(feed.Items) != 0 {
		t.Errorf("self-like produced %d notifications, want 0", len(feed.Items))
	}
}

func TestToggleLike_UnknownPost(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "ana")

	_, err := env.feed.ToggleLike(context.Background(), 9999, ana.ID)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestEditPost_OwnershipAndTimestamps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")

	post, err := env.feed.CreatePost(ctx, ana.ID, "versão um")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := env.feed.EditPost(ctx, post.ID, bruno.ID, "alheio"); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("edit by non-owner: error = %v, want %v", err, model.ErrNotPostOwner)
	}

	if err := env.feed.EditPost(ctx, post.ID, ana.ID, "versão dois"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	edited, err := env.feed.VisibleFeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if edited[0].Content != "versão dois" {
		t.Errorf("content = %q, want %q", edited[0].Content, "versão dois")
	}
	if !edited[0].CreatedAt.Equal(post.CreatedAt) {
		t.Error("edit must not change created_at")
	}
	if edited[0].UpdatedAt == nil {
		t.Error("edit should stamp updated_at")
	}

	if err := env.feed.DeletePost(ctx, post.ID, bruno.ID); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("delete by non-owner: error = %v, want %v", err, model.ErrNotPostOwner)
	}
	if err := env.feed.DeletePost(ctx, post.ID, ana.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.feed.ToggleLike(ctx, post.ID, ana.ID); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("toggle on deleted post: error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestMessages_FriendsOnlyAndCursor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")

	// Strangers cannot message
	if _, err := env.messages.Send(ctx, ana.ID, bruno.ID, "oi?"); !errors.Is(err, model.ErrNotFriends) {
		t.Errorf("message to stranger: error = %v, want %v", err, model.ErrNotFriends)
	}

	env.befriend(t, bruno, ana)

	m1, err := env.messages.Send(ctx, ana.ID, bruno.ID, "oi bruno")
	if err != nil {
		t.Fatalf("send m1: %v", err)
	}
	m2, err := env.messages.Send(ctx, bruno.ID, ana.ID, "oi ana")
	if err != nil {
		t.Fatalf("send m2: %v", err)
	}
	m3, err := env.messages.Send(ctx, ana.ID, bruno.ID, "tudo bem?")
	if err != nil {
		t.Fatalf("send m3: %v", err)
	}

	// Full history, ascending, both directions
	all, err := env.messages.MessagesSince(ctx, bruno.ID, ana.ID, 0)
	if err != nil {
		t.Fatalf("messages since 0: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("history = %d messages, want 3", len(all))
	}
	if all[0].ID != m1.ID || all[1].ID != m2.ID || all[2].ID != m3.ID {
		t.Errorf("history order = [%d %d %d], want [%d %d %d]",
			all[0].ID, all[1].ID, all[2].ID, m1.ID, m2.ID, m3.ID)
	}

	// since_id is strict: only messages newer than the cursor come back
	newer, err := env.messages.MessagesSince(ctx, bruno.ID, ana.ID, m2.ID)
	if err != nil {
		t.Fatalf("messages since m2: %v", err)
	}
	if len(newer) != 1 || newer[0].ID != m3.ID {
		t.Fatalf("since %d = %+v, want only m3", m2.ID, newer)
	}

	// Cursor at the tip yields nothing
	tip, err := env.messages.MessagesSince(ctx, bruno.ID, ana.ID, m3.ID)
	if err != nil {
		t.Fatalf("messages since m3: %v", err)
	}
	if len(tip) != 0 {
		t.Errorf("since tip = %d messages, want 0", len(tip))
	}

	// Each received message produced a dm notification
	feed, err := env.notifications.FeedFor(ctx, bruno.ID)
	if err != nil {
		t.Fatalf("bruno notifications: %v", err)
	}
	dms := 0
	for _, n := range feed.Items {
		if n.Type == model.NotificationTypeDM {
			dms++
			if n.Text != "Nova DM de: ana" {
				t.Errorf("notification text = %q", n.Text)
			}
		}
	}
	if dms != 2 {
		t.Errorf("bruno dm notifications = %d, want 2", dms)
	}
}

func TestMessages_EmptyContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")
	env.befriend(t, bruno, ana)

	if _, err := env.messages.Send(ctx, ana.ID, bruno.ID, "   "); !errors.Is(err, model.ErrEmptyMessage) {
		t.Errorf("blank message: error = %v, want %v", err, model.ErrEmptyMessage)
	}
}

func TestNotifications_MarkAllReadKeepsRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana := env.createUser(t, "ana")
	bruno := env.createUser(t, "bruno")

	if err := env.friendships.SendRequest(ctx, bruno.ID, ana.ID); err != nil {
		t.Fatalf("send request: %v", err)
	}

	feed, err := env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if feed.Unread != 1 {
		t.Fatalf("unread = %d, want 1", feed.Unread)
	}

	if err := env.notifications.MarkAllRead(ctx, ana.ID); err != nil {
		t.Fatalf("mark all read: %v", err)
	}

	feed, err = env.notifications.FeedFor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("notifications after read: %v", err)
	}
	if feed.Unread != 0 {
		t.Errorf("unread after read = %d, want 0", feed.Unread)
	}
	if len(feed.Items) != 1 {
		t.Errorf("items after read = %d, want 1 (rows are kept)", len(feed.Items))
	}
	if !feed.Items[0].Read {
		t.Error("kept notification should be marked read")
	}
}
