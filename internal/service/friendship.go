package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
	"redesocial/internal/queue"
	"redesocial/internal/repository"
)

// FriendshipService owns the friend-edge state machine:
// none -> pending -> accepted, or pending -> deleted on reject.
// Edge transitions and their notification side effects commit atomically.
type FriendshipService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	notifRepo      repository.NotificationRepository
	db             *sqlx.DB
	publisher      queue.Publisher // nil when Redis is not configured
}

func NewFriendshipService(
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *FriendshipService {
	return &FriendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		notifRepo:      notifRepo,
		db:             db,
		publisher:      publisher,
	}
}

// SendRequest creates a pending edge from requester to addressee and
// queues a friend_request notification for the addressee.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, addresseeID int64) error {
	if requesterID == addresseeID {
		return model.ErrCannotBefriendSelf
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	exists, err := s.userRepo.Exists(ctx, addresseeID)
	if err != nil {
		return fmt.Errorf("check addressee: %w", err)
	}
	if !exists {
		return model.ErrUserNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.friendshipRepo.Create(ctx, tx, requesterID, addresseeID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrFriendshipExists
	}

	notif := &model.Notification{
		UserID:  addresseeID,
		Type:    model.NotificationTypeFriendRequest,
		ActorID: &requesterID,
		Text:    model.NotificationText(model.NotificationTypeFriendRequest, requester.Username),
	}
	if err := s.notifRepo.Create(ctx, tx, notif); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.publishCreated(ctx, addresseeID, requesterID, model.NotificationTypeFriendRequest, 0)
	return nil
}

// AcceptRequest flips the pending (requester -> responder) edge to
// accepted, purges the originating friend_request notification, and
// notifies the requester.
func (s *FriendshipService) AcceptRequest(ctx context.Context, responderID, requesterID int64) error {
	responder, err := s.userRepo.GetByID(ctx, responderID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	accepted, err := s.friendshipRepo.Accept(ctx, tx, requesterID, responderID)
	if err != nil {
		return err
	}
	if !accepted {
		return model.ErrFriendRequestNotFound
	}

	if err := s.notifRepo.DeleteFriendRequest(ctx, tx, responderID, requesterID); err != nil {
		return err
	}

	notif := &model.Notification{
		UserID:  requesterID,
		Type:    model.NotificationTypeFriendAccepted,
		ActorID: &responderID,
		Text:    model.NotificationText(model.NotificationTypeFriendAccepted, responder.Username),
	}
	if err := s.notifRepo.Create(ctx, tx, notif); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.publishCreated(ctx, requesterID, responderID, model.NotificationTypeFriendAccepted, 0)
	return nil
}

// RejectRequest deletes the pending edge outright. No tombstone is kept,
// so the pair may exchange a fresh request later.
func (s *FriendshipService) RejectRequest(ctx context.Context, responderID, requesterID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := s.friendshipRepo.DeletePending(ctx, tx, requesterID, responderID)
	if err != nil {
		return err
	}
	if !deleted {
		return model.ErrFriendRequestNotFound
	}

	if err := s.notifRepo.DeleteFriendRequest(ctx, tx, responderID, requesterID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AreFriends reports whether two users are connected. A user is trivially
// friends with themself; no edge is stored for that identity.
func (s *FriendshipService) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	if a == b {
		return true, nil
	}
	return s.friendshipRepo.AreFriends(ctx, a, b)
}

func (s *FriendshipService) FriendsOf(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	friends, err := s.friendshipRepo.Friends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []model.UserSummary{}
	}
	return friends, nil
}

func (s *FriendshipService) PendingRequestsFor(ctx context.Context, userID int64) ([]model.PendingRequest, error) {
	requests, err := s.friendshipRepo.PendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []model.PendingRequest{}
	}
	return requests, nil
}

func (s *FriendshipService) publishCreated(ctx context.Context, recipientID, actorID int64, notifType string, refID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewNotificationCreatedEvent(recipientID, actorID, notifType, refID)
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
		log.Printf("[FriendshipService] Failed to publish %s event: recipient=%d err=%v",
			notifType, recipientID, err)
	}
}
