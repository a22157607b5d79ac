package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"redesocial/internal/model"
	"redesocial/internal/queue"
	"redesocial/internal/repository"
)

// MessageService owns the per-pair direct message history and its
// incremental retrieval cursor. Messages are immutable; retrieval never
// consumes them, so polling is restartable from any since id.
type MessageService struct {
	messageRepo    repository.MessageRepository
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	notifRepo      repository.NotificationRepository
	db             *sqlx.DB
	publisher      queue.Publisher // nil when Redis is not configured
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *MessageService {
	return &MessageService{
		messageRepo:    messageRepo,
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		notifRepo:      notifRepo,
		db:             db,
		publisher:      publisher,
	}
}

// Send appends a message and queues a dm notification for the receiver in
// one transaction. Only accepted friends (or the user themself) may message.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.ErrEmptyMessage
	}

	exists, err := s.userRepo.Exists(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check receiver: %w", err)
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	friends, err := s.areFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, model.ErrNotFriends
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	msg, err := s.messageRepo.Create(ctx, tx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}

	// A self-DM needs no notification.
	if senderID != receiverID {
		notif := &model.Notification{
			UserID:  receiverID,
			Type:    model.NotificationTypeDM,
			ActorID: &senderID,
			RefID:   &msg.ID,
			Text:    model.NotificationText(model.NotificationTypeDM, sender.Username),
		}
		if err := s.notifRepo.Create(ctx, tx, notif); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if senderID != receiverID && s.publisher != nil {
		event := queue.NewNotificationCreatedEvent(receiverID, senderID, model.NotificationTypeDM, msg.ID)
		if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
			log.Printf("[MessageService] Failed to publish dm event: message=%d err=%v", msg.ID, err)
		}
	}

	return msg, nil
}

// MessagesSince returns the messages between the caller and partner with
// id strictly greater than sinceID, ascending. Clients poll with the
// highest id they have seen; ids never skip backward or repeat.
func (s *MessageService) MessagesSince(ctx context.Context, meID, partnerID, sinceID int64) ([]model.Message, error) {
	exists, err := s.userRepo.Exists(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("check partner: %w", err)
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	friends, err := s.areFriends(ctx, meID, partnerID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, model.ErrNotFriends
	}

	messages, err := s.messageRepo.ListBetweenSince(ctx, meID, partnerID, sinceID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return messages, nil
}

// areFriends applies the self-identity rule before hitting the edge table.
func (s *MessageService) areFriends(ctx context.Context, a, b int64) (bool, error) {
	if a == b {
		return true, nil
	}
	return s.friendshipRepo.AreFriends(ctx, a, b)
}
