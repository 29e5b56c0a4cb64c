package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/internal/catalog"
	"github.com/d60-Lab/im-delivery/internal/conversation"
	"github.com/d60-Lab/im-delivery/internal/message"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// PersistResult Existed=true 表示命中 clientId，没有写入
type PersistResult struct {
	Message *model.Message
	Existed bool
}

// MessageStore 按 (conversationId, senderId, clientId) 幂等落库
type MessageStore struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	catalog  catalog.Resolver
	now      func() time.Time
}

func NewMessageStore(messages repository.MessageRepository, users repository.UserRepository, resolver catalog.Resolver) *MessageStore {
	return &MessageStore{messages: messages, users: users, catalog: resolver, now: time.Now}
}

func (s *MessageStore) Persist(ctx context.Context, senderID, receiverID string, req *message.Request) (*PersistResult, error) {
	if !conversation.ValidID(senderID) || !conversation.ValidID(receiverID) {
		return nil, apperr.ErrInvalidUserID
	}
	if senderID == receiverID {
		return nil, apperr.ErrCannotMessageSelf
	}
	convID := conversation.ID(senderID, receiverID)

	if req.ClientID != "" {
		existing, err := s.messages.FindByClientID(ctx, convID, senderID, req.ClientID)
		if err == nil {
			return &PersistResult{Message: existing, Existed: true}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Internal("idempotency lookup", err)
		}
	}

	sender, err := s.lookupUser(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupUser(ctx, receiverID); err != nil {
		return nil, err
	}

	m := &model.Message{
		ID:             uuid.New().String(),
		ConversationID: convID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		SenderName:     sender.DisplayName(),
		Text:           req.Text,
		Type:           req.Type(),
		Attachments:    req.Attachments,
		Status:         message.StatusSent,
		CreatedAt:      s.now().UTC(),
	}
	if req.ClientID != "" {
		clientID := req.ClientID
		m.ClientID = &clientID
	}

	if card, ok := req.Body.(message.ContentCardBody); ok {
		item, err := s.catalog.Resolve(ctx, card.ItemType, card.ItemID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, apperr.ErrContentItemNotFound
		}
		if err != nil {
			return nil, apperr.Internal("resolve content card", err)
		}
		// 价格、标题在发送时快照
		m.Metadata = &model.ContentCardMetadata{
			ItemType:      item.ItemType,
			ItemID:        item.ItemID,
			PreviewType:   card.PreviewType,
			Title:         item.Title,
			Description:   item.Description,
			Price:         item.Price,
			CoverImageURL: item.CoverImageURL,
			CreatorID:     item.CreatorID,
		}
	}

	if err := s.messages.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && m.ClientID != nil {
			// 并发重试输给了另一个写入者，返回胜出的那一行
			winner, ferr := s.messages.FindByClientID(ctx, convID, senderID, *m.ClientID)
			if ferr == nil {
				logger.Debug("idempotent insert conflict resolved",
					zap.String("conversation", convID),
					zap.String("client_id", *m.ClientID),
				)
				return &PersistResult{Message: winner, Existed: true}, nil
			}
			return nil, apperr.Internal("re-read after conflict", ferr)
		}
		return nil, apperr.Internal("insert message", err)
	}
	m.Sender = sender
	return &PersistResult{Message: m, Existed: false}, nil
}

func (s *MessageStore) lookupUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, apperr.Internal("lookup user", err)
	}
	return u, nil
}
