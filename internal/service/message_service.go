package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/internal/cache"
	"github.com/d60-Lab/im-delivery/internal/conversation"
	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/message"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/im-delivery/internal/service")

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	shareWorkers        = 8
)

// SendResult Existed=true 对应 REST 200（幂等重放）
type SendResult struct {
	Message *message.Wire `json:"message"`
	Existed bool          `json:"existed"`
}

// Contact 联系人列表项
type Contact struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Username      string     `json:"username"`
	Avatar        string     `json:"avatar"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	Online        bool       `json:"online"`
}

type MessageService interface {
	Send(ctx context.Context, senderID string, in *message.Incoming) (*SendResult, error)
	History(ctx context.Context, userID, otherID string, before time.Time, limit int) ([]*message.Wire, error)
	Contacts(ctx context.Context, userID string) ([]*Contact, error)
	// ShareToFollowers 返回成功发送的粉丝数，单个失败跳过
	ShareToFollowers(ctx context.Context, senderID string, in *message.Incoming) (int, error)
}

type messageService struct {
	store     *MessageStore
	messages  repository.MessageRepository
	follows   repository.FollowRepository
	directory *cache.Directory
	registry  presence.Registry
	bus       *delivery.Bus
	notifier  NotificationService
}

func NewMessageService(
	store *MessageStore,
	messages repository.MessageRepository,
	follows repository.FollowRepository,
	directory *cache.Directory,
	registry presence.Registry,
	bus *delivery.Bus,
	notifier NotificationService,
) MessageService {
	return &messageService{
		store:     store,
		messages:  messages,
		follows:   follows,
		directory: directory,
		registry:  registry,
		bus:       bus,
		notifier:  notifier,
	}
}

func (s *messageService) Send(ctx context.Context, senderID string, in *message.Incoming) (*SendResult, error) {
	ctx, span := tracer.Start(ctx, "MessageService.Send")
	defer span.End()

	req, err := message.Normalize(in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// 校验通过后不再受调用方取消影响，已落库的消息一定走完推送和通知
	ctx = context.WithoutCancel(ctx)
	span.SetAttributes(
		attribute.String("message.type", string(req.Type())),
		attribute.Bool("message.has_client_id", req.ClientID != ""),
	)

	res, err := s.store.Persist(ctx, senderID, strings.TrimSpace(in.ReceiverID), req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	wire := message.ToWire(res.Message)
	span.SetAttributes(attribute.Bool("message.existed", res.Existed))

	// 重放不再推送，否则同一次发送会收到两次事件
	if res.Existed {
		return &SendResult{Message: wire, Existed: true}, nil
	}

	// 先落库后推送
	s.bus.PushEach([]string{res.Message.SenderID, res.Message.ReceiverID}, delivery.EventNewMessage, wire)
	s.notifier.Notify(ctx, NotifyInput{
		RecipientID: res.Message.ReceiverID,
		SenderID:    res.Message.SenderID,
		Type:        model.NotificationMessage,
		Text:        wire.SenderName + " sent you a message",
		Entity:      &model.EntityRef{ID: res.Message.ID, Model: "Message"},
		Metadata: map[string]interface{}{
			"preview":        message.Preview(res.Message),
			"link":           "/messages/" + res.Message.SenderID,
			"conversationId": res.Message.ConversationID,
		},
	})
	return &SendResult{Message: wire, Existed: false}, nil
}

func (s *messageService) History(ctx context.Context, userID, otherID string, before time.Time, limit int) ([]*message.Wire, error) {
	if !conversation.ValidID(userID) || !conversation.ValidID(otherID) {
		return nil, apperr.ErrInvalidUserID
	}
	if userID == otherID {
		return nil, apperr.ErrCannotMessageSelf
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	msgs, err := s.messages.ListConversation(ctx, conversation.ID(userID, otherID), before, limit)
	if err != nil {
		return nil, apperr.Internal("load history", err)
	}
	return message.ToWireList(msgs), nil
}

func (s *messageService) Contacts(ctx context.Context, userID string) ([]*Contact, error) {
	latest, err := s.messages.LatestPerConversation(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load conversations", err)
	}
	following, err := s.follows.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load followings", err)
	}

	lastByPartner := make(map[string]*model.Message, len(latest))
	ids := make([]string, 0, len(latest)+len(following))
	for _, m := range latest {
		other, ok := conversation.Other(m.ConversationID, userID)
		if !ok {
			continue
		}
		lastByPartner[other] = m
		ids = append(ids, other)
	}
	for _, id := range following {
		if _, ok := lastByPartner[id]; !ok && id != userID {
			ids = append(ids, id)
		}
	}

	profiles, err := s.directory.Users(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load profiles", err)
	}

	contacts := make([]*Contact, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		u, ok := profiles[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c := &Contact{
			ID:       u.ID,
			Name:     u.DisplayName(),
			Username: u.Username,
			Avatar:   u.Avatar,
			Online:   s.registry.Online(u.ID),
		}
		if m, ok := lastByPartner[id]; ok {
			at := m.CreatedAt
			c.LastMessage = message.Preview(m)
			c.LastMessageAt = &at
		}
		contacts = append(contacts, c)
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := contacts[i], contacts[j]
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt != nil:
			if !a.LastMessageAt.Equal(*b.LastMessageAt) {
				return a.LastMessageAt.After(*b.LastMessageAt)
			}
		case a.LastMessageAt != nil:
			return true
		case b.LastMessageAt != nil:
			return false
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return contacts, nil
}

func (s *messageService) ShareToFollowers(ctx context.Context, senderID string, in *message.Incoming) (int, error) {
	// 调用方断开时已开始的分发照常完成
	ctx = context.WithoutCancel(ctx)
	// 先校验一次，载荷非法时整体失败
	if _, err := message.Normalize(in); err != nil {
		return 0, err
	}
	followers, err := s.directory.FollowerIDs(ctx, senderID)
	if err != nil {
		return 0, apperr.Internal("load followers", err)
	}

	jobs := make(chan string)
	var sent atomic.Int64
	var wg sync.WaitGroup
	workers := shareWorkers
	if len(followers) < workers {
		workers = len(followers)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fid := range jobs {
				payload := *in
				payload.ReceiverID = fid
				if _, err := s.Send(ctx, senderID, &payload); err != nil {
					logger.Warn("share to follower failed",
						zap.String("sender", senderID),
						zap.String("follower", fid),
						zap.Error(err),
					)
					continue
				}
				sent.Add(1)
			}
		}()
	}
	for _, fid := range followers {
		jobs <- fid
	}
	close(jobs)
	wg.Wait()
	return int(sent.Load()), nil
}
