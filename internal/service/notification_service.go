package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// NotifyInput 一次通知事件
type NotifyInput struct {
	RecipientID string
	SenderID    string
	Type        model.NotificationType
	Text        string
	Entity      *model.EntityRef
	Metadata    map[string]interface{}
}

// NotificationEvent notifications:new 的载荷
type NotificationEvent struct {
	Notification *model.Notification `json:"notification"`
	UnreadCount  int64               `json:"unreadCount"`
}

// UnreadEvent notifications:unread 的载荷
type UnreadEvent struct {
	UnreadCount int64 `json:"unreadCount"`
}

// NotificationPage 分页结果
type NotificationPage struct {
	Notifications []*model.Notification `json:"notifications"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unreadCount"`
}

type NotificationService interface {
	// Notify 尽力而为：自己通知自己或任何失败都返回 nil，错误只记日志
	Notify(ctx context.Context, in NotifyInput) *model.Notification
	List(ctx context.Context, userID string, page, limit int) (*NotificationPage, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (updated int64, unread int64, err error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	pusher delivery.Pusher
	now    func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, pusher delivery.Pusher) NotificationService {
	return &notificationService{repo: repo, pusher: pusher, now: time.Now}
}

func (s *notificationService) Notify(ctx context.Context, in NotifyInput) (created *model.Notification) {
	if in.RecipientID == "" || in.RecipientID == in.SenderID {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notify panic", zap.String("recipient", in.RecipientID), zap.Any("panic", r))
			created = nil
		}
	}()

	n := &model.Notification{
		ID:          uuid.New().String(),
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
		Text:        in.Text,
		Entity:      in.Entity,
		Metadata:    in.Metadata,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("notification write failed",
			zap.String("recipient", in.RecipientID),
			zap.String("type", string(in.Type)),
			zap.Error(err),
		)
		return nil
	}

	// 每次重新计数，不维护自增计数器
	unread, err := s.repo.CountUnread(ctx, n.RecipientID)
	s.pusher.Push(n.RecipientID, delivery.EventNotificationLegacy, n)
	if err != nil {
		logger.Warn("unread count failed", zap.String("recipient", n.RecipientID), zap.Error(err))
		return n
	}
	s.pusher.Push(n.RecipientID, delivery.EventNotificationNew, NotificationEvent{Notification: n, UnreadCount: unread})
	return n
}

func (s *notificationService) List(ctx context.Context, userID string, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	items, total, err := s.repo.List(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("list notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("count unread", err)
	}
	if items == nil {
		items = []*model.Notification{}
	}
	return &NotificationPage{Notifications: items, Page: page, Limit: limit, Total: total, UnreadCount: unread}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("count unread", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) (int64, error) {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.ErrNotificationNotFound
		}
		return 0, apperr.Internal("mark read", err)
	}
	return s.syncUnread(ctx, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, 0, apperr.Internal("mark all read", err)
	}
	unread, err := s.syncUnread(ctx, userID)
	return updated, unread, err
}

// syncUnread 重新计数并推给该用户的所有设备
func (s *notificationService) syncUnread(ctx context.Context, userID string) (int64, error) {
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread for %s", userID), err)
	}
	s.pusher.Push(userID, delivery.EventUnreadCount, UnreadEvent{UnreadCount: unread})
	return unread, nil
}
