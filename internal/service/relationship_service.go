package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/internal/conversation"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	userRepo   repository.UserRepository
	replicator *FanReplicator
	notifier   NotificationService
}

func NewRelationshipService(followRepo repository.FollowRepository, fanRepo repository.FanRepository, userRepo repository.UserRepository, replicator *FanReplicator, notifier NotificationService) RelationshipService {
	return &relationshipService{followRepo: followRepo, fanRepo: fanRepo, userRepo: userRepo, replicator: replicator, notifier: notifier}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if !conversation.ValidID(fromUserID) || !conversation.ValidID(toUserID) {
		return apperr.ErrInvalidUserID
	}
	if fromUserID == toUserID {
		return apperr.ErrFollowSelf
	}
	created, err := s.followRepo.Create(ctx, fromUserID, toUserID)
	if err != nil {
		return apperr.Internal("create follow", err)
	}
	if !created {
		return nil
	}
	if s.replicator != nil {
		s.replicator.EnqueueAdd(toUserID, fromUserID)
	}
	if s.notifier != nil {
		name := fromUserID
		if u, err := s.userRepo.Get(ctx, fromUserID); err == nil {
			name = u.DisplayName()
		} else {
			logger.Debug("follower profile missing", zap.String("user", fromUserID), zap.Error(err))
		}
		s.notifier.Notify(ctx, NotifyInput{
			RecipientID: toUserID,
			SenderID:    fromUserID,
			Type:        model.NotificationFollow,
			Text:        name + " started following you",
			Entity:      &model.EntityRef{ID: fromUserID, Model: "User"},
			Metadata:    map[string]interface{}{"link": "/users/" + fromUserID},
		})
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.followRepo.Delete(ctx, fromUserID, toUserID); err != nil {
		return apperr.Internal("delete follow", err)
	}
	if s.replicator != nil {
		s.replicator.EnqueueRemove(toUserID, fromUserID)
	}
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, apperr.Internal("list following", err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FolloweeID
	}
	return res, nil
}

func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	items, err := s.fanRepo.ListFans(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, apperr.Internal("list fans", err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FanID
	}
	return res, nil
}
