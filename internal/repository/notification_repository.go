package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/im-delivery/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	List(ctx context.Context, recipientID string, offset, limit int) ([]*model.Notification, int64, error)
	// MarkRead 不属于该用户时返回 ErrNotFound；已读再标记不报错
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&cnt).Error
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return cnt, nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, offset, limit int) ([]*model.Notification, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	var res []*model.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return res, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Count(&cnt).Error; err != nil {
		return fmt.Errorf("find notification: %w", err)
	}
	if cnt == 0 {
		return ErrNotFound
	}
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
