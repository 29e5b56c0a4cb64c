package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/im-delivery/internal/model"
)

type FanRepository interface {
	Create(ctx context.Context, userID, fanID string) error
	Delete(ctx context.Context, userID, fanID string) error
	ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error)
	ListFanIDs(ctx context.Context, userID string) ([]string, error)
}

type fanRepository struct{ db *gorm.DB }

func NewFanRepository(db *gorm.DB) FanRepository { return &fanRepository{db: db} }

func (r *fanRepository) Create(ctx context.Context, userID, fanID string) error {
	f := &model.Fan{ID: uuid.New().String(), UserID: userID, FanID: fanID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *fanRepository) Delete(ctx context.Context, userID, fanID string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND fan_id = ?", userID, fanID).Delete(&model.Fan{}).Error
}

func (r *fanRepository) ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error) {
	var res []*model.Fan
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

// ListFanIDs 全量粉丝 id（按关注时间倒序），用于构建缓存索引
func (r *fanRepository) ListFanIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Fan{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("fan_id", &ids).Error
	return ids, err
}
