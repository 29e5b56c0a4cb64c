package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/im-delivery/internal/model"
)

type FollowRepository interface {
	// Create 返回 created=false 表示已经关注过
	Create(ctx context.Context, followerID, followeeID string) (bool, error)
	Delete(ctx context.Context, followerID, followeeID string) error
	ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}
	// 幂等：重复关注不报错
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", followerID).Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Pluck("followee_id", &ids).Error
	return ids, err
}
