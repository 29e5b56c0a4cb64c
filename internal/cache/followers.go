package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// Directory caches follower indexes and user profiles in Redis.
// A nil redis client turns every call into a direct repository read.
type Directory struct {
	rdb   *redis.Client
	fans  repository.FanRepository
	users repository.UserRepository
	ttl   time.Duration
}

func NewDirectory(rdb *redis.Client, fans repository.FanRepository, users repository.UserRepository, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Directory{rdb: rdb, fans: fans, users: users, ttl: ttl}
}

func followerKey(userID string) string { return fmt.Sprintf("followers:index:%s", userID) }

func userKey(userID string) string { return fmt.Sprintf("user:%s", userID) }

// FollowerIDs returns every follower id of userID, newest first.
func (d *Directory) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	if d.rdb == nil {
		return d.fans.ListFanIDs(ctx, userID)
	}

	key := followerKey(userID)
	if ids, err := d.rdb.LRange(ctx, key, 0, -1).Result(); err == nil && len(ids) > 0 {
		return ids, nil
	} else if err != nil && err != redis.Nil {
		logger.Warn("follower index read failed", zap.String("user", userID), zap.Error(err))
	}

	ids, err := d.fans.ListFanIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		pipe := d.rdb.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, d.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("follower index write failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return ids, nil
}

// InvalidateFollowers drops the cached follower index after a follow graph change.
func (d *Directory) InvalidateFollowers(ctx context.Context, userID string) {
	if d.rdb == nil {
		return
	}
	if err := d.rdb.Del(ctx, followerKey(userID)).Err(); err != nil {
		logger.Warn("follower index invalidate failed", zap.String("user", userID), zap.Error(err))
	}
}

// Users loads profiles for ids, serving hits from cache. Unknown ids are omitted.
func (d *Directory) Users(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if d.rdb == nil {
		users, err := d.users.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			out[u.ID] = u
		}
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	if vals, err := d.rdb.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var u model.User
			if uErr := json.Unmarshal([]byte(str), &u); uErr == nil {
				out[ids[i]] = &u
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	users, err := d.users.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	pipe := d.rdb.Pipeline()
	for _, u := range users {
		out[u.ID] = u
		if payload, err := json.Marshal(u); err == nil {
			pipe.Set(ctx, userKey(u.ID), payload, d.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("user cache write failed", zap.Error(err))
	}
	return out, nil
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}
