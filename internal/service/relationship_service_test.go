package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
)

func TestFollowReplicatesAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	replicator := NewFanReplicator(env.fans, env.directory, 16)
	stop := replicator.Start(2)
	defer func() { _ = stop(context.Background()) }()

	svc := NewRelationshipService(env.follows, env.fans, env.users, replicator, env.notifications)
	bob := env.connect("b1", "b-web")

	require.NoError(t, svc.Follow(ctx, "a1", "b1"))
	// 重复关注不再通知
	require.NoError(t, svc.Follow(ctx, "a1", "b1"))

	require.Eventually(t, func() bool {
		ids, err := env.directory.FollowerIDs(ctx, "b1")
		return err == nil && len(ids) == 1 && ids[0] == "a1"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, bob.count(delivery.EventNotificationNew))
	var n model.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", "b1").Take(&n).Error)
	assert.Equal(t, model.NotificationFollow, n.Type)
	assert.Equal(t, "Alice started following you", n.Text)

	following, err := svc.ListFollowing(ctx, "a1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, following)

	require.NoError(t, svc.Unfollow(ctx, "a1", "b1"))
	require.Eventually(t, func() bool {
		fans, err := svc.ListFans(ctx, "b1", 1, 10)
		return err == nil && len(fans) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFollowRejectsSelfAndBadIDs(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRelationshipService(env.follows, env.fans, env.users, nil, env.notifications)

	assert.ErrorIs(t, svc.Follow(context.Background(), "a1", "a1"), apperr.ErrFollowSelf)
	assert.ErrorIs(t, svc.Follow(context.Background(), "a1", "b 1"), apperr.ErrInvalidUserID)
}
