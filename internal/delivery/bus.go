// Package delivery pushes realtime events to every live connection of a user.
package delivery

import (
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// 服务端 -> 客户端事件
const (
	EventNewMessage         = "newMessage"
	EventNotificationNew    = "notifications:new"
	EventNotificationLegacy = "notification"
	EventUnreadCount        = "notifications:unread"
	EventMessageSent        = "messageSent"
	EventMessageError       = "messageError"
)

// Pusher 由 Bus 实现，服务层依赖该接口
type Pusher interface {
	Push(userID, event string, payload interface{}) int
}

// Bus 在线才投递，离线静默丢弃，不重试不缓存
type Bus struct {
	registry presence.Registry
}

func NewBus(registry presence.Registry) *Bus {
	return &Bus{registry: registry}
}

// Push 返回成功写入的连接数，单个连接失败只记日志
func (b *Bus) Push(userID, event string, payload interface{}) int {
	conns := b.registry.ConnectionsFor(userID)
	delivered := 0
	for _, c := range conns {
		if err := c.Send(event, payload); err != nil {
			logger.Debug("push failed",
				zap.String("user", userID),
				zap.String("conn", c.ID()),
				zap.String("event", event),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	return delivered
}

// PushEach 对去重后的每个用户推送一次
func (b *Bus) PushEach(userIDs []string, event string, payload interface{}) int {
	seen := make(map[string]struct{}, len(userIDs))
	total := 0
	for _, uid := range userIDs {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		total += b.Push(uid, event, payload)
	}
	return total
}
