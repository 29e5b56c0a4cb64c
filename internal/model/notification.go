package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMessage NotificationType = "message"
)

// Valid 是否为支持的通知类型
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow, NotificationMessage:
		return true
	}
	return false
}

// EntityRef 通知指向的业务对象
type EntityRef struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

// Notification 通知，只允许 mark read 修改
type Notification struct {
	ID          string            `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string            `json:"recipientId" gorm:"type:varchar(64);not null;index:idx_notification_recipient_read"`
	SenderID    string            `json:"senderId" gorm:"type:varchar(64);not null"`
	Type        NotificationType  `json:"type" gorm:"type:varchar(16);not null"`
	Text        string            `json:"text" gorm:"type:text"`
	Entity      *EntityRef        `json:"entity,omitempty" gorm:"type:text;serializer:json"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	Read        bool              `json:"read" gorm:"column:is_read;not null;default:false;index:idx_notification_recipient_read"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
