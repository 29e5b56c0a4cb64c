package model

import "time"

// MessageType 消息类型
type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeContentCard MessageType = "contentCard"
	MessageTypeVoice       MessageType = "voice"
)

// 内容卡片引用的目录类型
const (
	ItemTypeTrack = "track"
	ItemTypeBook  = "book"

	PreviewTypePlay = "play"
	PreviewTypeRead = "read"
)

// Attachment 消息附件
type Attachment struct {
	URL             string  `json:"url"`
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Size            int64   `json:"size"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
}

// ContentCardMetadata 发送时从目录快照的卡片信息，之后不再回读
type ContentCardMetadata struct {
	ItemType      string  `json:"itemType"`
	ItemID        string  `json:"itemId"`
	PreviewType   string  `json:"previewType"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	CoverImageURL string  `json:"coverImageUrl"`
	CreatorID     string  `json:"creatorId,omitempty"`
}

// Message 私信。创建后不可变。
// ux_message_client = (conversation_id, sender_id, client_id)，client_id 为 NULL 时不参与唯一约束
type Message struct {
	ID             string               `gorm:"primaryKey;type:varchar(36)"`
	ConversationID string               `gorm:"type:varchar(160);not null;index:idx_message_conv_created;uniqueIndex:ux_message_client"`
	SenderID       string               `gorm:"type:varchar(64);not null;uniqueIndex:ux_message_client"`
	ReceiverID     string               `gorm:"type:varchar(64);not null;index"`
	SenderName     string               `gorm:"type:varchar(128)"`
	Sender         *User                `gorm:"foreignKey:SenderID;references:ID"`
	Text           string               `gorm:"type:text"`
	Type           MessageType          `gorm:"type:varchar(16);not null;default:text"`
	Metadata       *ContentCardMetadata `gorm:"type:text;serializer:json"`
	Attachments    []Attachment         `gorm:"type:text;serializer:json"`
	ClientID       *string              `gorm:"type:varchar(128);uniqueIndex:ux_message_client"`
	Status         string               `gorm:"type:varchar(16)"`
	Time           *time.Time
	CreatedAt      time.Time `gorm:"index:idx_message_conv_created"`
}

func (Message) TableName() string { return "messages" }
