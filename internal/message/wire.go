package message

import (
	"time"

	"github.com/d60-Lab/im-delivery/internal/model"
)

const StatusSent = "sent"

// Wire 对外（REST 与 socket）统一的消息结构
type Wire struct {
	ID             string                     `json:"_id"`
	ConversationID string                     `json:"conversationId"`
	SenderID       string                     `json:"senderId"`
	SenderName     string                     `json:"senderName"`
	SenderAvatar   string                     `json:"senderAvatar,omitempty"`
	ReceiverID     string                     `json:"receiverId"`
	Text           string                     `json:"text"`
	Type           model.MessageType          `json:"type"`
	Metadata       *model.ContentCardMetadata `json:"metadata,omitempty"`
	Attachments    []model.Attachment         `json:"attachments"`
	ClientID       string                     `json:"clientId,omitempty"`
	Status         string                     `json:"status"`
	Time           time.Time                  `json:"time"`
	CreatedAt      time.Time                  `json:"createdAt"`
}

// ToWire 存储文档 -> 对外结构
func ToWire(m *model.Message) *Wire {
	w := &Wire{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		ReceiverID:     m.ReceiverID,
		Text:           m.Text,
		Type:           m.Type,
		Attachments:    m.Attachments,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		Time:           m.CreatedAt,
	}
	if w.Type == "" {
		w.Type = model.MessageTypeText
	}
	if m.Sender != nil {
		if w.SenderName == "" {
			w.SenderName = m.Sender.DisplayName()
		}
		w.SenderAvatar = m.Sender.Avatar
	}
	if w.Status == "" {
		w.Status = StatusSent
	}
	if w.Type == model.MessageTypeContentCard {
		w.Metadata = m.Metadata
	}
	if w.Attachments == nil {
		w.Attachments = []model.Attachment{}
	}
	if m.ClientID != nil {
		w.ClientID = *m.ClientID
	}
	if m.Time != nil && !m.Time.IsZero() {
		w.Time = *m.Time
	}
	return w
}

// ToWireList 保持输入顺序
func ToWireList(ms []*model.Message) []*Wire {
	out := make([]*Wire, len(ms))
	for i, m := range ms {
		out[i] = ToWire(m)
	}
	return out
}

// Preview 通知里使用的简短预览
func Preview(m *model.Message) string {
	switch m.Type {
	case model.MessageTypeContentCard:
		if m.Metadata != nil && m.Metadata.Title != "" {
			return "Shared: " + m.Metadata.Title
		}
		return "Shared an item"
	case model.MessageTypeVoice:
		return "Voice message"
	}
	if m.Text != "" {
		r := []rune(m.Text)
		if len(r) > 80 {
			return string(r[:80]) + "…"
		}
		return m.Text
	}
	if len(m.Attachments) > 0 {
		return "Sent an attachment"
	}
	return ""
}
