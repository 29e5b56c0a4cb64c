// Package message normalizes inbound message payloads into a tagged request and converts
// stored messages into the outbound wire shape.
package message

import (
	"encoding/json"

	"github.com/d60-Lab/im-delivery/internal/model"
)

// Incoming 客户端原始请求体（REST 与 socket 共用）
type Incoming struct {
	ReceiverID  string            `json:"receiverId"`
	Text        string            `json:"text"`
	Type        string            `json:"type"`
	Metadata    *IncomingCard     `json:"metadata"`
	Attachments []json.RawMessage `json:"attachments"`
	ClientID    string            `json:"clientId"`
}

// IncomingCard 内容卡片引用
type IncomingCard struct {
	ItemType    string `json:"itemType"`
	ItemID      string `json:"itemId"`
	PreviewType string `json:"previewType"`
}

// Body 按消息类型区分的载荷，只有本包内的类型实现
type Body interface {
	Kind() model.MessageType
	sealed()
}

// TextBody 纯文本（可带附件）
type TextBody struct{}

// VoiceBody 语音，Audio 为第一个 audio 附件
type VoiceBody struct {
	Audio model.Attachment
}

// ContentCardBody 待解析的目录引用
type ContentCardBody struct {
	ItemType    string
	ItemID      string
	PreviewType string
}

func (TextBody) Kind() model.MessageType        { return model.MessageTypeText }
func (VoiceBody) Kind() model.MessageType       { return model.MessageTypeVoice }
func (ContentCardBody) Kind() model.MessageType { return model.MessageTypeContentCard }

func (TextBody) sealed()        {}
func (VoiceBody) sealed()       {}
func (ContentCardBody) sealed() {}

// Request 规范化后的发送请求
type Request struct {
	Text        string
	ClientID    string
	Attachments []model.Attachment
	Body        Body
}

func (r *Request) Type() model.MessageType { return r.Body.Kind() }
