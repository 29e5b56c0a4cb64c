package message

import (
	"encoding/json"
	"strings"

	"github.com/d60-Lab/im-delivery/internal/conversation"
	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
)

const maxClientIDLen = 128

// Normalize 校验并规范化入站载荷，错误均为 apperr 校验错误
func Normalize(in *Incoming) (*Request, error) {
	if in == nil {
		return nil, apperr.Validation(apperr.ReasonInvalidPayload, "payload is required")
	}

	req := &Request{
		Text:        strings.TrimSpace(in.Text),
		ClientID:    strings.TrimSpace(in.ClientID),
		Attachments: SanitizeAttachments(in.Attachments),
	}
	if len(req.ClientID) > maxClientIDLen {
		return nil, apperr.ErrInvalidClientID
	}

	switch model.MessageType(in.Type) {
	case model.MessageTypeContentCard:
		body, err := normalizeCard(in.Metadata)
		if err != nil {
			return nil, err
		}
		req.Body = body
	case model.MessageTypeVoice:
		audio, ok := firstAudio(req.Attachments)
		if !ok {
			return nil, apperr.ErrMissingAudioAttachment
		}
		req.Body = VoiceBody{Audio: audio}
	default:
		// 缺省或未知类型按文本处理
		if req.Text == "" && len(req.Attachments) == 0 {
			return nil, apperr.ErrEmptyMessage
		}
		req.Body = TextBody{}
	}
	return req, nil
}

func normalizeCard(card *IncomingCard) (ContentCardBody, error) {
	if card == nil {
		return ContentCardBody{}, apperr.InvalidContentCard("metadata is required for contentCard messages")
	}
	itemType := strings.TrimSpace(card.ItemType)
	if itemType != model.ItemTypeTrack && itemType != model.ItemTypeBook {
		return ContentCardBody{}, apperr.InvalidContentCard("metadata.itemType must be \"track\" or \"book\"")
	}
	itemID := strings.TrimSpace(card.ItemID)
	if !conversation.ValidID(itemID) {
		return ContentCardBody{}, apperr.InvalidContentCard("metadata.itemId is not a valid identifier")
	}
	previewType := strings.TrimSpace(card.PreviewType)
	if previewType != model.PreviewTypePlay && previewType != model.PreviewTypeRead {
		return ContentCardBody{}, apperr.InvalidContentCard("metadata.previewType must be \"play\" or \"read\"")
	}
	return ContentCardBody{ItemType: itemType, ItemID: itemID, PreviewType: previewType}, nil
}

func firstAudio(atts []model.Attachment) (model.Attachment, bool) {
	for _, a := range atts {
		if a.Type == "audio" {
			return a, true
		}
	}
	return model.Attachment{}, false
}

type rawAttachment struct {
	URL             interface{} `json:"url"`
	Type            interface{} `json:"type"`
	Name            interface{} `json:"name"`
	Size            interface{} `json:"size"`
	DurationSeconds interface{} `json:"durationSeconds"`
}

// SanitizeAttachments 逐条清洗附件：非对象、url 缺失或非字符串、size 非正数的条目直接丢弃，
// 不让整条消息失败。同一 url 只保留第一条。
func SanitizeAttachments(raws []json.RawMessage) []model.Attachment {
	out := make([]model.Attachment, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		var ra rawAttachment
		if err := json.Unmarshal(raw, &ra); err != nil {
			continue
		}
		url, ok := ra.URL.(string)
		url = strings.TrimSpace(url)
		if !ok || url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}

		att := model.Attachment{URL: url, Type: "file"}
		if t, ok := ra.Type.(string); ok && strings.TrimSpace(t) != "" {
			att.Type = strings.TrimSpace(t)
		}
		if n, ok := ra.Name.(string); ok {
			att.Name = n
		}
		if ra.Size != nil {
			size, ok := ra.Size.(float64)
			if !ok || size <= 0 {
				continue
			}
			att.Size = int64(size)
		}
		if d, ok := ra.DurationSeconds.(float64); ok && d > 0 {
			att.DurationSeconds = d
		}

		seen[url] = struct{}{}
		out = append(out, att)
	}
	return out
}
