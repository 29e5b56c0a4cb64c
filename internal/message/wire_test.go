package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/im-delivery/internal/model"
)

func TestToWireDefaults(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := &model.Message{
		ID:             "m1",
		ConversationID: "a1:b1",
		SenderID:       "a1",
		ReceiverID:     "b1",
		Text:           "Hello",
		Type:           model.MessageTypeText,
		Metadata:       &model.ContentCardMetadata{Title: "ignored"},
		Sender:         &model.User{ID: "a1", Username: "alice", Avatar: "https://cdn/alice.png"},
		CreatedAt:      created,
	}

	w := ToWire(m)
	assert.Equal(t, "sent", w.Status)
	assert.Equal(t, "alice", w.SenderName)
	assert.Equal(t, "https://cdn/alice.png", w.SenderAvatar)
	assert.Nil(t, w.Metadata)
	assert.Equal(t, created, w.Time)
	assert.NotNil(t, w.Attachments)
}

func TestToWirePrefersDenormalizedFields(t *testing.T) {
	created := time.Now().UTC()
	sentAt := created.Add(-time.Second)
	clientID := "c-1"
	m := &model.Message{
		ID:         "m2",
		SenderID:   "a1",
		SenderName: "Alice A.",
		Sender:     &model.User{ID: "a1", Username: "alice"},
		Type:       model.MessageTypeContentCard,
		Metadata:   &model.ContentCardMetadata{ItemType: "track", ItemID: "t1", Title: "Night Drive", Price: 2},
		ClientID:   &clientID,
		Status:     "delivered",
		Time:       &sentAt,
		CreatedAt:  created,
	}

	w := ToWire(m)
	assert.Equal(t, "Alice A.", w.SenderName)
	assert.Equal(t, "delivered", w.Status)
	assert.Equal(t, sentAt, w.Time)
	assert.Equal(t, created, w.CreatedAt)
	assert.Equal(t, "c-1", w.ClientID)
	if assert.NotNil(t, w.Metadata) {
		assert.Equal(t, "Night Drive", w.Metadata.Title)
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Voice message", Preview(&model.Message{Type: model.MessageTypeVoice}))
	assert.Equal(t, "Shared: Night Drive", Preview(&model.Message{Type: model.MessageTypeContentCard, Metadata: &model.ContentCardMetadata{Title: "Night Drive"}}))
	assert.Equal(t, "hi", Preview(&model.Message{Type: model.MessageTypeText, Text: "hi"}))
}
