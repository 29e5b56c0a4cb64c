package message

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/im-delivery/internal/model"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
)

func raws(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestNormalizeDefaultsToText(t *testing.T) {
	req, err := Normalize(&Incoming{Text: "  hi  ", Type: "sticker"})
	require.NoError(t, err)
	assert.Equal(t, model.MessageTypeText, req.Type())
	assert.Equal(t, "hi", req.Text)
}

func TestNormalizeEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := Normalize(&Incoming{Text: text})
		assert.ErrorIs(t, err, apperr.ErrEmptyMessage, "text %q", text)
	}

	req, err := Normalize(&Incoming{Attachments: raws(`{"url":"https://cdn/a.png","type":"image","size":10}`)})
	require.NoError(t, err)
	assert.Len(t, req.Attachments, 1)
}

func TestNormalizeEmptyTextWithOnlyBadAttachments(t *testing.T) {
	_, err := Normalize(&Incoming{Attachments: raws(`{"type":"image"}`, `"https://cdn/x.png"`)})
	assert.ErrorIs(t, err, apperr.ErrEmptyMessage)
}

func TestNormalizeVoice(t *testing.T) {
	_, err := Normalize(&Incoming{Type: "voice", Attachments: raws(`{"url":"https://cdn/f.pdf","type":"file","size":3}`)})
	assert.ErrorIs(t, err, apperr.ErrMissingAudioAttachment)

	req, err := Normalize(&Incoming{Type: "voice", Attachments: raws(
		`{"url":"https://cdn/f.pdf","type":"file","size":3}`,
		`{"url":"https://cdn/v.m4a","type":"audio","size":2048,"durationSeconds":4.5}`,
	)})
	require.NoError(t, err)
	body, ok := req.Body.(VoiceBody)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/v.m4a", body.Audio.URL)
	assert.Equal(t, 4.5, body.Audio.DurationSeconds)
}

func TestNormalizeContentCard(t *testing.T) {
	cases := []struct {
		name string
		card *IncomingCard
		msg  string
	}{
		{"missing", nil, "metadata is required"},
		{"item type", &IncomingCard{ItemType: "album", ItemID: "t1", PreviewType: "play"}, "itemType"},
		{"item id", &IncomingCard{ItemType: "track", ItemID: "bad id", PreviewType: "play"}, "itemId"},
		{"preview type", &IncomingCard{ItemType: "track", ItemID: "t1", PreviewType: "watch"}, "previewType"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(&Incoming{Type: "contentCard", Metadata: tc.card})
			require.Error(t, err)
			var e *apperr.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, apperr.ReasonInvalidContentCard, e.Reason)
			assert.Contains(t, e.Message, tc.msg)
		})
	}

	req, err := Normalize(&Incoming{Type: "contentCard", Metadata: &IncomingCard{ItemType: "book", ItemID: "b1", PreviewType: "read"}})
	require.NoError(t, err)
	assert.Equal(t, ContentCardBody{ItemType: "book", ItemID: "b1", PreviewType: "read"}, req.Body)
}

func TestNormalizeClientIDLength(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'x'
	}
	_, err := Normalize(&Incoming{Text: "hi", ClientID: string(long)})
	assert.ErrorIs(t, err, apperr.ErrInvalidClientID)
}

func TestSanitizeAttachments(t *testing.T) {
	got := SanitizeAttachments(raws(
		`{"url":"https://cdn/a.png","type":"image","size":10,"name":"a.png"}`,
		`{"url":"https://cdn/a.png","type":"image","size":10}`,
		`{"url":42,"size":10}`,
		`{"url":"","size":10}`,
		`{"url":"https://cdn/neg","size":-1}`,
		`{"url":"https://cdn/zero","size":0}`,
		`{"url":"https://cdn/str","size":"big"}`,
		`"https://cdn/plain-string"`,
		`{"url":"https://cdn/nosize"}`,
	))
	require.Len(t, got, 2)
	assert.Equal(t, model.Attachment{URL: "https://cdn/a.png", Type: "image", Name: "a.png", Size: 10}, got[0])
	assert.Equal(t, model.Attachment{URL: "https://cdn/nosize", Type: "file"}, got[1])
}
