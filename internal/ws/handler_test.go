package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/d60-Lab/im-delivery/internal/auth"
	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/message"
	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/internal/service"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
)

type stubMessages struct {
	service.MessageService
	sent chan *message.Incoming
}

func (s *stubMessages) Send(ctx context.Context, senderID string, in *message.Incoming) (*service.SendResult, error) {
	s.sent <- in
	if in.ReceiverID == senderID {
		return nil, apperr.ErrCannotMessageSelf
	}
	return &service.SendResult{Message: &message.Wire{ID: "m1", SenderID: senderID, ReceiverID: in.ReceiverID, Text: in.Text}}, nil
}

type wsFixture struct {
	server   *httptest.Server
	registry presence.Registry
	tokens   *auth.Tokens
	messages *stubMessages
	handler  *Handler
}

func newFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &wsFixture{
		registry: presence.NewMemoryRegistry(),
		tokens:   auth.NewTokens("test-secret", time.Hour),
		messages: &stubMessages{sent: make(chan *message.Incoming, 4)},
	}
	f.handler = NewHandler(f.registry, f.messages, f.tokens, Options{InsecureSkipVerify: true})
	r := gin.New()
	r.GET("/ws", f.handler.Handle)
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *wsFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	tok, err := f.tokens.Issue(userID)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + tok

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, map[string]interface{}{"event": event, "data": data}))
}

func TestHandshakeRequiresToken(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2, err := http.Get(f.server.URL + "/ws?token=garbage")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestMultiDevicePushAndDisconnect(t *testing.T) {
	f := newFixture(t)
	phone := f.dial(t, "u1")
	laptop := f.dial(t, "u1")

	require.Eventually(t, func() bool { return len(f.registry.ConnectionsFor("u1")) == 2 }, 2*time.Second, 10*time.Millisecond)

	bus := delivery.NewBus(f.registry)
	assert.Equal(t, 2, bus.Push("u1", delivery.EventNewMessage, map[string]string{"text": "hi"}))

	for _, conn := range []*websocket.Conn{phone, laptop} {
		got := readFrame(t, conn)
		assert.Equal(t, delivery.EventNewMessage, got.Event)
		assert.JSONEq(t, `{"text":"hi"}`, string(got.Data))
	}

	require.NoError(t, phone.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return len(f.registry.ConnectionsFor("u1")) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, f.registry.Online("u1"))
}

func TestSendMessageOverSocket(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "u1")

	writeFrame(t, conn, EventSendMessage, map[string]string{"receiverId": "u2", "text": "hello", "clientId": "c-1"})
	got := readFrame(t, conn)
	assert.Equal(t, delivery.EventMessageSent, got.Event)
	var res service.SendResult
	require.NoError(t, json.Unmarshal(got.Data, &res))
	assert.Equal(t, "m1", res.Message.ID)
	assert.Equal(t, "u1", res.Message.SenderID)

	in := <-f.messages.sent
	assert.Equal(t, "c-1", in.ClientID)

	writeFrame(t, conn, EventSendMessage, map[string]string{"receiverId": "u1", "text": "me", "clientId": "c-2"})
	got = readFrame(t, conn)
	assert.Equal(t, delivery.EventMessageError, got.Event)
	var e ErrorPayload
	require.NoError(t, json.Unmarshal(got.Data, &e))
	assert.Equal(t, apperr.ReasonCannotMessageSelf, e.Reason)
	assert.Equal(t, "c-2", e.ClientID)
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "u1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"event":"sendMessage",`)))

	got := readFrame(t, conn)
	assert.Equal(t, EventError, got.Event)
	var e ErrorPayload
	require.NoError(t, json.Unmarshal(got.Data, &e))
	assert.Equal(t, apperr.ReasonInvalidPayload, e.Reason)
	assert.True(t, f.registry.Online("u1"))

	writeFrame(t, conn, EventSendMessage, map[string]string{"receiverId": "u2", "text": "still here"})
	got = readFrame(t, conn)
	assert.Equal(t, delivery.EventMessageSent, got.Event)
	assert.Equal(t, "still here", (<-f.messages.sent).Text)
}

func TestCloseAllEndsLiveSessions(t *testing.T) {
	f := newFixture(t)
	phone := f.dial(t, "u1")
	laptop := f.dial(t, "u2")
	require.Eventually(t, func() bool {
		return f.registry.Online("u1") && f.registry.Online("u2")
	}, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		f.handler.CloseAll()
		close(done)
	}()

	for _, conn := range []*websocket.Conn{phone, laptop} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _, err := conn.Read(ctx)
		cancel()
		assert.Error(t, err)
	}
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("CloseAll did not return")
	}
	require.Eventually(t, func() bool {
		return !f.registry.Online("u1") && !f.registry.Online("u2")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestJoinOnlyAsSelf(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "u1")

	writeFrame(t, conn, EventJoin, "u2")
	got := readFrame(t, conn)
	assert.Equal(t, EventError, got.Event)
	assert.False(t, f.registry.Online("u2"))

	writeFrame(t, conn, EventJoin, map[string]string{"userId": "u1"})
	writeFrame(t, conn, EventJoin, "u1")
	require.Eventually(t, func() bool { return len(f.registry.ConnectionsFor("u1")) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestParseJoinUserID(t *testing.T) {
	assert.Equal(t, "u1", parseJoinUserID(json.RawMessage(`"u1"`)))
	assert.Equal(t, "u1", parseJoinUserID(json.RawMessage(`{"userId":" u1 "}`)))
	assert.Equal(t, "", parseJoinUserID(json.RawMessage(`42`)))
	assert.Equal(t, "", parseJoinUserID(nil))
}
