package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/d60-Lab/im-delivery/internal/auth"
	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/message"
	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/internal/service"
	"github.com/d60-Lab/im-delivery/pkg/apperr"
	"github.com/d60-Lab/im-delivery/pkg/logger"
	"github.com/d60-Lab/im-delivery/pkg/response"
)

// 客户端 -> 服务端事件
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
	EventError       = "error"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ErrorPayload messageError / error 的载荷
type ErrorPayload struct {
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	ClientID string `json:"clientId,omitempty"`
}

type Handler struct {
	registry presence.Registry
	messages service.MessageService
	tokens   *auth.Tokens
	opts     Options

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHandler(registry presence.Registry, messages service.MessageService, tokens *auth.Tokens, opts Options) *Handler {
	return &Handler{
		registry: registry,
		messages: messages,
		tokens:   tokens,
		opts:     opts.withDefaults(),
		clients:  map[*Client]struct{}{},
	}
}

// Handle GET /ws?token=...
// 浏览器原生 WebSocket 无法设置 Authorization 头，token 走 query，同时兼容头部
func (h *Handler) Handle(c *gin.Context) {
	userID, err := h.authenticate(c)
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: h.opts.InsecureSkipVerify,
	})
	if err != nil {
		// Accept 已写回错误响应
		logger.Debug("ws accept failed", zap.Error(err))
		return
	}

	client := newClient(c.Request.Context(), userID, conn, h.opts)
	h.track(client)
	h.registry.Join(userID, client)
	logger.Debug("ws connected", zap.String("user", userID), zap.String("conn", client.ID()))
	defer func() {
		h.registry.Leave(client)
		h.untrack(client)
		client.close(websocket.StatusNormalClosure, "bye")
		logger.Debug("ws disconnected", zap.String("user", userID), zap.String("conn", client.ID()))
	}()

	go client.writeLoop()
	go client.keepAliveLoop()

	h.readLoop(client)
}

func (h *Handler) authenticate(c *gin.Context) (string, error) {
	if tok := c.Query("token"); tok != "" {
		return h.tokens.Parse(tok)
	}
	return h.tokens.FromHeader(c.GetHeader("Authorization"))
}

func (h *Handler) track(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// CloseAll 关闭所有在线连接，http.Server.Shutdown 不会处理已劫持的连接
func (h *Handler) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			c.close(websocket.StatusGoingAway, "server shutting down")
		}(c)
	}
	wg.Wait()
	logger.Info("ws connections closed", zap.Int("count", len(clients)))
}

// readLoop 单帧解析失败只回 error 事件，不断开连接
func (h *Handler) readLoop(client *Client) {
	for {
		_, data, err := client.conn.Read(client.ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == -1 && client.ctx.Err() == nil {
				logger.Debug("ws read failed", zap.String("conn", client.ID()), zap.Error(err))
			}
			return
		}
		var in inboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			_ = client.Send(EventError, ErrorPayload{Reason: apperr.ReasonInvalidPayload, Message: "malformed frame"})
			continue
		}
		h.dispatch(client.ctx, client, in)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *Client, in inboundFrame) {
	switch in.Event {
	case EventJoin:
		h.join(client, in.Data)
	case EventSendMessage:
		// 连接在发送途中断开也要走完落库和推送
		h.sendMessage(context.WithoutCancel(ctx), client, in.Data)
	default:
		logger.Debug("ws unknown event", zap.String("conn", client.ID()), zap.String("event", in.Event))
	}
}

// join 只允许加入自己的身份；重复 join 幂等
func (h *Handler) join(client *Client, data json.RawMessage) {
	userID := parseJoinUserID(data)
	if userID != "" && userID != client.userID {
		_ = client.Send(EventError, ErrorPayload{Reason: string(apperr.KindForbidden), Message: "cannot join as another user"})
		return
	}
	h.registry.Join(client.userID, client)
}

// parseJoinUserID 兼容 "u1" 与 {"userId":"u1"} 两种写法
func parseJoinUserID(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return strings.TrimSpace(obj.UserID)
	}
	return ""
}

func (h *Handler) sendMessage(ctx context.Context, client *Client, data json.RawMessage) {
	var in message.Incoming
	if err := json.Unmarshal(data, &in); err != nil {
		_ = client.Send(delivery.EventMessageError, ErrorPayload{Reason: apperr.ReasonInvalidPayload, Message: "malformed message payload"})
		return
	}
	res, err := h.messages.Send(ctx, client.userID, &in)
	if err != nil {
		payload := ErrorPayload{Reason: apperr.ReasonInternal, Message: "failed to send message", ClientID: in.ClientID}
		if e := apperr.As(err); e != nil && e.Kind != apperr.KindInternal {
			payload.Reason, payload.Message = e.Reason, e.Message
		} else {
			logger.Error("ws send failed", zap.String("user", client.userID), zap.Error(err))
		}
		_ = client.Send(delivery.EventMessageError, payload)
		return
	}
	_ = client.Send(delivery.EventMessageSent, res)
}
