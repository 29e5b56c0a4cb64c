// Package ws serves the realtime channel: one websocket connection per device session.
package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/d60-Lab/im-delivery/pkg/logger"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Frame 双向统一帧格式
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Options 连接参数
type Options struct {
	SendBuffer         int
	PingInterval       time.Duration
	WriteTimeout       time.Duration
	InsecureSkipVerify bool
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

// Client 实现 presence.Conn。写操作只在 writeLoop 中进行
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan Frame
	opts   Options

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newClient(parent context.Context, userID string, conn *websocket.Conn, opts Options) *Client {
	ctx, cancel := context.WithCancel(parent)
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan Frame, opts.SendBuffer),
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() string { return c.userID }

// Send 非阻塞入队；缓冲满直接丢弃并返回错误
func (c *Client) Send(event string, payload interface{}) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.send <- Frame{Event: event, Data: payload}:
		return nil
	default:
		return ErrBufferFull
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case f := <-c.send:
			writeCtx, cancel := context.WithTimeout(c.ctx, c.opts.WriteTimeout)
			err := wsjson.Write(writeCtx, c.conn, f)
			cancel()
			if err != nil {
				logger.Debug("ws write failed", zap.String("conn", c.id), zap.String("event", f.Event), zap.Error(err))
				c.close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, c.opts.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}

func (c *Client) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close(code, reason)
	})
}
