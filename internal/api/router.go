// Package api wires the HTTP surface: middleware, REST routes, the websocket endpoint and docs.
package api

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/im-delivery/docs"
	"github.com/d60-Lab/im-delivery/internal/api/handler"
	"github.com/d60-Lab/im-delivery/internal/api/middleware"
	"github.com/d60-Lab/im-delivery/internal/auth"
	"github.com/d60-Lab/im-delivery/internal/ws"
	"github.com/d60-Lab/im-delivery/pkg/logger"
)

// RouterOptions 路由依赖
type RouterOptions struct {
	ServiceName   string
	SentryEnabled bool
	Tokens        *auth.Tokens
	Limiter       *middleware.UserRateLimiter
	Handler       *handler.Handler
	Realtime      *ws.Handler
}

func NewRouter(opts RouterOptions) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(logger.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/swagger"})))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if opts.Realtime != nil {
		r.GET("/ws", opts.Realtime.Handle)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewUserRateLimiter(0, 0)
	}
	// 同一组路由同时挂在根路径与 /api/v1 下
	for _, prefix := range []string{"", "/api/v1"} {
		g := r.Group(prefix, middleware.Auth(opts.Tokens))
		registerRoutes(g, opts.Handler, limiter.Handler())
	}
	return r, nil
}

func registerRoutes(g *gin.RouterGroup, h *handler.Handler, limit gin.HandlerFunc) {
	g.POST("/chat/messages", limit, h.SendMessage)

	messages := g.Group("/messages")
	{
		messages.GET("/contacts", h.Contacts)
		messages.POST("/share/followers", limit, h.ShareToFollowers)
		messages.GET("/:otherUserId", h.History)
		messages.POST("/:otherUserId", limit, h.SendMessage)
	}

	notifications := g.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.POST("/events", h.CreateEvent)
		notifications.POST("/:id/read", h.MarkRead)
	}

	relations := g.Group("/relations")
	{
		relations.POST("/follow", h.Follow)
		relations.POST("/unfollow", h.Unfollow)
		relations.GET("/:user_id/following", h.ListFollowing)
		relations.GET("/:user_id/fans", h.ListFans)
	}
}
