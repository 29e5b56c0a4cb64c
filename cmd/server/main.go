package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/im-delivery/config"
	"github.com/d60-Lab/im-delivery/internal/api"
	"github.com/d60-Lab/im-delivery/internal/api/handler"
	"github.com/d60-Lab/im-delivery/internal/api/middleware"
	"github.com/d60-Lab/im-delivery/internal/auth"
	"github.com/d60-Lab/im-delivery/internal/cache"
	"github.com/d60-Lab/im-delivery/internal/catalog"
	"github.com/d60-Lab/im-delivery/internal/delivery"
	"github.com/d60-Lab/im-delivery/internal/presence"
	"github.com/d60-Lab/im-delivery/internal/repository"
	"github.com/d60-Lab/im-delivery/internal/service"
	"github.com/d60-Lab/im-delivery/internal/ws"
	"github.com/d60-Lab/im-delivery/pkg/database"
	"github.com/d60-Lab/im-delivery/pkg/logger"
	"github.com/d60-Lab/im-delivery/pkg/tracing"
)

// @title IM Delivery API
// @version 1.0
// @description 私信与通知实时投递服务
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env 可选，仅本地开发使用
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	sentryEnabled := cfg.Sentry.DSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		defer rdb.Close()
	}

	// repositories
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	fans := repository.NewFanRepository(db)
	messagesRepo := repository.NewMessageRepository(db)
	directory := cache.NewDirectory(rdb, fans, users, cfg.Redis.TTL)

	// realtime
	registry := presence.NewMemoryRegistry()
	bus := delivery.NewBus(registry)

	// services
	replicator := service.NewFanReplicator(fans, directory, cfg.Replicator.QueueSize)
	stopReplicator := replicator.Start(cfg.Replicator.Workers)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), bus)
	store := service.NewMessageStore(messagesRepo, users, catalog.NewResolver(db))
	messages := service.NewMessageService(store, messagesRepo, follows, directory, registry, bus, notifications)
	relations := service.NewRelationshipService(follows, fans, users, replicator, notifications)

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Expire)
	realtime := ws.NewHandler(registry, messages, tokens, ws.Options{
		SendBuffer:         cfg.Realtime.SendBuffer,
		PingInterval:       cfg.Realtime.PingInterval,
		WriteTimeout:       cfg.Realtime.WriteTimeout,
		InsecureSkipVerify: cfg.Realtime.InsecureSkipVerify,
	})
	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}
	router, err := api.NewRouter(api.RouterOptions{
		ServiceName:   serviceName,
		SentryEnabled: sentryEnabled,
		Tokens:        tokens,
		Limiter:       middleware.NewUserRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Handler:       handler.NewHandler(messages, notifications, relations),
		Realtime:      realtime,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// 已劫持的 websocket 连接不受 Shutdown 管理，由 realtime 主动关闭
	srv.RegisterOnShutdown(realtime.CloseAll)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopReplicator(shutdownCtx); err != nil {
		logger.Warn("replicator drain", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return nil
}
