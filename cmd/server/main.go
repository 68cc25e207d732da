package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"nudduck.com/nudduck/internal/config"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/server"
	"nudduck.com/nudduck/pkg/database"
	"nudduck.com/nudduck/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogPath); err != nil {
		panic(err)
	}
	defer logger.L().Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Connect()
	if err := db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Comment{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Notification{},
		&model.LifeGraph{},
		&model.LifeGraphEvent{},
	); err != nil {
		logger.L().Fatal("failed to run migrations", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.L().Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.L().Warn("redis unreachable, rate limiting and live notifications disabled", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	srv, err := server.New(cfg, db, redisClient)
	if err != nil {
		logger.L().Fatal("failed to build server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Engine(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("forced shutdown", zap.Error(err))
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
}
