package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/config"
	httpapi "github.com/Hrittik-Chatterjee/crm-backend-lite/internal/http"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/logging"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/service"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "crm-backend-lite")
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := repository.Connect(connectCtx, cfg.Mongo.URI)
	connectCancel()
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.String("uri", cfg.Mongo.URI), zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)

	businesses := repository.NewMongoBusinessRepo(db)
	contents := repository.NewMongoContentRepo(db)
	users := repository.NewMongoUserRepo(db)

	// Session store: Redis when enabled, in-process otherwise. The in-memory
	// store drops sessions on restart, which is fine for local bring-up.
	var sessions store.KV
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = store.NewRedisKV(redisClient)
		logger.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessions = store.NewMemoryKV()
		logger.Info("Using in-memory session store")
	}

	authSvc := service.NewAuthService(users, sessions, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiryDays, logger)
	notifier := service.NewWebhookNotifier(cfg.Webhook.URL, logger)
	contentSvc := service.NewContentService(contents, businesses, users, notifier, logger)
	businessSvc := service.NewBusinessService(businesses, logger)

	auth := httpapi.NewAuthMiddleware(authSvc, logger)
	router := httpapi.NewRouter(logger)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, cfg.Production(), logger), auth)
	router.RegisterContentRoutes(httpapi.NewContentHandler(contentSvc, logger), auth)
	router.RegisterBusinessRoutes(httpapi.NewBusinessHandler(businessSvc, logger), auth)
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(client, logger))

	handler := httpapi.CORS(cfg.HTTP.CORSAllowedOrigin, router)
	srv := service.NewServer(cfg.HTTP.Addr, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = client.Disconnect(shutdownCtx)
}
