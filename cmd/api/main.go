package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mentally-gamez-soft/ws-blog/internal/cache"
	"github.com/mentally-gamez-soft/ws-blog/internal/comments"
	"github.com/mentally-gamez-soft/ws-blog/internal/config"
	"github.com/mentally-gamez-soft/ws-blog/internal/db"
	"github.com/mentally-gamez-soft/ws-blog/internal/events"
	"github.com/mentally-gamez-soft/ws-blog/internal/handlers"
	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
	"github.com/mentally-gamez-soft/ws-blog/internal/storage"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.S3Bucket == "" {
		return errors.New("S3_BUCKET is required")
	}
	if cfg.APIKey == "" {
		logger.Warn("API_KEY is empty, admin routes are open")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := db.EnsureSchema(ctx, sqlDB); err != nil {
		return err
	}

	s3Client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint)
	if err != nil {
		return err
	}
	st := storage.NewS3Storage(s3Client, cfg.S3Bucket)

	health := &handlers.HealthDeps{
		DB:      handlers.PingFunc(sqlDB.PingContext),
		Storage: st,
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		health.RabbitMQ = handlers.PingFunc(p.Ping)
	} else {
		logger.Info("RABBITMQ_URL not set, events are dropped")
	}

	var postCache posts.Cache = posts.NoopCache{}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		pc := cache.NewPostCache(client, cfg.CacheTTL)
		postCache = pc
		health.Redis = handlers.PingFunc(pc.Ping)
	}

	postSvc := posts.NewService(posts.NewPostgresStore(sqlDB), st, postCache, publisher, logger)
	userSvc := users.NewService(users.NewPostgresRepository(sqlDB), publisher, logger)
	commentSvc := comments.NewService(comments.NewPostgresRepository(sqlDB), postSvc, logger)

	router := handlers.NewRouter(handlers.RouterDeps{
		Posts:    handlers.NewPostsHandler(postSvc, logger),
		Users:    handlers.NewUsersHandler(userSvc, logger),
		Comments: handlers.NewCommentsHandler(commentSvc, logger),
		Health:   health,
		APIKey:   cfg.APIKey,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
