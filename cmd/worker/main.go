package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mentally-gamez-soft/ws-blog/internal/config"
	"github.com/mentally-gamez-soft/ws-blog/internal/db"
	"github.com/mentally-gamez-soft/ws-blog/internal/events"
	"github.com/mentally-gamez-soft/ws-blog/internal/mail"
	"github.com/mentally-gamez-soft/ws-blog/internal/newsletter"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker shutting down")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom)
	if cfg.SMTPUser != "" {
		sender = sender.WithAuth(cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	notifier := newsletter.NewNotifier(
		users.NewService(users.NewPostgresRepository(sqlDB), nil, logger),
		sender, cfg.PublicURL, logger,
	)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	handlers := events.Handlers{
		PostPublished: notifier.Handle,
		UserSignedUp:  notifier.Welcome,
	}
	return events.NewConsumer(ch, "mail-worker", handlers, logger).Run(ctx)
}
