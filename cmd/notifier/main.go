package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/blackshot-store/internal/config"
	"github.com/example/blackshot-store/internal/email"
	"github.com/example/blackshot-store/internal/infrastructure/kafka"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/example/blackshot-store/internal/notification"
)

const consumerGroup = "blackshot-email-notifier"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "notifier")

	if !cfg.KafkaEnabled() {
		logger.Error("KAFKA_BROKERS is required for the notifier")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting notifier",
		"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "group", consumerGroup,
		"smtp", cfg.SMTPHost+":"+cfg.SMTPPort, "from", cfg.SMTPFrom)

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup, logger)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier shut down")
}
