package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/geniepay/geniepay/internal/clients/sms"
	"github.com/geniepay/geniepay/internal/config"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/lib/smtp"
	"github.com/geniepay/geniepay/internal/rabbitmq"
	"github.com/geniepay/geniepay/internal/services/notification"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.ConnRetries, cfg.RabbitMQ.ConnRetryWait)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	transport := smtp.NewTransport(cfg.SMTP, logger)
	smsClient := sms.NewClient(cfg.SMSProvider, logger)
	sender := notification.NewSender(transport, smsClient, logger)

	for _, queue := range rabbitmq.GetNotificationQueues() {
		handler := sender.HandleEmail
		if queue.RoutingKey == rabbitmq.RoutingKeySMS {
			handler = sender.HandleSMS
		}
		if err := rabbitmq.ConsumerMessage(ctx, ch, queue.QueueName, handler); err != nil {
			logger.Error("failed to start consumer", slog.String("queue", queue.QueueName), sl.Err(err))
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("notification sender shutting down gracefully")
}
