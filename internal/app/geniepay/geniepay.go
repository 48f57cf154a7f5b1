// Package geniepay собирает HTTP-приложение: хранилище, кеш, брокер,
// внешние клиенты, сервисы и маршруты.
package geniepay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/geniepay/geniepay/internal/cache"
	"github.com/geniepay/geniepay/internal/clients/ai"
	"github.com/geniepay/geniepay/internal/clients/chain"
	"github.com/geniepay/geniepay/internal/clients/payment"
	"github.com/geniepay/geniepay/internal/config"
	libjwt "github.com/geniepay/geniepay/internal/lib/jwt"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/migrations"
	"github.com/geniepay/geniepay/internal/rabbitmq"
	"github.com/geniepay/geniepay/internal/services/assistant"
	authservice "github.com/geniepay/geniepay/internal/services/auth"
	"github.com/geniepay/geniepay/internal/services/notification"
	subservice "github.com/geniepay/geniepay/internal/services/subscription"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

// New создает приложение: подключает PostgreSQL, Redis и RabbitMQ,
// прогоняет миграции и регистрирует маршруты.
//
// RabbitMQ опционален: если брокер недоступен, уведомления отключаются,
// остальное приложение продолжает работать.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var (
		rabbitConn *amqp.Connection
		rabbitCh   *amqp.Channel
		pub        notification.Publisher
	)
	rabbitConn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.ConnRetries, cfg.RabbitMQ.ConnRetryWait)
	if err != nil {
		logger.Warn("rabbitmq is unavailable, notifications are disabled", sl.Err(err))
		rabbitConn = nil
	} else {
		rabbitCh, err = rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
		if err != nil {
			_ = rabbitConn.Close()
			return nil, err
		}
		pub = &notification.AMQPPublisher{Ch: rabbitCh}
	}

	jwtMaker := libjwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	aiClient := ai.NewClient(cfg.AIProvider)
	paymentClient := payment.NewClient(cfg.PaymentGateway)
	chainClient := chain.NewClient(cfg.Chain)

	notificationService := notification.New(pub, logger)
	subscriptionService := subservice.New(db, cacheRedis, logger)
	authService := authservice.New(db, notificationService, jwtMaker, logger)

	parser := assistant.NewParser(aiClient, logger)
	dispatcher := assistant.NewDispatcher(subscriptionService)
	assistantService := assistant.NewService(parser, dispatcher, subscriptionService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Subscription: subscriptionService,
		Assistant:    assistantService,
		Notification: notificationService,
		Payment:      paymentClient,
		Chain:        chainClient,
		JWTMaker:     jwtMaker,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
		rabbitCh:   rabbitCh,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbitCh != nil {
			_ = a.rabbitCh.Close()
		}
		if a.rabbitConn != nil {
			_ = a.rabbitConn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
