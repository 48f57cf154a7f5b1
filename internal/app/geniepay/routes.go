// Package geniepay предоставляет маршруты для основного приложения.
package geniepay

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/geniepay/geniepay/internal/clients/chain"
	"github.com/geniepay/geniepay/internal/clients/payment"
	"github.com/geniepay/geniepay/internal/http/handlers/assistant/command"
	"github.com/geniepay/geniepay/internal/http/handlers/auth/login"
	"github.com/geniepay/geniepay/internal/http/handlers/auth/resendotp"
	"github.com/geniepay/geniepay/internal/http/handlers/auth/signup"
	"github.com/geniepay/geniepay/internal/http/handlers/auth/verifyotp"
	"github.com/geniepay/geniepay/internal/http/handlers/chain/execute"
	"github.com/geniepay/geniepay/internal/http/handlers/notify"
	"github.com/geniepay/geniepay/internal/http/handlers/payment/order"
	"github.com/geniepay/geniepay/internal/http/handlers/payment/verify"
	"github.com/geniepay/geniepay/internal/http/handlers/subscription/create"
	"github.com/geniepay/geniepay/internal/http/handlers/subscription/list"
	"github.com/geniepay/geniepay/internal/http/handlers/subscription/pause"
	"github.com/geniepay/geniepay/internal/http/handlers/subscription/remove"
	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	libjwt "github.com/geniepay/geniepay/internal/lib/jwt"
	"github.com/geniepay/geniepay/internal/services/assistant"
	authservice "github.com/geniepay/geniepay/internal/services/auth"
	"github.com/geniepay/geniepay/internal/services/notification"
	subservice "github.com/geniepay/geniepay/internal/services/subscription"
)

// Services собирает зависимости маршрутов в одну структуру.
type Services struct {
	Auth         *authservice.Service
	Subscription *subservice.Service
	Assistant    *assistant.Service
	Notification *notification.Service
	Payment      *payment.Client
	Chain        *chain.Client
	JWTMaker     libjwt.Maker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/signup", signup.New(logger, svc.Auth).ServeHTTP)
		r.Post("/verify-otp", verifyotp.New(logger, svc.Auth).ServeHTTP)
		r.Post("/resend-otp", resendotp.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Use(middlewarectx.JWTMiddleware(svc.JWTMaker, logger))
			r.Get("/subscriptions", list.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscriptions/add", create.New(logger, svc.Subscription, svc.Notification).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, svc.Subscription, svc.Notification).ServeHTTP)
			r.Patch("/subscriptions/{id}/pause", pause.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/ai/command", command.New(logger, svc.Assistant).ServeHTTP)
			r.Post("/blockchain/execute", execute.New(logger, svc.Chain, svc.Subscription).ServeHTTP)
			r.Post("/payments/order", order.New(logger, svc.Payment, svc.Subscription).ServeHTTP)
			r.Post("/payments/verify", verify.New(logger, svc.Payment, svc.Subscription).ServeHTTP)
			r.Post("/notify", notify.New(logger, svc.Notification).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
