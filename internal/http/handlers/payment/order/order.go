// Package order реализует HTTP-обработчик создания платежного ордера
// для оплаты подписки через внешний шлюз.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geniepay/geniepay/internal/clients/payment"
	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

// Request описывает запрос на создание платежного ордера.
type Request struct {
	SubscriptionID int `json:"subscriptionId" validate:"required,gt=0"`
}

// Handler управляет HTTP-запросами на создание ордеров.
type Handler struct {
	log      *slog.Logger
	gateway  Gateway
	service  Service
	validate *validator.Validate
}

// Gateway описывает интерфейс платежного шлюза.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, receipt string) (*payment.Order, error)
	KeyID() string
}

// Service описывает чтение подписки для оплаты.
type Service interface {
	Read(ctx context.Context, id int, userUID string) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером, шлюзом и сервисом.
func New(log *slog.Logger, gateway Gateway, service Service) *Handler {
	return &Handler{
		log:      log,
		gateway:  gateway,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платежный ордер
// @Description Создает ордер у платежного шлюза на сумму подписки.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID подписки"
// @Success 200 {object} response.Response "Данные ордера"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 503 {object} response.ErrorResponse "Платежный шлюз не настроен"
// @Router /payments/order [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.order"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Read(r.Context(), req.SubscriptionID, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("subscription not found", slog.Int("id", req.SubscriptionID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to read subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription"))
		return
	}

	order, err := h.gateway.CreateOrder(r.Context(), sub.Price, fmt.Sprintf("sub_%d", sub.ID))
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			log.Error("payment gateway is not configured", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("payment gateway is not configured"))
			return
		}
		log.Error("failed to create order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment order"))
		return
	}

	log.Info("payment order created", slog.String("order_id", order.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"order": order,
		"keyId": h.gateway.KeyID(),
	}))
}
