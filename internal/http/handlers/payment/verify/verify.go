// Package verify реализует HTTP-обработчик подтверждения оплаты подписки.
//
// Handler проверяет подпись платежа и проставляет подписке данные об оплате:
// статус paid, способ оплаты, время, идентификатор платежа у шлюза,
// комиссию платформы и итоговую сумму.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

// Комиссия платформы, доля от цены подписки.
const platformFeeRate = 0.02

// Request описывает запрос на подтверждение оплаты.
type Request struct {
	SubscriptionID int    `json:"subscriptionId" validate:"required,gt=0"`
	OrderID        string `json:"orderId" validate:"required"`
	PaymentID      string `json:"paymentId" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

// Handler управляет HTTP-запросами на подтверждение оплаты.
type Handler struct {
	log      *slog.Logger
	gateway  Gateway
	service  Service
	validate *validator.Validate
}

// Gateway описывает проверку подписи платежа.
type Gateway interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

// Service описывает операции подписок для фиксации оплаты.
type Service interface {
	Read(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	RecordPayment(ctx context.Context, id int, userUID string, info models.PaymentInfo) error
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
// @Summary Подтвердить оплату подписки
// @Description Проверяет подпись платежа и записывает данные об оплате в подписку.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные платежа"
// @Success 200 {object} response.Response "Оплата подтверждена"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"
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

	if !h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		log.Error("invalid payment signature", slog.String("order_id", req.OrderID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payment signature"))
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

	fee := sub.Price * platformFeeRate
	info := models.PaymentInfo{
		Status:            models.PaymentStatusPaid,
		Method:            "razorpay",
		PaidAt:            time.Now(),
		ExternalPaymentID: req.PaymentID,
		PlatformFee:       fee,
		TotalPaid:         sub.Price + fee,
	}
	if err := h.service.RecordPayment(r.Context(), req.SubscriptionID, userUID, info); err != nil {
		log.Error("failed to record payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record payment"))
		return
	}

	log.Info("payment verified", slog.Int("subscription_id", req.SubscriptionID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":   "payment verified",
		"totalPaid": info.TotalPaid,
	}))
}
