// Package execute реализует HTTP-обработчик вызова платежного контракта.
//
// Handler принимает действие (pay, pause, cancel) и ID подписки, отправляет
// транзакцию через блокчейн-клиент, после чего фиксирует результат в подписке:
// после pay записывается хэш транзакции, pause и cancel обновляют статус.
package execute

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geniepay/geniepay/internal/clients/chain"
	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

// Request описывает запрос на исполнение действия контракта.
type Request struct {
	Action         string  `json:"action" validate:"required,oneof=pay pause cancel"`
	SubscriptionID int     `json:"subscriptionId" validate:"required,gt=0"`
	Amount         float64 `json:"amount" validate:"omitempty,gte=0"`
	Recipient      string  `json:"recipient" validate:"omitempty"`
}

// Handler управляет HTTP-запросами на вызов контракта.
type Handler struct {
	log      *slog.Logger
	chain    ChainClient
	service  Service
	validate *validator.Validate
}

// ChainClient описывает интерфейс блокчейн-клиента.
type ChainClient interface {
	Execute(ctx context.Context, action string, subscriptionID int, amount float64) (string, error)
	ExplorerURL(txHash string) string
}

// Service описывает операции подписок, затрагиваемые транзакцией.
type Service interface {
	Read(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	SetTxnHash(ctx context.Context, id int, userUID, txnHash string) error
	UpdateStatus(ctx context.Context, id int, userUID, status string) error
}

// New создает новый Handler с переданными логгером, клиентом и сервисом.
func New(log *slog.Logger, chainClient ChainClient, service Service) *Handler {
	return &Handler{
		log:      log,
		chain:    chainClient,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Исполнить действие платежного контракта
// @Description Отправляет блокчейн-транзакцию для подписки и возвращает её хэш.
// @Tags Blockchain
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Действие и ID подписки"
// @Success 200 {object} response.Response "Хэш транзакции"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 503 {object} response.ErrorResponse "Блокчейн-клиент не настроен"
// @Router /blockchain/execute [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chain.execute"
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
	log.Info("request body decoded", slog.Any("request", req))

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

	amount := req.Amount
	if amount == 0 {
		amount = sub.Price
	}

	txHash, err := h.chain.Execute(r.Context(), req.Action, req.SubscriptionID, amount)
	if err != nil {
		if errors.Is(err, chain.ErrNotConfigured) {
			log.Error("chain client is not configured", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("blockchain service is not configured"))
			return
		}
		log.Error("failed to execute transaction", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("blockchain transaction failed"))
		return
	}

	switch req.Action {
	case chain.ActionPay:
		err = h.service.SetTxnHash(r.Context(), req.SubscriptionID, userUID, txHash)
	case chain.ActionPause:
		err = h.service.UpdateStatus(r.Context(), req.SubscriptionID, userUID, models.StatusPaused)
	case chain.ActionCancel:
		err = h.service.UpdateStatus(r.Context(), req.SubscriptionID, userUID, models.StatusCancelled)
	}
	if err != nil {
		log.Error("failed to record transaction result", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("transaction sent but could not update subscription"))
		return
	}

	log.Info("blockchain transaction executed", slog.String("tx_hash", txHash))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message":         "blockchain transaction executed",
		"transactionHash": txHash,
		"explorerUrl":     h.chain.ExplorerURL(txHash),
	}))
}
