// Package notify реализует HTTP-обработчик отправки произвольного
// email-уведомления текущему пользователю.
package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/services/notification"
)

// Request описывает запрос на отправку уведомления.
type Request struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
	To      string `json:"to" validate:"omitempty,email"`
}

// Handler управляет HTTP-запросами на отправку уведомлений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает постановку письма в очередь доставки.
type Service interface {
	SendEmail(to, subject, body string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить email-уведомление
// @Description Ставит письмо в очередь доставки. По умолчанию адресат — текущий пользователь.
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Тема и текст письма"
// @Success 200 {object} response.Response "Письмо поставлено в очередь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 503 {object} response.ErrorResponse "Уведомления не настроены"
// @Router /notify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notify"
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

	to := req.To
	if to == "" {
		email, ok := r.Context().Value(middlewarectx.Email).(string)
		if !ok || email == "" {
			log.Error("email not found in context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		to = email
	}

	if err := h.service.SendEmail(to, req.Subject, req.Message); err != nil {
		if errors.Is(err, notification.ErrDisabled) {
			log.Error("notifications are disabled", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("notification service is not configured"))
			return
		}
		log.Error("failed to queue notification", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send notification"))
		return
	}

	log.Info("notification queued", slog.String("to", to))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "notification queued",
	}))
}
