// Package command реализует HTTP-обработчик текстовых команд ассистента.
//
// Handler принимает свободный текст команды с историей диалога, передает его
// сервису ассистента и возвращает результат исполнения распознанного действия.
// Недоступность сервиса генерации отдается статусом 503.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geniepay/geniepay/internal/clients/ai"
	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
)

// Handler управляет HTTP-запросами на исполнение команд ассистента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервиса ассистента.
type Service interface {
	HandleCommand(ctx context.Context, userUID string, req models.CommandRequest) (*models.CommandResult, error)
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
// @Summary Исполнить текстовую команду
// @Description Разбирает команду пользователя и выполняет распознанное действие над подписками.
// @Tags Assistant
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CommandRequest true "Команда и история диалога"
// @Success 200 {object} response.Response "Результат исполнения команды"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Сервис генерации недоступен"
// @Router /ai/command [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assistant.command"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded")

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

	result, err := h.service.HandleCommand(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			log.Error("ai provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("ai service is not available"))
			return
		}
		log.Error("failed to handle command", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process command"))
		return
	}

	log.Info("command handled", slog.String("action", result.Action))
	render.JSON(w, r, response.StatusOKWithData(result))
}
