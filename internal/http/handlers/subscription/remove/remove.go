// Package remove реализует HTTP-обработчик удаления подписки пользователя.
//
// Handler извлекает ID подписки из пути, удаляет запись через сервис
// и уведомляет пользователя об отмене. Чужие подписки недоступны: запрос
// всегда ограничен идентификатором пользователя из контекста.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/geniepay/geniepay/internal/http/middlewarectx"
	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

// Handler управляет HTTP-запросами на удаление подписок.
type Handler struct {
	log      *slog.Logger
	service  Service
	notifier Notifier
}

// Service описывает интерфейс бизнес-логики удаления подписки.
type Service interface {
	Read(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	Remove(ctx context.Context, id int, userUID string) error
}

// Notifier отправляет уведомление об отмене подписки (best-effort).
type Notifier interface {
	SendSubscriptionCancelled(user models.User, serviceName string)
}

// New создает новый Handler с переданными логгером, сервисом и нотификатором.
func New(log *slog.Logger, service Service, notifier Notifier) *Handler {
	return &Handler{log: log, service: service, notifier: notifier}
}

// ServeHTTP godoc
// @Summary Удалить подписку
// @Description Безвозвратно удаляет подписку текущего пользователя по ID.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response "Подписка удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid subscription id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Read(r.Context(), id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("subscription not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to read subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete subscription"))
		return
	}

	if err := h.service.Remove(r.Context(), id, userUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("subscription not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to delete subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete subscription"))
		return
	}

	if email, ok := r.Context().Value(middlewarectx.Email).(string); ok && email != "" {
		h.notifier.SendSubscriptionCancelled(models.User{Email: email}, sub.ServiceName)
	}

	log.Info("subscription deleted", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "subscription deleted",
	}))
}
