// Package resendotp реализует HTTP-обработчик повторной отправки одноразового кода.
package resendotp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geniepay/geniepay/internal/http/response"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/services/auth"
)

// Handler управляет HTTP-запросами на повторную отправку кода.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики повторной отправки кода.
type Service interface {
	ResendOTP(ctx context.Context, email string) error
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
// @Summary Повторно отправить одноразовый код
// @Description Генерирует новый код подтверждения, старый перестает действовать.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.ResendOTPRequest true "Email пользователя"
// @Success 200 {object} response.Response "Код отправлен повторно"
// @Failure 400 {object} response.ErrorResponse "Аккаунт не найден или уже подтвержден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /resend-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resendotp"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Error("account not found", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("account not found"))
		case errors.Is(err, auth.ErrAlreadyVerified):
			log.Error("account already verified", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("account is already verified"))
		default:
			log.Error("failed to resend code", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resend code"))
		}
		return
	}

	log.Info("verification code resent", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "verification code sent",
	}))
}
