// Package auth реализует жизненный цикл аккаунта: регистрацию
// с подтверждением одноразовым кодом, повторную отправку кода
// и аутентификацию с выдачей JWT.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	libjwt "github.com/geniepay/geniepay/internal/lib/jwt"
	"github.com/geniepay/geniepay/internal/lib/otp"
	"github.com/geniepay/geniepay/internal/lib/password"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

// Ошибки сервиса аутентификации.
var (
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account is not verified")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExpired        = errors.New("verification code expired")
)

// UserRepository описывает операции хранилища пользователей.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerificationCode(ctx context.Context, userUID, code, channel string, expiresAt time.Time) error
	MarkUserVerified(ctx context.Context, userUID string) error
}

// Notifier отправляет пользователю уведомления об аккаунте.
type Notifier interface {
	SendOTP(user models.User, code string)
	SendWelcome(user models.User)
}

// Service сервис аутентификации.
type Service struct {
	repo     UserRepository
	notifier Notifier
	jwtMaker libjwt.Maker
	log      *slog.Logger
}

// New создает новый сервис аутентификации.
func New(repo UserRepository, notifier Notifier, jwtMaker libjwt.Maker, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, jwtMaker: jwtMaker, log: log}
}

// Signup регистрирует нового пользователя и отправляет код подтверждения.
// Канал доставки: SMS при корректном номере телефона, иначе email.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	const op = "services.auth.Signup"

	existing, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	channel := models.OTPChannelEmail
	var phoneNumber *string
	if req.PhoneNumber != "" && otp.IsValidPhoneNumber(req.PhoneNumber) {
		formatted := otp.FormatPhoneNumber(req.PhoneNumber)
		phoneNumber = &formatted
		channel = models.OTPChannelPhone
	}

	expiresAt := time.Now().Add(otp.TTL)
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		PhoneNumber:  phoneNumber,
		IsVerified:   false,
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
		OTPChannel:   &channel,
	}
	if req.WalletAddress != "" {
		user.WalletAddress = &req.WalletAddress
	}

	uid, err := s.repo.RegisterUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	s.notifier.SendOTP(user, code)
	return &user, nil
}

// VerifyOTP проверяет одноразовый код, помечает аккаунт подтвержденным
// и возвращает JWT для входа.
func (s *Service) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (string, *models.User, error) {
	const op = "services.auth.VerifyOTP"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCode)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.IsVerified {
		return "", nil, fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}
	if user.OTPCode == nil || user.OTPExpiresAt == nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrCodeExpired)
	}
	if *user.OTPCode != req.Code {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}

	if err := s.repo.MarkUserVerified(ctx, user.UID); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiresAt = nil

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.SendWelcome(*user)
	return token, user, nil
}

// ResendOTP генерирует пользователю новый код подтверждения и отправляет его.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	const op = "services.auth.ResendOTP"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsVerified {
		return fmt.Errorf("%s: %w", op, ErrAlreadyVerified)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	channel := models.OTPChannelEmail
	if user.OTPChannel != nil {
		channel = *user.OTPChannel
	}
	if err := s.repo.SetVerificationCode(ctx, user.UID, code, channel, time.Now().Add(otp.TTL)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.OTPCode = &code
	s.notifier.SendOTP(*user, code)
	return nil
}

// Login проверяет учетные данные и возвращает JWT.
// Неподтвержденный аккаунт войти не может.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.IsVerified {
		return "", nil, fmt.Errorf("%s: %w", op, ErrNotVerified)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}
