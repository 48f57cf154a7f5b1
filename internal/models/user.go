// Package models содержит доменные структуры приложения: пользователей,
// подписки и результаты обработки команд ассистента,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Каналы доставки одноразового кода подтверждения.
const (
	OTPChannelEmail = "email"
	OTPChannelPhone = "phone"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID           string     `json:"id"`                      // Уникальный идентификатор пользователя
	Name          string     `json:"name"`                    // Отображаемое имя
	Email         string     `json:"email"`                   // Электронная почта (хранится в нижнем регистре)
	PasswordHash  string     `json:"-"`                       // Хэш пароля, наружу не отдается
	WalletAddress *string    `json:"walletAddress,omitempty"` // Адрес криптокошелька
	PhoneNumber   *string    `json:"phoneNumber,omitempty"`   // Номер телефона
	IsVerified    bool       `json:"isVerified"`              // Подтвержден ли аккаунт
	OTPCode       *string    `json:"-"`                       // Текущий одноразовый код
	OTPExpiresAt  *time.Time `json:"-"`                       // Срок действия кода
	OTPChannel    *string    `json:"-"`                       // Канал доставки кода: email или phone
	CreatedAt     time.Time  `json:"createdAt"`               // Дата регистрации
}

// SignupRequest используется для приёма данных регистрации из JSON-запроса.
type SignupRequest struct {
	Name          string `json:"name" validate:"required"`             // Имя пользователя
	Email         string `json:"email" validate:"required,email"`      // Email
	Password      string `json:"password" validate:"required,min=6"`   // Пароль (не менее 6 символов)
	WalletAddress string `json:"walletAddress" validate:"omitempty"`   // Адрес кошелька (опционально)
	PhoneNumber   string `json:"phoneNumber" validate:"omitempty"`     // Телефон (опционально)
}

// VerifyOTPRequest используется для подтверждения одноразового кода.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`       // Email пользователя
	Code  string `json:"code" validate:"required,len=6,numeric"` // Шестизначный код
}

// ResendOTPRequest используется для повторной отправки кода.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest используется для приёма данных аутентификации.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
