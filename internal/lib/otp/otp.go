// Package otp реализует генерацию одноразовых кодов подтверждения
// и нормализацию телефонных номеров для отправки SMS.
package otp

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TTL время жизни одноразового кода.
const TTL = 10 * time.Minute

var phonePattern = regexp.MustCompile(`^(\+91|91)?[6-9]\d{9}$`)

// GenerateCode возвращает случайный шестизначный код в виде строки с ведущими нулями.
func GenerateCode() (string, error) {
	const op = "otp.GenerateCode"
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%06d", n%1000000), nil
}

// FormatPhoneNumber приводит номер телефона к международному формату.
// Десятизначный номер получает префикс +91.
func FormatPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch {
	case len(cleaned) == 10:
		return "+91" + cleaned
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		return "+" + cleaned
	default:
		return "+" + cleaned
	}
}

// IsValidPhoneNumber проверяет корректность формата номера телефона
// (индийские номера: десять цифр, первая от 6 до 9).
func IsValidPhoneNumber(phone string) bool {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return phonePattern.MatchString(digits.String())
}
