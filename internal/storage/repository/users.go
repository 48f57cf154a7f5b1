package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geniepay/geniepay/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	newUID := uuid.New().String()
	query := `INSERT INTO users (uid, name, email, password_hash, wallet_address, phone_number,
			      is_verified, otp_code, otp_expires_at, otp_channel)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	if _, err := s.DB.ExecContext(ctx, query,
		newUID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.WalletAddress,
		user.PhoneNumber, user.IsVerified, user.OTPCode, user.OTPExpiresAt,
		user.OTPChannel); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email (без учета регистра).
// Возвращает ErrNotFound, если пользователь не зарегистрирован.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, wallet_address, phone_number,
			      is_verified, otp_code, otp_expires_at, otp_channel, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, strings.ToLower(email)), op)
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, wallet_address, phone_number,
			      is_verified, otp_code, otp_expires_at, otp_channel, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// SetVerificationCode записывает пользователю новый одноразовый код,
// срок его действия и канал доставки. Прежний код при этом затирается.
func (s *Storage) SetVerificationCode(ctx context.Context, userUID, code, channel string, expiresAt time.Time) error {
	const op = "storage.SetVerificationCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET otp_code = $1, otp_expires_at = $2, otp_channel = $3
			  WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query, code, expiresAt, channel, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// MarkUserVerified помечает пользователя подтвержденным и очищает одноразовый код.
func (s *Storage) MarkUserVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkUserVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_verified = true, otp_code = NULL, otp_expires_at = NULL, otp_channel = NULL
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateWallet обновляет адрес криптокошелька пользователя.
func (s *Storage) UpdateWallet(ctx context.Context, userUID, walletAddress string) error {
	const op = "storage.UpdateWallet"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET wallet_address = $1 WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, walletAddress, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var walletAddress, phoneNumber, otpCode, otpChannel sql.NullString
	var otpExpiresAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash, &walletAddress,
		&phoneNumber, &u.IsVerified, &otpCode, &otpExpiresAt, &otpChannel, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if walletAddress.Valid {
		u.WalletAddress = &walletAddress.String
	}
	if phoneNumber.Valid {
		u.PhoneNumber = &phoneNumber.String
	}
	if otpCode.Valid {
		u.OTPCode = &otpCode.String
	}
	if otpExpiresAt.Valid {
		u.OTPExpiresAt = &otpExpiresAt.Time
	}
	if otpChannel.Valid {
		u.OTPChannel = &otpChannel.String
	}
	return u, nil
}
