package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/geniepay/geniepay/internal/models"
)

const subscriptionColumns = `id, user_uid, service_name, price, renewal_date, status,
		      blockchain_txn_hash, is_connected, payment_status, payment_method, paid_at,
		      external_payment_id, platform_fee, total_paid, created_at`

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, service_name, price, renewal_date, status, is_connected)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.ServiceName, sub.Price, sub.RenewalDate, sub.Status,
		sub.IsConnected).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListSubscriptions возвращает все подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return scanSubscriptions(rows, op)
}

// ListSubscriptionsByStatus возвращает подписки пользователя с заданным статусом.
func (s *Storage) ListSubscriptionsByStatus(ctx context.Context, userUID, status string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1 AND status = $2
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return scanSubscriptions(rows, op)
}

// ReadSubscription возвращает подписку по ID в пределах записей пользователя.
func (s *Storage) ReadSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE id = $1 AND user_uid = $2`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// FindSubscriptionByName ищет подписку пользователя по подстроке названия
// без учета регистра. Совпадений может быть несколько: возвращается самая
// новая запись ("Prime" найдет и "Amazon Prime" — неоднозначность имен
// здесь не разрешается). Возвращает ErrNotFound при отсутствии совпадений.
func (s *Storage) FindSubscriptionByName(ctx context.Context, userUID, pattern string) (*models.Subscription, error) {
	const op = "storage.FindSubscriptionByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1 AND service_name ILIKE '%' || $2 || '%'
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID, pattern))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscriptionStatus устанавливает подписке новый статус.
// Возвращает ErrNotFound, если записи нет или она принадлежит другому пользователю.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id int, userUID, status string) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = $1 WHERE id = $2 AND user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, status, id, userUID)
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

// ToggleSubscriptionStatus переключает статус подписки между paused и active
// и возвращает новое значение статуса.
func (s *Storage) ToggleSubscriptionStatus(ctx context.Context, id int, userUID string) (string, error) {
	const op = "storage.ToggleSubscriptionStatus"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = CASE WHEN status = 'paused' THEN 'active' ELSE 'paused' END
			  WHERE id = $1 AND user_uid = $2
			  RETURNING status`
	var newStatus string
	if err := s.DB.QueryRowContext(ctx, query, id, userUID).Scan(&newStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newStatus, nil
}

// RemoveSubscription удаляет подписку пользователя по ID. Удаление безвозвратное.
func (s *Storage) RemoveSubscription(ctx context.Context, id int, userUID string) error {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
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

// UpdatePaymentInfo проставляет подписке данные об успешной оплате.
func (s *Storage) UpdatePaymentInfo(ctx context.Context, id int, userUID string, info models.PaymentInfo) error {
	const op = "storage.UpdatePaymentInfo"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET payment_status = $1, payment_method = $2, paid_at = $3,
			      external_payment_id = $4, platform_fee = $5, total_paid = $6
			  WHERE id = $7 AND user_uid = $8`
	result, err := s.DB.ExecContext(ctx, query,
		info.Status, info.Method, info.PaidAt, info.ExternalPaymentID,
		info.PlatformFee, info.TotalPaid, id, userUID)
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

// SetTxnHash записывает подписке хэш блокчейн-транзакции.
func (s *Storage) SetTxnHash(ctx context.Context, id int, userUID, txnHash string) error {
	const op = "storage.SetTxnHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET blockchain_txn_hash = $1 WHERE id = $2 AND user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, txnHash, id, userUID)
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

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	var item models.Subscription
	var txnHash, paymentStatus, paymentMethod, externalPaymentID sql.NullString
	var paidAt sql.NullTime
	var platformFee, totalPaid sql.NullFloat64
	if err := row.Scan(&item.ID, &item.UserUID, &item.ServiceName, &item.Price,
		&item.RenewalDate, &item.Status, &txnHash, &item.IsConnected, &paymentStatus,
		&paymentMethod, &paidAt, &externalPaymentID, &platformFee, &totalPaid,
		&item.CreatedAt); err != nil {
		return nil, err
	}
	fillOptionalFields(&item, txnHash, paymentStatus, paymentMethod, externalPaymentID, paidAt, platformFee, totalPaid)
	return &item, nil
}

func scanSubscriptions(rows *sql.Rows, op string) ([]*models.Subscription, error) {
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		var txnHash, paymentStatus, paymentMethod, externalPaymentID sql.NullString
		var paidAt sql.NullTime
		var platformFee, totalPaid sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ServiceName, &item.Price,
			&item.RenewalDate, &item.Status, &txnHash, &item.IsConnected, &paymentStatus,
			&paymentMethod, &paidAt, &externalPaymentID, &platformFee, &totalPaid,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		fillOptionalFields(&item, txnHash, paymentStatus, paymentMethod, externalPaymentID, paidAt, platformFee, totalPaid)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func fillOptionalFields(item *models.Subscription,
	txnHash, paymentStatus, paymentMethod, externalPaymentID sql.NullString,
	paidAt sql.NullTime, platformFee, totalPaid sql.NullFloat64) {
	if txnHash.Valid {
		item.BlockchainTxnHash = &txnHash.String
	}
	if paymentStatus.Valid {
		item.PaymentStatus = &paymentStatus.String
	}
	if paymentMethod.Valid {
		item.PaymentMethod = &paymentMethod.String
	}
	if paidAt.Valid {
		item.PaidAt = &paidAt.Time
	}
	if externalPaymentID.Valid {
		item.ExternalPaymentID = &externalPaymentID.String
	}
	if platformFee.Valid {
		item.PlatformFee = &platformFee.Float64
	}
	if totalPaid.Valid {
		item.TotalPaid = &totalPaid.Float64
	}
}
