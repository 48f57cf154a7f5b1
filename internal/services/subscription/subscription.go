// Package subscription реализует сервис подписок поверх хранилища
// с кешированием списков пользователя.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
)

const cacheTTL = 5 * time.Minute

// Repository описывает операции хранилища подписок.
type Repository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error)
	ListSubscriptionsByStatus(ctx context.Context, userUID, status string) ([]*models.Subscription, error)
	ReadSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	FindSubscriptionByName(ctx context.Context, userUID, pattern string) (*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id int, userUID, status string) error
	ToggleSubscriptionStatus(ctx context.Context, id int, userUID string) (string, error)
	RemoveSubscription(ctx context.Context, id int, userUID string) error
	UpdatePaymentInfo(ctx context.Context, id int, userUID string, info models.PaymentInfo) error
	SetTxnHash(ctx context.Context, id int, userUID, txnHash string) error
}

// Cacher описывает операции кеша.
type Cacher interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service сервис подписок.
type Service struct {
	repo  Repository
	cache Cacher
	log   *slog.Logger
}

// New создает новый сервис подписок.
func New(repo Repository, cache Cacher, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func cacheKey(userUID string) string {
	return "subscriptions:" + userUID
}

// List возвращает все подписки пользователя, сначала из кеша.
// Ошибки кеша не фатальны: список читается из хранилища.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "services.subscription.List"

	var cached []*models.Subscription
	found, err := s.cache.Get(cacheKey(userUID), &cached)
	if err != nil {
		s.log.Warn("failed to read subscriptions cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	subs, err := s.repo.ListSubscriptions(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(cacheKey(userUID), subs, cacheTTL); err != nil {
		s.log.Warn("failed to write subscriptions cache", sl.Err(err))
	}
	return subs, nil
}

// ListByStatus возвращает подписки пользователя с заданным статусом.
// Фильтрованные списки не кешируются.
func (s *Service) ListByStatus(ctx context.Context, userUID, status string) ([]*models.Subscription, error) {
	const op = "services.subscription.ListByStatus"

	subs, err := s.repo.ListSubscriptionsByStatus(ctx, userUID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// Create добавляет подписку и сбрасывает кеш списка пользователя.
func (s *Service) Create(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "services.subscription.Create"

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(sub.UserUID)
	return id, nil
}

// Read возвращает подписку пользователя по ID.
func (s *Service) Read(ctx context.Context, id int, userUID string) (*models.Subscription, error) {
	const op = "services.subscription.Read"

	sub, err := s.repo.ReadSubscription(ctx, id, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// FindByName ищет подписку пользователя по подстроке названия.
func (s *Service) FindByName(ctx context.Context, userUID, name string) (*models.Subscription, error) {
	const op = "services.subscription.FindByName"

	sub, err := s.repo.FindSubscriptionByName(ctx, userUID, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateStatus устанавливает подписке новый статус и сбрасывает кеш.
func (s *Service) UpdateStatus(ctx context.Context, id int, userUID, status string) error {
	const op = "services.subscription.UpdateStatus"

	if err := s.repo.UpdateSubscriptionStatus(ctx, id, userUID, status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(userUID)
	return nil
}

// Toggle переключает статус подписки между active и paused
// и возвращает новое значение.
func (s *Service) Toggle(ctx context.Context, id int, userUID string) (string, error) {
	const op = "services.subscription.Toggle"

	status, err := s.repo.ToggleSubscriptionStatus(ctx, id, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(userUID)
	return status, nil
}

// Remove удаляет подписку пользователя и сбрасывает кеш.
func (s *Service) Remove(ctx context.Context, id int, userUID string) error {
	const op = "services.subscription.Remove"

	if err := s.repo.RemoveSubscription(ctx, id, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(userUID)
	return nil
}

// RecordPayment проставляет подписке данные оплаты и сбрасывает кеш.
func (s *Service) RecordPayment(ctx context.Context, id int, userUID string, info models.PaymentInfo) error {
	const op = "services.subscription.RecordPayment"

	if err := s.repo.UpdatePaymentInfo(ctx, id, userUID, info); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(userUID)
	return nil
}

// SetTxnHash записывает подписке хэш блокчейн-транзакции и сбрасывает кеш.
func (s *Service) SetTxnHash(ctx context.Context, id int, userUID, txnHash string) error {
	const op = "services.subscription.SetTxnHash"

	if err := s.repo.SetTxnHash(ctx, id, userUID, txnHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(userUID)
	return nil
}

func (s *Service) invalidate(userUID string) {
	if err := s.cache.Invalidate(cacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate subscriptions cache", sl.Err(err))
	}
}
