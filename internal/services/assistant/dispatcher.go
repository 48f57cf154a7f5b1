package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/storage/repository"
)

const (
	defaultRenewalPeriod = 30 * 24 * time.Hour
	defaultAnalyticsTop  = 5
)

// SubscriptionService описывает операции над подписками,
// которые нужны для исполнения команд.
type SubscriptionService interface {
	List(ctx context.Context, userUID string) ([]*models.Subscription, error)
	ListByStatus(ctx context.Context, userUID, status string) ([]*models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) (int, error)
	FindByName(ctx context.Context, userUID, name string) (*models.Subscription, error)
	UpdateStatus(ctx context.Context, id int, userUID, status string) error
	Remove(ctx context.Context, id int, userUID string) error
}

type handlerFunc func(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error)

// Dispatcher исполняет распознанное намерение через таблицу обработчиков.
// Обработчики не держат состояния: все данные живут в хранилище подписок.
type Dispatcher struct {
	subs     SubscriptionService
	handlers map[string]handlerFunc
}

// NewDispatcher создает новый диспетчер команд.
func NewDispatcher(subs SubscriptionService) *Dispatcher {
	d := &Dispatcher{subs: subs}
	d.handlers = map[string]handlerFunc{
		models.ActionAdd:           d.handleAdd,
		models.ActionBulkAdd:       d.handleBulkAdd,
		models.ActionDelete:        d.handleDelete,
		models.ActionPause:         d.handlePause,
		models.ActionResume:        d.handleResume,
		models.ActionList:          d.handleList,
		models.ActionAnalytics:     d.handleAnalytics,
		models.ActionBulk:          d.handleBulk,
		models.ActionClarification: d.handlePassthrough,
		models.ActionInfo:          d.handlePassthrough,
	}
	return d
}

// Dispatch исполняет намерение от имени пользователя.
// Неизвестное действие трактуется как info с ответом интерпретатора.
func (d *Dispatcher) Dispatch(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	handler, ok := d.handlers[intent.Action]
	if !ok {
		return &models.CommandResult{Action: models.ActionInfo, Response: intent.Response}, nil
	}
	return handler(ctx, userUID, intent)
}

func (d *Dispatcher) handleAdd(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	const op = "assistant.handleAdd"

	if intent.ServiceName == "" || intent.Price <= 0 {
		return &models.CommandResult{
			Action:   models.ActionAdd,
			Response: "I need both a service name and a price to add a subscription.",
		}, nil
	}

	sub := models.Subscription{
		UserUID:     userUID,
		ServiceName: intent.ServiceName,
		Price:       intent.Price,
		RenewalDate: time.Now().Add(defaultRenewalPeriod),
		Status:      models.StatusActive,
	}
	if _, err := d.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.CommandResult{
		Action:   models.ActionAdd,
		Response: respond(intent, fmt.Sprintf("Added %s for ₹%g per month.", intent.ServiceName, intent.Price)),
		Count:    1,
	}, nil
}

func (d *Dispatcher) handleBulkAdd(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	const op = "assistant.handleBulkAdd"

	var added []string
	for _, item := range intent.Subscriptions {
		if item.Name == "" || item.Price <= 0 {
			continue
		}
		sub := models.Subscription{
			UserUID:     userUID,
			ServiceName: item.Name,
			Price:       item.Price,
			RenewalDate: time.Now().Add(defaultRenewalPeriod),
			Status:      models.StatusActive,
		}
		if _, err := d.subs.Create(ctx, sub); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		added = append(added, item.Name)
	}

	if len(added) == 0 {
		return &models.CommandResult{
			Action:   models.ActionBulkAdd,
			Response: "I couldn't find any subscriptions to add in your request.",
		}, nil
	}
	return &models.CommandResult{
		Action:   models.ActionBulkAdd,
		Response: respond(intent, fmt.Sprintf("Added %d subscriptions: %s.", len(added), strings.Join(added, ", "))),
		Count:    len(added),
	}, nil
}

func (d *Dispatcher) handleDelete(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	const op = "assistant.handleDelete"

	sub, result, err := d.lookupByName(ctx, userUID, intent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if result != nil {
		return result, nil
	}
	if err := d.subs.Remove(ctx, sub.ID, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CommandResult{
		Action:   models.ActionDelete,
		Response: respond(intent, fmt.Sprintf("Deleted your %s subscription.", sub.ServiceName)),
		Count:    1,
	}, nil
}

func (d *Dispatcher) handlePause(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	return d.setStatusByName(ctx, userUID, intent, models.ActionPause, models.StatusPaused, "Paused")
}

func (d *Dispatcher) handleResume(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	return d.setStatusByName(ctx, userUID, intent, models.ActionResume, models.StatusActive, "Resumed")
}

func (d *Dispatcher) setStatusByName(ctx context.Context, userUID string, intent *models.Intent,
	action, status, verb string) (*models.CommandResult, error) {
	const op = "assistant.setStatusByName"

	sub, result, err := d.lookupByName(ctx, userUID, intent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if result != nil {
		result.Action = action
		return result, nil
	}
	if err := d.subs.UpdateStatus(ctx, sub.ID, userUID, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CommandResult{
		Action:   action,
		Response: respond(intent, fmt.Sprintf("%s your %s subscription.", verb, sub.ServiceName)),
		Count:    1,
	}, nil
}

// lookupByName ищет подписку по названию из намерения. Второй результат
// не nil, когда искать нечего или совпадений нет: это ответ пользователю,
// а не ошибка, и хранилище при этом не изменяется.
func (d *Dispatcher) lookupByName(ctx context.Context, userUID string, intent *models.Intent) (*models.Subscription, *models.CommandResult, error) {
	if intent.ServiceName == "" {
		return nil, &models.CommandResult{
			Action:   intent.Action,
			Response: "Please tell me which subscription you mean.",
		}, nil
	}
	sub, err := d.subs.FindByName(ctx, userUID, intent.ServiceName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &models.CommandResult{
				Action:   intent.Action,
				Response: fmt.Sprintf("I couldn't find a subscription matching %q.", intent.ServiceName),
			}, nil
		}
		return nil, nil, err
	}
	return sub, nil, nil
}

func (d *Dispatcher) handleList(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	const op = "assistant.handleList"

	subs, err := d.selectByFilter(ctx, userUID, intent.Filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.CommandResult{
		Action:        models.ActionList,
		Response:      respond(intent, fmt.Sprintf("You have %d subscriptions.", len(subs))),
		Subscriptions: subs,
		TotalSpending: models.ActiveTotal(subs),
		Count:         len(subs),
	}, nil
}

func (d *Dispatcher) handleAnalytics(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	const op = "assistant.handleAnalytics"

	subs, err := d.selectByFilter(ctx, userUID, intent.Filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if intent.AnalyticsType == "total" {
		total := models.ActiveTotal(subs)
		return &models.CommandResult{
			Action:        models.ActionAnalytics,
			Response:      respond(intent, fmt.Sprintf("You have %d subscriptions, ₹%g per month on active ones.", len(subs), total)),
			TotalSpending: total,
			Count:         len(subs),
		}, nil
	}

	ascending := intent.AnalyticsType == "lowest" || intent.AnalyticsType == "cheapest"
	sort.SliceStable(subs, func(i, j int) bool {
		if ascending {
			return subs[i].Price < subs[j].Price
		}
		return subs[i].Price > subs[j].Price
	})

	limit := intent.Limit
	if limit <= 0 {
		limit = defaultAnalyticsTop
	}
	if limit > len(subs) {
		limit = len(subs)
	}
	subset := subs[:limit]

	if intent.BulkAction != "" {
		affected, err := d.applyBulk(ctx, userUID, subset, intent.BulkAction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &models.CommandResult{
			Action:        models.ActionAnalytics,
			Response:      respond(intent, bulkMessage(intent.BulkAction, affected)),
			Subscriptions: subset,
			Count:         len(affected),
		}, nil
	}

	return &models.CommandResult{
		Action:        models.ActionAnalytics,
		Response:      respond(intent, fmt.Sprintf("Here are %d subscriptions by price.", len(subset))),
		Subscriptions: subset,
		Count:         len(subset),
	}, nil
}

func (d *Dispatcher) handleBulk(ctx context.Context, userUID string, intent *models.Intent) (*models.CommandResult, error) {
	const op = "assistant.handleBulk"

	var targets []*models.Subscription
	if intent.ServiceNames != "" {
		for _, name := range strings.Split(intent.ServiceNames, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			sub, err := d.subs.FindByName(ctx, userUID, name)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			targets = append(targets, sub)
		}
	} else {
		var err error
		targets, err = d.selectByFilter(ctx, userUID, intent.Filter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	affected, err := d.applyBulk(ctx, userUID, targets, intent.BulkAction)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CommandResult{
		Action:   models.ActionBulk,
		Response: respond(intent, bulkMessage(intent.BulkAction, affected)),
		Count:    len(affected),
	}, nil
}

func (d *Dispatcher) handlePassthrough(_ context.Context, _ string, intent *models.Intent) (*models.CommandResult, error) {
	return &models.CommandResult{Action: intent.Action, Response: intent.Response}, nil
}

// selectByFilter возвращает подписки пользователя по фильтру намерения,
// all или пустой фильтр отдают полный список.
func (d *Dispatcher) selectByFilter(ctx context.Context, userUID, filter string) ([]*models.Subscription, error) {
	if filter == "" || filter == "all" {
		return d.subs.List(ctx, userUID)
	}
	return d.subs.ListByStatus(ctx, userUID, filter)
}

// applyBulk применяет массовое действие к набору подписок.
// pause пропускает уже остановленные, resume трогает только остановленные,
// delete применяется безусловно. Ошибка хранилища прерывает цикл,
// уже выполненные изменения не откатываются.
func (d *Dispatcher) applyBulk(ctx context.Context, userUID string, targets []*models.Subscription, bulkAction string) ([]string, error) {
	const op = "assistant.applyBulk"

	var affected []string
	for _, sub := range targets {
		switch bulkAction {
		case models.ActionPause:
			if sub.Status == models.StatusPaused {
				continue
			}
			if err := d.subs.UpdateStatus(ctx, sub.ID, userUID, models.StatusPaused); err != nil {
				return affected, fmt.Errorf("%s: %w", op, err)
			}
		case models.ActionResume:
			if sub.Status != models.StatusPaused {
				continue
			}
			if err := d.subs.UpdateStatus(ctx, sub.ID, userUID, models.StatusActive); err != nil {
				return affected, fmt.Errorf("%s: %w", op, err)
			}
		case models.ActionDelete:
			if err := d.subs.Remove(ctx, sub.ID, userUID); err != nil {
				return affected, fmt.Errorf("%s: %w", op, err)
			}
		default:
			return affected, fmt.Errorf("%s: unknown bulk action %q", op, bulkAction)
		}
		affected = append(affected, sub.ServiceName)
	}
	return affected, nil
}

func bulkMessage(bulkAction string, affected []string) string {
	verbs := map[string]string{
		models.ActionPause:  "Paused",
		models.ActionResume: "Resumed",
		models.ActionDelete: "Deleted",
	}
	verb, ok := verbs[bulkAction]
	if !ok {
		verb = "Updated"
	}
	if len(affected) == 0 {
		return "No subscriptions matched your request."
	}
	return fmt.Sprintf("%s %d subscriptions: %s.", verb, len(affected), strings.Join(affected, ", "))
}

// respond предпочитает готовый ответ интерпретатора, иначе подставляет свой.
func respond(intent *models.Intent, fallback string) string {
	if intent.Response != "" {
		return intent.Response
	}
	return fallback
}
