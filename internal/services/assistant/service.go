package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geniepay/geniepay/internal/models"
)

// Service связывает интерпретатор и диспетчер: строит сводку подписок
// пользователя, разбирает команду и исполняет распознанное действие.
type Service struct {
	parser     *Parser
	dispatcher *Dispatcher
	subs       SubscriptionService
	log        *slog.Logger
}

// NewService создает новый сервис ассистента.
func NewService(parser *Parser, dispatcher *Dispatcher, subs SubscriptionService, log *slog.Logger) *Service {
	return &Service{parser: parser, dispatcher: dispatcher, subs: subs, log: log}
}

// HandleCommand обрабатывает текстовую команду пользователя от начала до конца.
func (s *Service) HandleCommand(ctx context.Context, userUID string, req models.CommandRequest) (*models.CommandResult, error) {
	const op = "assistant.HandleCommand"

	subs, err := s.subs.List(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	intent, err := s.parser.Parse(ctx, req.Command, req.History, Summary(subs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.dispatcher.Dispatch(ctx, userUID, intent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	commandsTotal.WithLabelValues(result.Action).Inc()
	s.log.Info("assistant command handled",
		slog.String("action", result.Action),
		slog.Int("count", result.Count),
	)
	return result, nil
}
