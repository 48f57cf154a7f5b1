// Package assistant реализует интерпретатор свободных текстовых команд:
// разбор намерения через внешний сервис генерации и исполнение
// распознанного действия над подписками пользователя.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
)

const historyWindow = 4

// Слова, которые без названия сервиса не дают понять, о какой подписке речь.
var ambiguousWords = map[string]string{
	"pause":    "pause",
	"resume":   "resume",
	"delete":   "delete",
	"cancel":   "cancel",
	"stop":     "stop",
	"activate": "activate",
	"unpause":  "unpause",
	"restart":  "restart",
}

const systemPromptTemplate = `You are an AI assistant for GeniePay, a subscription management system.
User's current subscriptions: %s

Analyze the user's command and return a JSON response with:
{
  "action": "add" | "bulkAdd" | "delete" | "pause" | "resume" | "list" | "analytics" | "bulk" | "clarification" | "info",
  "serviceName": "service name if applicable",
  "price": price as a number if adding a subscription,
  "subscriptions": [{"name": "...", "price": ...}] for bulkAdd,
  "serviceNames": "comma separated names for bulk",
  "filter": "active" | "paused" | "all",
  "analyticsType": "top" | "highest" | "lowest" | "cheapest" | "most-expensive" | "total",
  "limit": number of items for analytics (1 for singular requests, omit otherwise),
  "bulkAction": "pause" | "resume" | "delete",
  "response": "friendly response to user"
}
Return only the JSON object.`

// Provider описывает внешний сервис текстовой генерации.
type Provider interface {
	Generate(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// Parser переводит свободный текст команды в структурированное намерение.
type Parser struct {
	provider Provider
	log      *slog.Logger
}

// NewParser создает новый интерпретатор команд.
func NewParser(provider Provider, log *slog.Logger) *Parser {
	return &Parser{provider: provider, log: log}
}

// Summary собирает текстовую сводку подписок для промпта:
// "Название - ₹цена - статус" через запятую, "None" при пустом списке.
func Summary(subs []*models.Subscription) string {
	if len(subs) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(subs))
	for _, sub := range subs {
		parts = append(parts, fmt.Sprintf("%s - ₹%g - %s", sub.ServiceName, sub.Price, sub.Status))
	}
	return strings.Join(parts, ", ")
}

// Parse разбирает команду пользователя в намерение. Однословные команды
// без объекта превращаются в уточняющий вопрос без обращения к провайдеру.
// Не-JSON ответ провайдера возвращается как намерение info с текстом как есть.
func (p *Parser) Parse(ctx context.Context, command string, history []models.ChatMessage, summary string) (*models.Intent, error) {
	const op = "assistant.Parse"

	if word, ok := ambiguousWords[strings.ToLower(strings.TrimSpace(command))]; ok {
		return &models.Intent{
			Action:   models.ActionClarification,
			Response: fmt.Sprintf("Which subscription would you like to %s? Please tell me the service name.", word),
		}, nil
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, summary),
	})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: command})

	raw, err := p.provider.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(stripFence(raw)), &intent); err != nil {
		p.log.Info("provider response is not structured, passing through as info", sl.Err(err))
		return &models.Intent{Action: models.ActionInfo, Response: raw}, nil
	}
	return &intent, nil
}

// stripFence убирает обрамление fenced code block вокруг ответа провайдера.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
