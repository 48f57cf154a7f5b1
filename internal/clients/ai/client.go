// Package ai реализует клиент внешнего сервиса текстовой генерации
// (chat completions API). Клиент отправляет подготовленный набор сообщений
// и возвращает текст ответа модели как есть.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geniepay/geniepay/internal/config"
	"github.com/geniepay/geniepay/internal/models"
)

// ErrUnavailable возвращается, когда сервис генерации не настроен
// или вызов завершился неудачей. Команда целиком считается невыполненной.
var ErrUnavailable = errors.New("ai provider unavailable")

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client клиент chat completions API.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создает новый клиент сервиса генерации.
func NewClient(cfg config.AIProvider) *Client {
	return &Client{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled сообщает, задан ли API-ключ провайдера.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Generate отправляет сообщения модели и возвращает сырой текст ответа.
func (c *Client) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	const op = "ai.Generate"
	if !c.Enabled() {
		return "", fmt.Errorf("%s: %w: api key is not set", op, ErrUnavailable)
	}

	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    reqMessages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %w: unexpected status %s", op, ErrUnavailable, resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w: empty choices", op, ErrUnavailable)
	}

	return chatResp.Choices[0].Message.Content, nil
}
