// Package sms реализует отправку SMS через внешний шлюз.
// Без настроенных учетных данных клиент работает в режиме разработки:
// сообщение пишется в лог и считается доставленным.
package sms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geniepay/geniepay/internal/config"
)

// Client клиент SMS-шлюза.
type Client struct {
	cfg        config.SMSProvider
	log        *slog.Logger
	httpClient *http.Client
}

// NewClient создает новый клиент SMS-шлюза.
func NewClient(cfg config.SMSProvider, log *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled сообщает, заданы ли учетные данные шлюза.
func (c *Client) Enabled() bool {
	return c.cfg.AccountSID != "" && c.cfg.AuthToken != "" && c.cfg.FromNumber != ""
}

// Send отправляет SMS на указанный номер. В режиме разработки
// текст пишется в лог вместо реальной отправки.
func (c *Client) Send(ctx context.Context, to, body string) error {
	const op = "sms.Send"

	if !c.Enabled() {
		c.log.Info("sms provider is not configured, message logged only",
			slog.String("to", to),
			slog.String("body", body),
		)
		return nil
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}
	return nil
}
