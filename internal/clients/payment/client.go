// Package payment реализует клиент платежного шлюза:
// создание платежного ордера и проверку подписи платежа.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/geniepay/geniepay/internal/config"
)

// ErrNotConfigured возвращается, когда учетные данные шлюза не заданы.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// Order платежный ордер, созданный шлюзом.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Client клиент платежного шлюза.
type Client struct {
	cfg        config.PaymentGateway
	httpClient *http.Client
}

// NewClient создает новый клиент платежного шлюза.
func NewClient(cfg config.PaymentGateway) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled сообщает, заданы ли учетные данные шлюза.
func (c *Client) Enabled() bool {
	return c.cfg.KeyID != "" && c.cfg.KeySecret != ""
}

// KeyID возвращает публичный идентификатор ключа для клиентской стороны.
func (c *Client) KeyID() string {
	return c.cfg.KeyID
}

// CreateOrder создает платежный ордер. Сумма передается в рупиях
// и переводится в пайсы.
func (c *Client) CreateOrder(ctx context.Context, amount float64, receipt string) (*Order, error) {
	const op = "payment.CreateOrder"

	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	body, err := json.Marshal(orderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// VerifySignature проверяет подпись платежа: HMAC-SHA256
// от строки "orderID|paymentID" с секретным ключом шлюза.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.cfg.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
