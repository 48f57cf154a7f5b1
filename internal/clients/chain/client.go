// Package chain реализует вызов методов платежного контракта
// через JSON-RPC блокчейн-ноды. Нода хранит ключ подписи,
// клиент только формирует данные вызова.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/geniepay/geniepay/internal/config"
	"golang.org/x/crypto/sha3"
)

// ErrNotConfigured возвращается, когда подключение к ноде не настроено.
var ErrNotConfigured = errors.New("chain client is not configured")

// Действия платежного контракта.
const (
	ActionPay    = "pay"
	ActionPause  = "pause"
	ActionCancel = "cancel"
)

var contractMethods = map[string]string{
	ActionPay:    "paySubscription(uint256)",
	ActionPause:  "pauseSubscription(uint256)",
	ActionCancel: "cancelSubscription(uint256)",
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type txParams struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value,omitempty"`
}

// Client клиент блокчейн-ноды.
type Client struct {
	cfg        config.Chain
	httpClient *http.Client
}

// NewClient создает новый клиент блокчейн-ноды.
func NewClient(cfg config.Chain) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled сообщает, задано ли подключение к ноде и адрес контракта.
func (c *Client) Enabled() bool {
	return c.cfg.RPCURL != "" && c.cfg.ContractAddress != "" && c.cfg.PrivateKey != ""
}

// ExplorerURL возвращает ссылку на транзакцию в обозревателе блоков.
func (c *Client) ExplorerURL(txHash string) string {
	return c.cfg.ExplorerURL + txHash
}

// Execute вызывает метод контракта для подписки и возвращает хэш транзакции.
// Для действия pay сумма передается как value транзакции.
func (c *Client) Execute(ctx context.Context, action string, subscriptionID int, amount float64) (string, error) {
	const op = "chain.Execute"

	if !c.Enabled() {
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	method, ok := contractMethods[action]
	if !ok {
		return "", fmt.Errorf("%s: unknown action %q", op, action)
	}

	params := txParams{
		To:   c.cfg.ContractAddress,
		Data: encodeCall(method, subscriptionID),
	}
	if action == ActionPay {
		params.Value = toWeiHex(amount)
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_sendTransaction",
		Params:  []any{params},
		ID:      1,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if rpcResp.Error != nil {
		return "", fmt.Errorf("%s: rpc error %d: %s", op, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == "" {
		return "", fmt.Errorf("%s: empty transaction hash", op)
	}

	return rpcResp.Result, nil
}

// encodeCall формирует данные вызова: селектор метода и аргумент uint256.
func encodeCall(method string, subscriptionID int) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(method))
	selector := hash.Sum(nil)[:4]

	arg := make([]byte, 32)
	big.NewInt(int64(subscriptionID)).FillBytes(arg)

	return fmt.Sprintf("0x%x%x", selector, arg)
}

// toWeiHex переводит сумму в wei (18 знаков) в шестнадцатеричной записи.
func toWeiHex(amount float64) string {
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18)).Int(nil)
	return "0x" + wei.Text(16)
}
