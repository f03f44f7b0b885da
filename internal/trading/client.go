// internal/trading/client.go
package trading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTradeTimeout = 30 * time.Second

// HTTPClient submits orders to the fund program's trade endpoint. Orders
// are never retried here: a trade is not idempotent, so a transport error
// is surfaced to the caller as-is.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewHTTPClient creates a trade client for the given program endpoint.
func NewHTTPClient(cfg *HTTPClientConfig) (*HTTPClient, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("trade endpoint URL cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTradeTimeout
	}

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  cfg.Logger.Named("trade_client"),
	}, nil
}

// BuyOVT submits a buy order and returns the transaction signature.
func (c *HTTPClient) BuyOVT(ctx context.Context, amount float64) (string, error) {
	return c.submit(ctx, "buy", amount)
}

// SellOVT submits a sell order and returns the transaction signature.
func (c *HTTPClient) SellOVT(ctx context.Context, amount float64) (string, error) {
	return c.submit(ctx, "sell", amount)
}

type orderRequest struct {
	Amount float64 `json:"amount"`
}

type orderResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

func (c *HTTPClient) submit(ctx context.Context, side string, amount float64) (string, error) {
	body, err := json.Marshal(orderRequest{Amount: amount})
	if err != nil {
		return "", fmt.Errorf("failed to encode order: %w", err)
	}

	url := fmt.Sprintf("%s/trade/%s", c.baseURL, side)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read order response: %w", err)
	}

	var parsed orderResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return "", fmt.Errorf("order rejected: %s", parsed.Error)
		}
		return "", fmt.Errorf("order rejected with status %d", resp.StatusCode)
	}
	if parsed.Signature == "" {
		return "", fmt.Errorf("order response missing signature")
	}

	c.logger.Debug("Order accepted",
		zap.String("side", side),
		zap.Float64("amount", amount),
		zap.String("tx_signature", parsed.Signature))

	return parsed.Signature, nil
}

// SimulatedClient accepts every order and fabricates a signature. Used when
// no trade endpoint is configured, so the rest of the pipeline (journal,
// NAV bump, refresh) still runs end to end.
type SimulatedClient struct {
	delay time.Duration
}

// NewSimulatedClient creates a client that confirms orders after delay.
func NewSimulatedClient(delay time.Duration) *SimulatedClient {
	return &SimulatedClient{delay: delay}
}

func (c *SimulatedClient) BuyOVT(ctx context.Context, amount float64) (string, error) {
	return c.confirm(ctx)
}

func (c *SimulatedClient) SellOVT(ctx context.Context, amount float64) (string, error) {
	return c.confirm(ctx)
}

func (c *SimulatedClient) confirm(ctx context.Context) (string, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "sim-" + uuid.New().String(), nil
}
