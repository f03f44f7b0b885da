// internal/sources/arch.go
package sources

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ArchClientConfig configures an ArchClient.
type ArchClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxTries   uint
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// ArchClient talks to the Arch program endpoint that values the fund's
// portfolio. It implements PortfolioValuationSource.
type ArchClient struct {
	baseURL string
	client  *httpClient
	logger  *zap.Logger
}

// NewArchClient creates a portfolio valuation client.
func NewArchClient(cfg *ArchClientConfig) (*ArchClient, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("arch client: base URL is required")
	}

	logger := cfg.Logger.Named("arch_client")
	return &ArchClient{
		baseURL: cfg.BaseURL,
		client:  newHTTPClient(cfg.Timeout, cfg.MaxTries, cfg.RetryDelay, logger),
		logger:  logger,
	}, nil
}

// GetCurrentNAV fetches the fund's current value and the portfolio items
// backing it.
func (c *ArchClient) GetCurrentNAV(ctx context.Context) (*NAVResult, error) {
	url := c.baseURL + "/nav"

	var result NAVResult
	if err := c.client.getJSON(ctx, url, &result); err != nil {
		c.logger.Error("Failed to fetch current NAV", zap.Error(err))
		return nil, fmt.Errorf("current NAV: %w", err)
	}

	c.logger.Debug("Fetched current NAV",
		zap.Int64("value_sats", result.Value),
		zap.Int("portfolio_items", len(result.PortfolioItems)))

	return &result, nil
}
