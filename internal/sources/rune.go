// internal/sources/rune.go
package sources

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RuneClientConfig configures a RuneClient.
type RuneClientConfig struct {
	BaseURL    string
	RuneID     string
	Timeout    time.Duration
	MaxTries   uint
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// RuneClient talks to the rune indexer that tracks the fund token's supply
// and distribution. It implements TokenDistributionSource.
type RuneClient struct {
	baseURL string
	runeID  string
	client  *httpClient
	logger  *zap.Logger
}

// NewRuneClient creates a rune indexer client.
func NewRuneClient(cfg *RuneClientConfig) (*RuneClient, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("rune client: base URL is required")
	}
	if cfg.RuneID == "" {
		return nil, fmt.Errorf("rune client: rune id is required")
	}

	logger := cfg.Logger.Named("rune_client")
	return &RuneClient{
		baseURL: cfg.BaseURL,
		runeID:  cfg.RuneID,
		client:  newHTTPClient(cfg.Timeout, cfg.MaxTries, cfg.RetryDelay, logger),
		logger:  logger,
	}, nil
}

// GetDistributionStats fetches the current supply split for the fund rune.
func (c *RuneClient) GetDistributionStats(ctx context.Context) (*DistributionStats, error) {
	url := fmt.Sprintf("%s/rune/%s/distribution", c.baseURL, c.runeID)

	var stats DistributionStats
	if err := c.client.getJSON(ctx, url, &stats); err != nil {
		c.logger.Error("Failed to fetch distribution stats", zap.Error(err))
		return nil, fmt.Errorf("distribution stats: %w", err)
	}

	c.logger.Debug("Fetched distribution stats",
		zap.Int64("total_supply", stats.TotalSupply),
		zap.Int64("distributed", stats.Distributed),
		zap.Int64("lp_held", stats.LPHeld))

	return &stats, nil
}

// GetRuneInfo fetches the rune's identity and top-level supply numbers.
func (c *RuneClient) GetRuneInfo(ctx context.Context) (*RuneInfo, error) {
	url := fmt.Sprintf("%s/rune/%s", c.baseURL, c.runeID)

	var info RuneInfo
	if err := c.client.getJSON(ctx, url, &info); err != nil {
		c.logger.Error("Failed to fetch rune info", zap.Error(err))
		return nil, fmt.Errorf("rune info: %w", err)
	}

	return &info, nil
}
