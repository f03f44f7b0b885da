// internal/sources/btcprice.go
package sources

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PriceFeedConfig configures the BTC/USD price feed.
type PriceFeedConfig struct {
	URL           string
	Interval      time.Duration
	FallbackPrice float64
	Timeout       time.Duration
	MaxTries      uint
	RetryDelay    time.Duration
	Logger        *zap.Logger
}

// PriceFeed polls a BTC/USD price endpoint on its own cadence and caches
// the latest reading. Until the first successful refresh it reports the
// configured fallback rate with IsLoading set. It implements
// BitcoinPriceSource.
type PriceFeed struct {
	url      string
	interval time.Duration
	client   *httpClient
	logger   *zap.Logger

	mu      sync.RWMutex
	price   float64
	loading bool
	err     error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type priceResponse struct {
	Price float64 `json:"price"`
}

// NewPriceFeed creates a price feed. Start must be called to begin polling.
func NewPriceFeed(cfg *PriceFeedConfig) *PriceFeed {
	logger := cfg.Logger.Named("btc_price")
	ctx, cancel := context.WithCancel(context.Background())

	interval := cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	return &PriceFeed{
		url:      cfg.URL,
		interval: interval,
		client:   newHTTPClient(cfg.Timeout, cfg.MaxTries, cfg.RetryDelay, logger),
		logger:   logger,
		price:    cfg.FallbackPrice,
		loading:  true,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the polling loop. The first refresh runs immediately.
func (f *PriceFeed) Start() {
	f.logger.Info("Starting BTC price feed",
		zap.String("url", f.url),
		zap.Duration("interval", f.interval))

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		f.refresh()

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				f.refresh()
			case <-f.ctx.Done():
				f.logger.Debug("BTC price feed stopped")
				return
			}
		}
	}()
}

// Stop cancels the polling loop and waits for it to exit.
func (f *PriceFeed) Stop() {
	f.cancel()
	f.wg.Wait()
}

// Price returns the latest known BTC/USD reading.
func (f *PriceFeed) Price() BTCPrice {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return BTCPrice{Price: f.price, IsLoading: f.loading, Err: f.err}
}

func (f *PriceFeed) refresh() {
	ctx, cancel := context.WithTimeout(f.ctx, f.interval)
	defer cancel()

	var resp priceResponse
	if err := f.client.getJSON(ctx, f.url, &resp); err != nil {
		f.logger.Warn("BTC price refresh failed", zap.Error(err))
		f.mu.Lock()
		f.loading = false
		f.err = err
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.price = resp.Price
	f.loading = false
	f.err = nil
	f.mu.Unlock()

	f.logger.Debug("BTC price refreshed", zap.Float64("price_usd", resp.Price))
}

// StaticPrice is a BitcoinPriceSource pinned to a fixed rate. Used when no
// price endpoint is configured, and by tests that need a deterministic
// rate.
type StaticPrice float64

// Price returns the pinned rate.
func (p StaticPrice) Price() BTCPrice {
	return BTCPrice{Price: float64(p)}
}
