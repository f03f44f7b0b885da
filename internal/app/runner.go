// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/otori-vision/ovt-client/internal/config"
	"github.com/otori-vision/ovt-client/internal/events"
	"github.com/otori-vision/ovt-client/internal/logger"
	"github.com/otori-vision/ovt-client/internal/nav"
	"github.com/otori-vision/ovt-client/internal/prefs"
	"github.com/otori-vision/ovt-client/internal/pricemove"
	"github.com/otori-vision/ovt-client/internal/sources"
	"github.com/otori-vision/ovt-client/internal/trading"
)

const (
	eventBufferSize  = 64
	journalRingSize  = 1000
	shutdownDeadline = 5 * time.Second
)

// Runner owns the whole client: configuration, sources, aggregator,
// poller, trade executor and event bus. The embedding surface (a UI, a
// control API) talks to it through the exported accessors.
type Runner struct {
	logger *logger.Logger
	log    *zap.Logger
	cfg    *config.Config

	prefsStore *prefs.Store
	priceRef   *pricemove.Reference
	priceFeed  *sources.PriceFeed
	aggregator *nav.Aggregator
	poller     *nav.Poller
	journal    *trading.Journal
	executor   *trading.Executor
	bus        *events.Bus

	shutdownCh chan os.Signal
}

// NewRunner creates an empty runner; call Initialize before Run.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{
		logger:     log,
		log:        log.WithComponent("runner"),
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Initialize loads the configuration and wires every component.
func (r *Runner) Initialize(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.cfg = cfg

	zl := r.logger.Logger
	fetchTimeout := time.Duration(cfg.FetchTimeout) * time.Second

	r.prefsStore = prefs.NewStore(cfg.PrefsFile, zl)
	r.priceRef = pricemove.New(zl)

	runeClient, err := sources.NewRuneClient(&sources.RuneClientConfig{
		BaseURL:  cfg.RuneAPIURL,
		RuneID:   cfg.RuneID,
		Timeout:  fetchTimeout,
		MaxTries: uint(cfg.Retries) + 1,
		Logger:   zl,
	})
	if err != nil {
		return fmt.Errorf("failed to create rune client: %w", err)
	}

	archClient, err := sources.NewArchClient(&sources.ArchClientConfig{
		BaseURL:  cfg.ArchAPIURL,
		Timeout:  fetchTimeout,
		MaxTries: uint(cfg.Retries) + 1,
		Logger:   zl,
	})
	if err != nil {
		return fmt.Errorf("failed to create arch client: %w", err)
	}

	var btcSource sources.BitcoinPriceSource = sources.StaticPrice(cfg.FallbackBTCPrice)
	if cfg.BTCPriceURL != "" {
		r.priceFeed = sources.NewPriceFeed(&sources.PriceFeedConfig{
			URL:           cfg.BTCPriceURL,
			Interval:      time.Duration(cfg.PriceInterval) * time.Second,
			FallbackPrice: cfg.FallbackBTCPrice,
			Timeout:       fetchTimeout,
			MaxTries:      uint(cfg.Retries) + 1,
			Logger:        zl,
		})
		btcSource = r.priceFeed
	}

	r.aggregator, err = nav.NewAggregator(&nav.AggregatorConfig{
		Distribution: runeClient,
		Valuation:    archClient,
		BTCPrice:     btcSource,
		Prefs:        r.prefsStore,
		PriceMove:    r.priceRef,
		Logger:       zl,
		FetchTimeout: fetchTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}

	r.poller = nav.NewPoller(r.aggregator,
		time.Duration(cfg.PollInterval)*time.Second, zl)

	r.journal, err = trading.NewJournal(cfg.TradeLogDir, journalRingSize, zl)
	if err != nil {
		return fmt.Errorf("failed to create trade journal: %w", err)
	}

	tradeClient, err := r.buildTradeClient()
	if err != nil {
		return err
	}

	r.executor, err = trading.NewExecutor(&trading.ExecutorConfig{
		Client:    tradeClient,
		PriceMove: r.priceRef,
		Journal:   r.journal,
		OnTrade:   r.afterTrade,
		Logger:    zl,
	})
	if err != nil {
		return fmt.Errorf("failed to create trade executor: %w", err)
	}

	r.bus = events.NewBus(zl, eventBufferSize)
	r.bus.Subscribe(events.CurrencyChanged,
		events.NewCurrencySyncHandler(r.aggregator, zl))

	return nil
}

func (r *Runner) buildTradeClient() (trading.Client, error) {
	if r.cfg.SimulateTrades {
		r.log.Info("Trade simulation enabled, orders will not reach the network")
		return trading.NewSimulatedClient(0), nil
	}

	client, err := trading.NewHTTPClient(&trading.HTTPClientConfig{
		BaseURL: r.cfg.ArchAPIURL,
		Timeout: time.Duration(r.cfg.FetchTimeout) * time.Second,
		Logger:  r.logger.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create trade client: %w", err)
	}
	return client, nil
}

// afterTrade refreshes the snapshot so a completed order is reflected
// immediately instead of waiting for the next poll tick.
func (r *Runner) afterTrade() {
	go func() {
		opLog := r.logger.WithOperation("post_trade_refresh")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		r.aggregator.FetchNAV(ctx)

		snap := r.aggregator.Snapshot()
		opLog.Debug("Snapshot refreshed after trade",
			zap.Int64("total_value_sats", snap.TotalValueSats))

		if err := r.bus.Publish(events.NAVUpdatedEvent{
			BaseEvent: events.BaseEvent{
				EventType: events.NAVUpdated,
				EventTime: time.Now(),
			},
			TotalValueSats: snap.TotalValueSats,
		}); err != nil {
			opLog.Warn("Failed to publish NAV update", zap.Error(err))
		}
	}()
}

// Buy executes a buy order and announces the outcome on the event bus.
func (r *Runner) Buy(ctx context.Context, amount float64) (*trading.Result, error) {
	res, err := r.executor.Buy(ctx, amount)
	r.publishTradeOutcome(trading.ActionBuy, amount, res, err)
	return res, err
}

// Sell executes a sell order and announces the outcome on the event bus.
func (r *Runner) Sell(ctx context.Context, amount float64) (*trading.Result, error) {
	res, err := r.executor.Sell(ctx, amount)
	r.publishTradeOutcome(trading.ActionSell, amount, res, err)
	return res, err
}

func (r *Runner) publishTradeOutcome(action trading.Action, amount float64, res *trading.Result, tradeErr error) {
	var event events.Event
	if tradeErr != nil {
		event = events.TradeFailedEvent{
			BaseEvent: events.BaseEvent{
				EventType: events.TradeFailed,
				EventTime: time.Now(),
			},
			Action: string(action),
			Reason: tradeErr.Error(),
		}
	} else {
		event = events.TradeCompletedEvent{
			BaseEvent: events.BaseEvent{
				EventType: events.TradeCompleted,
				EventTime: time.Now(),
			},
			Action:    string(action),
			AmountOVT: amount,
			Message:   res.Message,
		}
	}

	if err := r.bus.Publish(event); err != nil {
		r.log.Warn("Failed to publish trade outcome", zap.Error(err))
	}
}

// Run starts the background refreshers and blocks until a shutdown signal
// or context cancellation.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	r.log.Info("Starting OVT client",
		zap.String("rune_id", r.cfg.RuneID),
		zap.Int("poll_interval_s", r.cfg.PollInterval),
		zap.String("currency", string(r.aggregator.BaseCurrency())))

	if r.priceFeed != nil {
		r.priceFeed.Start()
	}
	r.poller.Start()

	select {
	case sig := <-r.shutdownCh:
		r.log.Info("Signal received: " + sig.String())
	case <-ctx.Done():
		r.log.Info("Context cancelled")
	}

	r.Shutdown()
	return nil
}

// ChangeCurrency publishes a currency selection onto the bus. The
// aggregator picks it up through the sync subscription, so every consumer
// observes the change the same way.
func (r *Runner) ChangeCurrency(ctx context.Context, cur prefs.Currency) error {
	if !cur.Valid() {
		return fmt.Errorf("unknown currency: %q", cur)
	}
	return r.bus.PublishSync(ctx, events.NewCurrencyChangedEvent(cur))
}

// Aggregator exposes the NAV state owner to the embedding surface.
func (r *Runner) Aggregator() *nav.Aggregator {
	return r.aggregator
}

// Executor exposes the trade executor to the embedding surface.
func (r *Runner) Executor() *trading.Executor {
	return r.executor
}

// Journal exposes the trade journal to the embedding surface.
func (r *Runner) Journal() *trading.Journal {
	return r.journal
}

// Shutdown stops the refreshers and flushes everything in order.
func (r *Runner) Shutdown() {
	r.log.Info("OVT client shutting down")

	r.poller.Stop()
	if r.priceFeed != nil {
		r.priceFeed.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	if err := r.bus.Shutdown(ctx); err != nil {
		r.log.Warn("Event bus shutdown incomplete", zap.Error(err))
	}

	if err := r.journal.Close(); err != nil {
		r.logger.LogError("Failed to close trade journal", err)
	}

	if err := r.logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}
