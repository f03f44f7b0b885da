// internal/nav/aggregator.go
package nav

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/otori-vision/ovt-client/internal/prefs"
	"github.com/otori-vision/ovt-client/internal/pricemove"
	"github.com/otori-vision/ovt-client/internal/sources"
)

// User-facing error messages. Raw source errors are logged but never
// published to consumers.
const (
	ErrMsgPortfolioData = "Failed to fetch portfolio data"
	ErrMsgNAVData       = "Failed to fetch NAV data"
)

const defaultFetchTimeout = 30 * time.Second

// AggregatorConfig wires an Aggregator's collaborators.
type AggregatorConfig struct {
	Distribution sources.TokenDistributionSource
	Valuation    sources.PortfolioValuationSource
	BTCPrice     sources.BitcoinPriceSource
	Prefs        *prefs.Store
	PriceMove    *pricemove.Reference
	Logger       *zap.Logger
	FetchTimeout time.Duration
}

// Aggregator merges the distribution and valuation sources into one
// coherent NAV snapshot. It owns the published snapshot, the loading and
// error flags, and the active display currency. All reads and writes of
// published state go through one mutex, so a snapshot is observed either
// entirely before or entirely after a fetch, never mid-merge.
type Aggregator struct {
	distribution sources.TokenDistributionSource
	valuation    sources.PortfolioValuationSource
	btcPrice     sources.BitcoinPriceSource
	prefs        *prefs.Store
	priceMove    *pricemove.Reference
	fetchTimeout time.Duration
	logger       *zap.Logger

	mu             sync.RWMutex
	snapshot       Snapshot
	positions      []PortfolioPosition
	positionsValid bool
	loading        bool
	errMsg         string
	baseCurrency   prefs.Currency
}

// NewAggregator creates an aggregator. The initial display currency is read
// from the preference store.
func NewAggregator(cfg *AggregatorConfig) (*Aggregator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("aggregator config cannot be nil")
	}
	if cfg.Distribution == nil {
		return nil, fmt.Errorf("distribution source cannot be nil")
	}
	if cfg.Valuation == nil {
		return nil, fmt.Errorf("valuation source cannot be nil")
	}
	if cfg.BTCPrice == nil {
		return nil, fmt.Errorf("bitcoin price source cannot be nil")
	}
	if cfg.Prefs == nil {
		return nil, fmt.Errorf("preference store cannot be nil")
	}
	if cfg.PriceMove == nil {
		return nil, fmt.Errorf("price movement reference cannot be nil")
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &Aggregator{
		distribution:   cfg.Distribution,
		valuation:      cfg.Valuation,
		btcPrice:       cfg.BTCPrice,
		prefs:          cfg.Prefs,
		priceMove:      cfg.PriceMove,
		fetchTimeout:   timeout,
		logger:         cfg.Logger.Named("nav_aggregator"),
		positionsValid: true,
		baseCurrency:   cfg.Prefs.Get(),
	}, nil
}

// FetchNAV refreshes the published snapshot from both sources. Source
// requests run concurrently; a failure on either side leaves the previous
// snapshot intact and records a user-facing message instead. Errors are
// reported through Err, not returned.
func (a *Aggregator) FetchNAV(ctx context.Context) {
	a.mu.Lock()
	a.loading = true
	a.errMsg = ""
	valid := a.positionsValid
	injected := make([]PortfolioPosition, len(a.positions))
	copy(injected, a.positions)
	a.mu.Unlock()

	if !valid {
		a.logger.Warn("Portfolio positions are in an invalid state, failing fetch")
		a.fail(ErrMsgPortfolioData)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	var (
		stats    *sources.DistributionStats
		runeInfo *sources.RuneInfo
		navRes   *sources.NAVResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := a.distribution.GetDistributionStats(gctx)
		if err != nil {
			return err
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		info, err := a.distribution.GetRuneInfo(gctx)
		if err != nil {
			return err
		}
		runeInfo = info
		return nil
	})
	g.Go(func() error {
		nav, err := a.valuation.GetCurrentNAV(gctx)
		if err != nil {
			return err
		}
		navRes = nav
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("NAV fetch failed, retaining previous snapshot", zap.Error(err))
		a.fail(ErrMsgNAVData)
		return
	}

	snapshot := a.merge(stats, runeInfo, navRes, injected)

	a.mu.Lock()
	a.snapshot = snapshot
	a.loading = false
	a.errMsg = ""
	a.mu.Unlock()

	a.logger.Debug("Published NAV snapshot",
		zap.Int64("total_value_sats", snapshot.TotalValueSats),
		zap.Int("portfolio_items", len(snapshot.PortfolioItems)),
		zap.Float64("percent_distributed", snapshot.TokenDistribution.PercentDistributed))
}

// merge builds a snapshot from one fetch's source results. Injected
// positions, when present, take precedence over the valuation source's
// items; either way each mark is adjusted by the synthetic price reference
// and Current is kept equal to Value.
func (a *Aggregator) merge(stats *sources.DistributionStats, runeInfo *sources.RuneInfo, navRes *sources.NAVResult, injected []PortfolioPosition) Snapshot {
	base := injected
	if len(base) == 0 {
		base = make([]PortfolioPosition, len(navRes.PortfolioItems))
		for i, item := range navRes.PortfolioItems {
			base[i] = PortfolioPosition{
				Name:          item.Name,
				Value:         item.Value,
				Current:       item.Value,
				Change:        item.Change,
				Description:   item.Description,
				TokenAmount:   item.TokenAmount,
				PricePerToken: item.PricePerToken,
				Address:       item.Address,
			}
		}
	}

	factor := a.priceMove.Get()

	var totalValue int64
	var weightedChange float64
	items := make([]PortfolioPosition, len(base))
	for i, pos := range base {
		adjusted := int64(math.Round(float64(pos.Value) * factor))
		pos.Value = adjusted
		pos.Current = adjusted
		items[i] = pos
		totalValue += adjusted
		weightedChange += pos.Change * float64(adjusted)
	}

	change := 0.0
	if totalValue > 0 {
		change = weightedChange / float64(totalValue)
	}

	dist := TokenDistribution{
		TotalSupply:        stats.TotalSupply,
		Distributed:        stats.Distributed,
		Treasury:           stats.TreasuryHeld,
		LPHeld:             stats.LPHeld,
		PercentInLP:        stats.PercentInLP,
		RuneID:             runeInfo.ID,
		RuneSymbol:         runeInfo.Symbol,
		DistributionEvents: stats.DistributionEvents,
	}
	// Never trust a stale upstream percentage.
	if stats.TotalSupply > 0 {
		dist.PercentDistributed = float64(stats.Distributed) / float64(stats.TotalSupply) * 100
	}

	return Snapshot{
		TotalValueSats:    totalValue,
		PortfolioItems:    items,
		TokenDistribution: dist,
		ChangePeriod:      ChangePeriod{OVT: change, USD: change},
	}
}

// fail records a user-facing error while keeping the previous snapshot.
func (a *Aggregator) fail(msg string) {
	a.mu.Lock()
	a.loading = false
	a.errMsg = msg
	a.mu.Unlock()
}

// SetPortfolioPositions replaces the portfolio list directly, bypassing the
// valuation source. Passing nil marks the portfolio state invalid: the next
// fetch or revalidation fails with ErrMsgPortfolioData. Does not trigger a
// fetch.
func (a *Aggregator) SetPortfolioPositions(positions []PortfolioPosition) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if positions == nil {
		a.positions = nil
		a.positionsValid = false
		return
	}

	a.positions = make([]PortfolioPosition, len(positions))
	for i, pos := range positions {
		pos.Current = pos.Value
		a.positions[i] = pos
	}
	a.positionsValid = true
}

// PortfolioPositions returns a copy of the injected position list.
func (a *Aggregator) PortfolioPositions() []PortfolioPosition {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]PortfolioPosition, len(a.positions))
	copy(out, a.positions)
	return out
}

// HandleCurrencyChange switches the display currency and persists the
// choice. Setting the active currency again is a no-op for persistence.
// The call is synchronous and also revalidates the portfolio state, so an
// injected fault surfaces immediately.
func (a *Aggregator) HandleCurrencyChange(next prefs.Currency) {
	if !next.Valid() {
		a.logger.Warn("Ignoring unknown currency", zap.String("currency", string(next)))
		return
	}

	a.mu.Lock()
	changed := a.baseCurrency != next
	a.baseCurrency = next
	if !a.positionsValid {
		a.errMsg = ErrMsgPortfolioData
	}
	a.mu.Unlock()

	if changed {
		a.prefs.Set(next)
		a.logger.Info("Display currency changed", zap.String("currency", string(next)))
	}
}

// SetBaseCurrency is an alias for HandleCurrencyChange kept for callers
// wired through the currency-change event path.
func (a *Aggregator) SetBaseCurrency(next prefs.Currency) {
	a.HandleCurrencyChange(next)
}

// BaseCurrency returns the active display currency.
func (a *Aggregator) BaseCurrency() prefs.Currency {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.baseCurrency
}

// Snapshot returns a deep copy of the latest published snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.clone()
}

// IsLoading reports whether a fetch is in flight.
func (a *Aggregator) IsLoading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Err returns the current user-facing error message, or "" when healthy.
func (a *Aggregator) Err() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.errMsg
}

// BTCPrice returns the latest BTC/USD reading from the price source.
func (a *Aggregator) BTCPrice() sources.BTCPrice {
	return a.btcPrice.Price()
}

// FormatValue renders a satoshi amount under the active currency and the
// latest BTC/USD rate. No result is cached: a rate change is reflected on
// the next call.
func (a *Aggregator) FormatValue(sats int64) string {
	return FormatValue(sats, a.BaseCurrency(), a.btcPrice.Price().Price)
}
