// internal/trading/executor.go
package trading

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/otori-vision/ovt-client/internal/pricemove"
)

// Simulated market-impact bounds. A completed buy nudges the synthetic NAV
// reference up by 0.1%-0.5%; a completed sell nudges it down by 0.05%-0.2%.
const (
	buyBumpMin  = 0.001
	buyBumpSpan = 0.004

	sellBumpMin  = 0.0005
	sellBumpSpan = 0.0015
)

// Client executes the actual trade against the network. The transport is
// opaque to the executor: it either returns a transaction signature or
// fails with a user-facing reason.
type Client interface {
	BuyOVT(ctx context.Context, amount float64) (string, error)
	SellOVT(ctx context.Context, amount float64) (string, error)
}

// Result is what a completed trade reports back to the caller.
type Result struct {
	Action      Action
	AmountOVT   float64
	TxSignature string
	Message     string
}

// ExecutorConfig wires an Executor's collaborators.
type ExecutorConfig struct {
	Client    Client
	PriceMove *pricemove.Reference
	Journal   *Journal // optional
	OnTrade   func()   // optional, invoked after a completed trade
	Logger    *zap.Logger
}

// Executor runs buy and sell orders and applies their simulated market
// impact to the synthetic NAV reference. Trade failures are surfaced to
// the caller with their original reason and leave the reference untouched.
type Executor struct {
	client    Client
	priceMove *pricemove.Reference
	journal   *Journal
	onTrade   func()
	logger    *zap.Logger
	randFn    func() float64
}

// NewExecutor creates a trade executor.
func NewExecutor(cfg *ExecutorConfig) (*Executor, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, fmt.Errorf("trade client cannot be nil")
	}
	if cfg.PriceMove == nil {
		return nil, fmt.Errorf("price movement reference cannot be nil")
	}

	return &Executor{
		client:    cfg.Client,
		priceMove: cfg.PriceMove,
		journal:   cfg.Journal,
		onTrade:   cfg.OnTrade,
		logger:    cfg.Logger.Named("trade_executor"),
		randFn:    rand.Float64,
	}, nil
}

// Buy purchases amount OVT. On success the synthetic NAV reference gets a
// small positive bump and the NAV refresh callback fires.
func (e *Executor) Buy(ctx context.Context, amount float64) (*Result, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("buy amount must be positive")
	}

	sig, err := e.client.BuyOVT(ctx, amount)
	if err != nil {
		e.logger.Error("Buy order failed", zap.Float64("amount", amount), zap.Error(err))
		e.journalTrade(ActionBuy, amount, "", err)
		return nil, err
	}

	bump := buyBumpMin + e.randFn()*buyBumpSpan
	factor := e.priceMove.Update(bump)

	e.logger.Info("Buy order completed",
		zap.Float64("amount", amount),
		zap.String("tx_signature", sig),
		zap.Float64("nav_bump", bump),
		zap.Float64("nav_factor", factor))

	e.journalTrade(ActionBuy, amount, sig, nil)
	e.notify()

	return &Result{
		Action:      ActionBuy,
		AmountOVT:   amount,
		TxSignature: sig,
		Message:     fmt.Sprintf("Successfully purchased %g OVT!", amount),
	}, nil
}

// Sell sells amount OVT. On success the synthetic NAV reference gets a
// small negative bump and the NAV refresh callback fires.
func (e *Executor) Sell(ctx context.Context, amount float64) (*Result, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("sell amount must be positive")
	}

	sig, err := e.client.SellOVT(ctx, amount)
	if err != nil {
		e.logger.Error("Sell order failed", zap.Float64("amount", amount), zap.Error(err))
		e.journalTrade(ActionSell, amount, "", err)
		return nil, err
	}

	bump := -(sellBumpMin + e.randFn()*sellBumpSpan)
	factor := e.priceMove.Update(bump)

	e.logger.Info("Sell order completed",
		zap.Float64("amount", amount),
		zap.String("tx_signature", sig),
		zap.Float64("nav_bump", bump),
		zap.Float64("nav_factor", factor))

	e.journalTrade(ActionSell, amount, sig, nil)
	e.notify()

	return &Result{
		Action:      ActionSell,
		AmountOVT:   amount,
		TxSignature: sig,
		Message:     fmt.Sprintf("Successfully sold %g OVT!", amount),
	}, nil
}

func (e *Executor) journalTrade(action Action, amount float64, sig string, tradeErr error) {
	if e.journal == nil {
		return
	}

	trade := Trade{
		Action:      action,
		AmountOVT:   amount,
		NAVFactor:   e.priceMove.Get(),
		TxSignature: sig,
		Success:     tradeErr == nil,
	}
	if tradeErr != nil {
		trade.ErrorMsg = tradeErr.Error()
	}

	if err := e.journal.Log(trade); err != nil {
		e.logger.Warn("Failed to journal trade", zap.Error(err))
	}
}

func (e *Executor) notify() {
	if e.onTrade != nil {
		e.onTrade()
	}
}
