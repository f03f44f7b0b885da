// internal/sources/sources.go
package sources

import (
	"context"
	"time"
)

// DistributionEvent is one token movement out of the treasury.
type DistributionEvent struct {
	TxID      string    `json:"txid"`
	Amount    int64     `json:"amount"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
}

// DistributionStats describes how the rune supply is split between the
// treasury, the liquidity pool and external holders. LP-held tokens are a
// distinct category: they are never folded into Distributed or TreasuryHeld.
type DistributionStats struct {
	TotalSupply        int64               `json:"totalSupply"`
	TreasuryHeld       int64               `json:"treasuryHeld"`
	LPHeld             int64               `json:"lpHeld"`
	Distributed        int64               `json:"distributed"`
	PercentDistributed float64             `json:"percentDistributed"`
	PercentInLP        float64             `json:"percentInLP"`
	TreasuryAddresses  []string            `json:"treasuryAddresses"`
	LPAddresses        []string            `json:"lpAddresses"`
	DistributionEvents []DistributionEvent `json:"distributionEvents"`
}

// RuneSupply is the supply block of RuneInfo.
type RuneSupply struct {
	Total              int64   `json:"total"`
	Distributed        int64   `json:"distributed"`
	Treasury           int64   `json:"treasury"`
	PercentDistributed float64 `json:"percentDistributed"`
}

// RuneInfo identifies the fund token and its top-level supply numbers.
type RuneInfo struct {
	ID     string              `json:"id"`
	Symbol string              `json:"symbol"`
	Supply RuneSupply          `json:"supply"`
	Events []DistributionEvent `json:"events"`
}

// PortfolioItem is one backing asset as reported by the valuation source.
// Monetary fields are denominated in satoshis.
type PortfolioItem struct {
	Name          string  `json:"name"`
	Value         int64   `json:"value"`
	Change        float64 `json:"change"`
	Description   string  `json:"description"`
	TokenAmount   int64   `json:"tokenAmount"`
	PricePerToken int64   `json:"pricePerToken"`
	Address       string  `json:"address"`
}

// NAVResult is the valuation source's view of the fund.
type NAVResult struct {
	Value          int64           `json:"value"`
	PortfolioItems []PortfolioItem `json:"portfolioItems"`
}

// TokenDistributionSource reports supply and distribution data for the
// fund's rune.
type TokenDistributionSource interface {
	GetDistributionStats(ctx context.Context) (*DistributionStats, error)
	GetRuneInfo(ctx context.Context) (*RuneInfo, error)
}

// PortfolioValuationSource reports the current NAV and the portfolio
// backing it.
type PortfolioValuationSource interface {
	GetCurrentNAV(ctx context.Context) (*NAVResult, error)
}

// BTCPrice is the latest known BTC/USD reading.
type BTCPrice struct {
	Price     float64
	IsLoading bool
	Err       error
}

// BitcoinPriceSource exposes the current BTC/USD rate, refreshed on its own
// cadence.
type BitcoinPriceSource interface {
	Price() BTCPrice
}
