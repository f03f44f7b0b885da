// internal/nav/types.go
package nav

import (
	"github.com/otori-vision/ovt-client/internal/sources"
)

// PortfolioPosition is one backing asset in a published snapshot. Monetary
// fields are denominated in satoshis. Current mirrors Value at all times:
// every writer updates both together.
type PortfolioPosition struct {
	Name          string  `json:"name"`
	Value         int64   `json:"value"`
	Current       int64   `json:"current"`
	Change        float64 `json:"change"`
	Description   string  `json:"description"`
	TokenAmount   int64   `json:"tokenAmount"`
	PricePerToken int64   `json:"pricePerToken"`
	Address       string  `json:"address"`
}

// TokenDistribution is the supply split of the fund rune at snapshot time.
// LPHeld is a distinct category and is never netted into Distributed or
// Treasury.
type TokenDistribution struct {
	TotalSupply        int64                       `json:"totalSupply"`
	Distributed        int64                       `json:"distributed"`
	Treasury           int64                       `json:"treasury"`
	LPHeld             int64                       `json:"lpHeld"`
	PercentDistributed float64                     `json:"percentDistributed"`
	PercentInLP        float64                     `json:"percentInLP"`
	RuneID             string                      `json:"runeId"`
	RuneSymbol         string                      `json:"runeSymbol"`
	DistributionEvents []sources.DistributionEvent `json:"distributionEvents"`
}

// ChangePeriod carries the signed percentage deltas shown next to the NAV.
type ChangePeriod struct {
	OVT float64 `json:"ovt"`
	USD float64 `json:"usd"`
}

// Snapshot is one immutable, internally consistent view of the fund. All
// fields originate from the same fetch: consumers never observe new
// distribution stats paired with a stale portfolio value.
type Snapshot struct {
	TotalValueSats    int64               `json:"totalValueSats"`
	PortfolioItems    []PortfolioPosition `json:"portfolioItems"`
	TokenDistribution TokenDistribution   `json:"tokenDistribution"`
	ChangePeriod      ChangePeriod        `json:"changePeriod"`
}

// clone returns a deep copy so published state cannot be mutated through a
// returned snapshot.
func (s Snapshot) clone() Snapshot {
	out := s
	if s.PortfolioItems != nil {
		out.PortfolioItems = make([]PortfolioPosition, len(s.PortfolioItems))
		copy(out.PortfolioItems, s.PortfolioItems)
	}
	if s.TokenDistribution.DistributionEvents != nil {
		events := make([]sources.DistributionEvent, len(s.TokenDistribution.DistributionEvents))
		copy(events, s.TokenDistribution.DistributionEvents)
		out.TokenDistribution.DistributionEvents = events
	}
	return out
}
