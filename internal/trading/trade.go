// internal/trading/trade.go
package trading

import (
	"fmt"
	"time"
)

// Action distinguishes buys from sells.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Trade is one completed (or failed) token trade.
type Trade struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      Action    `json:"action"`
	AmountOVT   float64   `json:"amount_ovt"`
	NAVFactor   float64   `json:"nav_factor"` // synthetic reference after the trade
	TxSignature string    `json:"tx_signature,omitempty"`
	Success     bool      `json:"success"`
	ErrorMsg    string    `json:"error_msg,omitempty"`
}

// ToCSV converts the trade to a CSV record.
func (t *Trade) ToCSV() []string {
	return []string{
		t.ID,
		t.Timestamp.Format(time.RFC3339),
		string(t.Action),
		fmt.Sprintf("%g", t.AmountOVT),
		fmt.Sprintf("%.6f", t.NAVFactor),
		t.TxSignature,
		formatBool(t.Success),
		t.ErrorMsg,
	}
}

// CSVHeaders returns the header row for trade CSV files.
func CSVHeaders() []string {
	return []string{
		"id",
		"timestamp",
		"action",
		"amount_ovt",
		"nav_factor",
		"tx_signature",
		"success",
		"error_msg",
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
