// internal/trading/journal.go
package trading

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-client/internal/logger"
)

// Statistics summarizes the trades seen by a journal.
type Statistics struct {
	TotalTrades int
	Buys        int
	Sells       int
	VolumeOVT   float64
	SuccessRate float64
}

// Journal records trades to a CSV file and keeps a bounded in-memory tail
// for display.
type Journal struct {
	mu        sync.RWMutex
	csvWriter *logger.SafeCSVWriter
	trades    []Trade
	maxTrades int
	logger    *zap.Logger

	totalTrades      int
	successfulTrades int
	buys             int
	sells            int
	volume           float64
}

// NewJournal creates a trade journal writing under logDir.
func NewJournal(logDir string, maxTrades int, zapLogger *zap.Logger) (*Journal, error) {
	filename := fmt.Sprintf("trades_%s.csv", time.Now().Format("20060102_150405"))
	csvPath := filepath.Join(logDir, "trades", filename)

	csvWriter, err := logger.NewSafeCSVWriter(csvPath, CSVHeaders(), 30*time.Second, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV writer: %w", err)
	}

	j := &Journal{
		csvWriter: csvWriter,
		trades:    make([]Trade, 0, maxTrades),
		maxTrades: maxTrades,
		logger:    zapLogger.Named("trade_journal"),
	}

	j.logger.Info("Trade journal initialized",
		zap.String("csv_file", csvPath),
		zap.Int("max_memory_trades", maxTrades))

	return j, nil
}

// Log records a trade.
func (j *Journal) Log(trade Trade) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now()
	}

	if err := j.csvWriter.WriteRecord(trade.ToCSV()); err != nil {
		j.logger.Error("Failed to write trade to CSV",
			zap.String("trade_id", trade.ID),
			zap.Error(err))
		return fmt.Errorf("failed to write trade: %w", err)
	}

	if len(j.trades) >= j.maxTrades {
		j.trades = j.trades[1:]
	}
	j.trades = append(j.trades, trade)

	j.totalTrades++
	if trade.Success {
		j.successfulTrades++
	}
	switch trade.Action {
	case ActionBuy:
		j.buys++
	case ActionSell:
		j.sells++
	}
	j.volume += trade.AmountOVT

	return nil
}

// Recent returns up to n most recent trades, newest last.
func (j *Journal) Recent(n int) []Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if n <= 0 || n > len(j.trades) {
		n = len(j.trades)
	}
	out := make([]Trade, n)
	copy(out, j.trades[len(j.trades)-n:])
	return out
}

// Stats returns aggregate statistics for all logged trades.
func (j *Journal) Stats() Statistics {
	j.mu.RLock()
	defer j.mu.RUnlock()

	stats := Statistics{
		TotalTrades: j.totalTrades,
		Buys:        j.buys,
		Sells:       j.sells,
		VolumeOVT:   j.volume,
	}
	if j.totalTrades > 0 {
		stats.SuccessRate = float64(j.successfulTrades) / float64(j.totalTrades) * 100
	}
	return stats
}

// Close flushes and closes the underlying CSV file.
func (j *Journal) Close() error {
	return j.csvWriter.Close()
}
