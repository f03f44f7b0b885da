// internal/events/sync.go
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/otori-vision/ovt-client/internal/prefs"
)

// CurrencySink is the state owner a currency selection propagates to.
type CurrencySink interface {
	BaseCurrency() prefs.Currency
	SetBaseCurrency(prefs.Currency)
}

// CurrencySyncHandler forwards CurrencyChangedEvents to a sink exactly once
// per change. The propagation is one-directional: the sink never publishes
// back through this handler, and a last-applied guard drops re-deliveries
// of the same value so no feedback loop can form.
type CurrencySyncHandler struct {
	mu          sync.Mutex
	sink        CurrencySink
	lastApplied prefs.Currency
	logger      *zap.Logger
}

// NewCurrencySyncHandler wires a sink to currency change events.
func NewCurrencySyncHandler(sink CurrencySink, logger *zap.Logger) *CurrencySyncHandler {
	return &CurrencySyncHandler{
		sink:   sink,
		logger: logger.Named("currency_sync"),
	}
}

// Handle applies a currency change to the sink if it is new.
func (h *CurrencySyncHandler) Handle(ctx context.Context, event Event) error {
	change, ok := event.(CurrencyChangedEvent)
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if change.Currency == h.lastApplied {
		return nil
	}
	h.lastApplied = change.Currency

	if h.sink.BaseCurrency() != change.Currency {
		h.sink.SetBaseCurrency(change.Currency)
		h.logger.Debug("Currency propagated",
			zap.String("currency", string(change.Currency)))
	}

	return nil
}
