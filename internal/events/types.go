// internal/events/types.go
package events

import (
	"time"

	"github.com/otori-vision/ovt-client/internal/prefs"
)

// EventType represents the type of event.
type EventType string

const (
	// Currency events
	CurrencyChanged EventType = "currency.changed"

	// NAV events
	NAVUpdated EventType = "nav.updated"

	// Trade events
	TradeCompleted EventType = "trade.completed"
	TradeFailed    EventType = "trade.failed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// CurrencyChangedEvent is emitted when the user toggles the display
// currency.
type CurrencyChangedEvent struct {
	BaseEvent
	Currency prefs.Currency
}

// NewCurrencyChangedEvent builds a currency change event.
func NewCurrencyChangedEvent(cur prefs.Currency) CurrencyChangedEvent {
	return CurrencyChangedEvent{
		BaseEvent: BaseEvent{EventType: CurrencyChanged, EventTime: time.Now()},
		Currency:  cur,
	}
}

// NAVUpdatedEvent is emitted after a snapshot publish.
type NAVUpdatedEvent struct {
	BaseEvent
	TotalValueSats int64
}

// TradeCompletedEvent is emitted after a buy or sell settles.
type TradeCompletedEvent struct {
	BaseEvent
	Action    string
	AmountOVT float64
	Message   string
}

// TradeFailedEvent is emitted when a trade is rejected.
type TradeFailedEvent struct {
	BaseEvent
	Action string
	Reason string
}
