// internal/pricemove/pricemove.go
package pricemove

import (
	"sync"

	"go.uber.org/zap"
)

// FloorFactor is the lowest value the reference may reach. Sell pressure can
// never push the simulated NAV to zero or below.
const FloorFactor = 0.01

// Reference is the process-wide synthetic NAV drift multiplier. It starts at
// 1.0 and is nudged by completed trades: buys push it up, sells push it down.
// It is read by the NAV aggregator when computing the displayed fund value
// and is never reset by a fetch.
type Reference struct {
	mu     sync.RWMutex
	factor float64
	logger *zap.Logger
}

// New creates a reference initialized to 1.0.
func New(logger *zap.Logger) *Reference {
	return &Reference{
		factor: 1.0,
		logger: logger.Named("pricemove"),
	}
}

// Get returns the current multiplier.
func (r *Reference) Get() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factor
}

// Update multiplies the reference by (1 + deltaFraction) and returns the new
// value. The result is clamped to FloorFactor.
func (r *Reference) Update(deltaFraction float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.factor * (1 + deltaFraction)
	if next < FloorFactor {
		next = FloorFactor
	}
	r.factor = next

	r.logger.Debug("Synthetic NAV reference updated",
		zap.Float64("delta_fraction", deltaFraction),
		zap.Float64("factor", next))

	return next
}

// Reset restores the reference to 1.0. Intended for test harnesses only.
func (r *Reference) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factor = 1.0
}
