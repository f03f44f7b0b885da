// internal/nav/poller.go
package nav

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often the aggregator refreshes when the owner
// does not configure a cadence.
const DefaultPollInterval = 60 * time.Second

// Poller drives periodic NAV refreshes. It fetches once on Start and then
// on a fixed interval until Stop. An in-flight fetch at the moment of Stop
// is allowed to complete; its publish is an idempotent overwrite.
type Poller struct {
	agg      *Aggregator
	interval time.Duration
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewPoller creates a poller for the aggregator.
func NewPoller(agg *Aggregator, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		agg:      agg,
		interval: interval,
		logger:   logger.Named("nav_poller"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins polling. The first fetch runs immediately.
func (p *Poller) Start() {
	p.logger.Info("Starting NAV poller", zap.Duration("interval", p.interval))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.agg.FetchNAV(p.ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.agg.FetchNAV(p.ctx)
			case <-p.ctx.Done():
				p.logger.Debug("NAV poller stopped")
				return
			}
		}
	}()
}

// Stop cancels the polling loop and waits for it to exit. No further
// fetches are scheduled after Stop returns.
func (p *Poller) Stop() {
	p.cancel()
	p.wg.Wait()
}
