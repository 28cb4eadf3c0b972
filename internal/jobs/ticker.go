package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/sqboom/rewards-engine/internal/autopilot"
	"github.com/sqboom/rewards-engine/internal/stats"
)

// Ticker drives the short-interval in-process work: bot accrual recompute
// and the stats sampler. These run on a plain ticker rather than the queue
// because they are cheap, idempotent, and needed every few seconds.
type Ticker struct {
	autopilot *autopilot.Service
	sampler   *stats.Sampler
	interval  time.Duration
	log       *slog.Logger
}

// NewTicker constructs the recompute ticker.
func NewTicker(autopilotService *autopilot.Service, sampler *stats.Sampler, interval time.Duration, log *slog.Logger) *Ticker {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &Ticker{autopilot: autopilotService, sampler: sampler, interval: interval, log: log}
}

// Run recomputes accruals and samples stats until ctx is canceled.
func (t *Ticker) Run(ctx context.Context) {
	t.log.Info("ticker: starting", slog.Duration("interval", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("ticker: stopping")
			return
		case <-ticker.C:
			t.autopilot.RecomputeAll()
			t.sampler.Sample()
		}
	}
}
