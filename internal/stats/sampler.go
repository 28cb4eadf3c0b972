// Package stats samples the state arena for liquidity and population
// time series and feeds the Prometheus gauges.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sqboom/rewards-engine/internal/autopilot"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/store"
	"github.com/sqboom/rewards-engine/pkg/metrics"
)

// historySize caps the retained samples per series.
const historySize = 100

// LiquiditySample is one point of the player coin supply series.
type LiquiditySample struct {
	Timestamp int64           `json:"timestamp"`
	Supply    decimal.Decimal `json:"supply"`
}

// PlatformSample is one point of the account population series.
type PlatformSample struct {
	Timestamp int64 `json:"timestamp"`
	Players   int   `json:"players"`
	Banned    int   `json:"banned"`
}

// Sampler periodically snapshots platform-wide aggregates.
type Sampler struct {
	arena *store.Arena
	log   *slog.Logger
	now   func() time.Time

	mu        sync.RWMutex
	liquidity []LiquiditySample
	platform  []PlatformSample
}

// NewSampler constructs a Sampler bound to the arena.
func NewSampler(arena *store.Arena, log *slog.Logger) *Sampler {
	if log == nil {
		log = slog.Default()
	}

	return &Sampler{arena: arena, log: log, now: time.Now}
}

// Run samples on the given interval until ctx is canceled.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	for {
		s.Sample()

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// Sample takes one measurement and updates the gauges.
func (s *Sampler) Sample() {
	now := s.now()

	supply := decimal.Zero
	players := 0
	banned := 0
	botStates := map[autopilot.State]int{
		autopilot.StateNoBot:      0,
		autopilot.StateIdle:       0,
		autopilot.StateRunning:    0,
		autopilot.StateClaimReady: 0,
	}

	s.arena.View(func(state *store.State) {
		for _, account := range state.Accounts {
			if account.Role != domain.RolePlayer {
				continue
			}

			players++
			if account.Banned {
				banned++
			}
			supply = supply.Add(account.AvailableBalance())
			botStates[autopilot.StateAt(account, now)]++
		}
	})

	supplyFloat, _ := supply.Float64()
	metrics.SetCoinSupply(supplyFloat)
	metrics.SetPlayerCounts(players, banned)
	for botState, count := range botStates {
		metrics.SetBotsByState(string(botState), count)
	}

	s.mu.Lock()
	s.liquidity = appendCapped(s.liquidity, LiquiditySample{Timestamp: now.UnixMilli(), Supply: supply})
	s.platform = appendCapped(s.platform, PlatformSample{Timestamp: now.UnixMilli(), Players: players, Banned: banned})
	s.mu.Unlock()
}

// LiquidityHistory returns a copy of the coin supply series, oldest first.
func (s *Sampler) LiquidityHistory() []LiquiditySample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LiquiditySample, len(s.liquidity))
	copy(out, s.liquidity)
	return out
}

// PlatformHistory returns a copy of the population series, oldest first.
func (s *Sampler) PlatformHistory() []PlatformSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PlatformSample, len(s.platform))
	copy(out, s.platform)
	return out
}

func appendCapped[T any](series []T, sample T) []T {
	series = append(series, sample)
	if len(series) > historySize {
		series = series[len(series)-historySize:]
	}
	return series
}
