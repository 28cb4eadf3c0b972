package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSampler(t *testing.T, accounts ...*domain.Account) *Sampler {
	t.Helper()

	arena, err := store.NewArena(context.Background(), store.NewMemoryStorage(), testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *store.State) error {
		s.Accounts = append(s.Accounts, accounts...)
		return nil
	}))

	sampler := NewSampler(arena, testLogger())
	sampler.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return sampler
}

func TestSample(t *testing.T) {
	sampler := newTestSampler(t,
		&domain.Account{ID: "SQ_B_1", Role: domain.RolePlayer, SpendableCoins: decimal.NewFromInt(100), BonusCoins: decimal.NewFromInt(20)},
		&domain.Account{ID: "SQ_B_2", Role: domain.RolePlayer, SpendableCoins: decimal.NewFromInt(30), Banned: true},
	)

	sampler.Sample()

	liquidity := sampler.LiquidityHistory()
	require.Len(t, liquidity, 1)
	assert.True(t, liquidity[0].Supply.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, int64(1_700_000_000_000), liquidity[0].Timestamp)

	platform := sampler.PlatformHistory()
	require.Len(t, platform, 1)
	assert.Equal(t, 2, platform[0].Players)
	assert.Equal(t, 1, platform[0].Banned)
}

func TestSample_AgenciesExcludedFromSupply(t *testing.T) {
	// The seeded agencies hold a million coins each; none of it counts.
	sampler := newTestSampler(t)

	sampler.Sample()

	liquidity := sampler.LiquidityHistory()
	require.Len(t, liquidity, 1)
	assert.True(t, liquidity[0].Supply.IsZero())

	platform := sampler.PlatformHistory()
	require.Len(t, platform, 1)
	assert.Zero(t, platform[0].Players)
}

func TestHistoryIsCapped(t *testing.T) {
	sampler := newTestSampler(t)

	for i := 0; i < historySize+10; i++ {
		sampler.Sample()
	}

	assert.Len(t, sampler.LiquidityHistory(), historySize)
	assert.Len(t, sampler.PlatformHistory(), historySize)
}

func TestHistoryReturnsCopy(t *testing.T) {
	sampler := newTestSampler(t)
	sampler.Sample()

	history := sampler.LiquidityHistory()
	history[0].Supply = decimal.NewFromInt(999)

	assert.True(t, sampler.LiquidityHistory()[0].Supply.IsZero())
}
