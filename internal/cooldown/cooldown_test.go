package cooldown

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, catalog.DailyRewardCooldown, Duration(KindDailyReward))
	assert.Equal(t, catalog.AdBonusCooldown, Duration(KindAdBonus))
	assert.Equal(t, time.Duration(0), Duration(Kind("unknown")))
}

func TestRemaining(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	testCases := []struct {
		name      string
		lastClaim int64
		window    time.Duration
		expected  time.Duration
	}{
		{name: "never claimed", lastClaim: 0, window: 24 * time.Hour, expected: 0},
		{name: "just claimed", lastClaim: now.UnixMilli(), window: 3 * time.Hour, expected: 3 * time.Hour},
		{name: "partially elapsed", lastClaim: now.Add(-time.Hour).UnixMilli(), window: 3 * time.Hour, expected: 2 * time.Hour},
		{name: "fully elapsed", lastClaim: now.Add(-4 * time.Hour).UnixMilli(), window: 3 * time.Hour, expected: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Remaining(tc.lastClaim, now, tc.window))
		})
	}
}

func TestScheduler_RemainingFor(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	arena, err := store.NewArena(context.Background(), store.NewMemoryStorage(), testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *store.State) error {
		s.Accounts = append(s.Accounts, &domain.Account{
			ID:                "SQ_B_1",
			Role:              domain.RolePlayer,
			LastDailyRewardAt: now.Add(-20 * time.Hour).UnixMilli(),
			LastAdBonusAt:     now.Add(-5 * time.Hour).UnixMilli(),
		})
		return nil
	}))

	scheduler := NewScheduler(arena)
	scheduler.now = func() time.Time { return now }

	daily, err := scheduler.RemainingFor("SQ_B_1", KindDailyReward)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, daily)

	ad, err := scheduler.RemainingFor("SQ_B_1", KindAdBonus)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), ad)

	_, err = scheduler.RemainingFor("ghost", KindDailyReward)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
