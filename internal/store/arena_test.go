package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPlayer(id string) *domain.Account {
	return &domain.Account{
		ID:             id,
		Name:           "Player " + id,
		Role:           domain.RolePlayer,
		Level:          1,
		SpendableCoins: decimal.NewFromInt(100),
	}
}

func TestNewArena_SeedsFreshState(t *testing.T) {
	arena, err := NewArena(context.Background(), NewMemoryStorage(), testLogger())
	require.NoError(t, err)

	for _, agency := range catalog.Agencies {
		account, err := arena.Account(agency.ID)
		require.NoError(t, err)
		assert.Equal(t, agency.Role, account.Role)
		assert.Equal(t, 21, account.Level)
	}

	assert.Empty(t, arena.Messages())
	assert.Equal(t, float64(defaultETBRate), arena.Settings().ETBRate)
}

func TestUpdate_FailedMutationLeavesStateUntouched(t *testing.T) {
	arena, err := NewArena(context.Background(), NewMemoryStorage(), testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *State) error {
		s.Accounts = append(s.Accounts, testPlayer("SQ_B_1"))
		return nil
	}))

	boom := errors.New("boom")
	err = arena.Update(func(s *State) error {
		s.AccountByID("SQ_B_1").SpendableCoins = decimal.NewFromInt(999)
		s.Accounts = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	account, err := arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.True(t, account.SpendableCoins.Equal(decimal.NewFromInt(100)))
}

func TestAccount_ReturnsIsolatedCopy(t *testing.T) {
	arena, err := NewArena(context.Background(), NewMemoryStorage(), testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *State) error {
		s.Accounts = append(s.Accounts, testPlayer("SQ_B_1"))
		return nil
	}))

	first, err := arena.Account("SQ_B_1")
	require.NoError(t, err)
	first.SpendableCoins = decimal.NewFromInt(999)
	first.ClaimedCoupons = append(first.ClaimedCoupons, "x")

	second, err := arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.True(t, second.SpendableCoins.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, second.ClaimedCoupons)
}

func TestPersist_RoundTrip(t *testing.T) {
	storage := NewMemoryStorage()

	arena, err := NewArena(context.Background(), storage, testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *State) error {
		player := testPlayer("SQ_B_1")
		player.Transactions = []domain.Transaction{{ID: "tx-1", Kind: domain.TxDailyReward, Amount: decimal.NewFromInt(1000)}}
		s.Accounts = append(s.Accounts, player)
		return nil
	}))
	require.NoError(t, arena.Persist(context.Background()))

	restored, err := NewArena(context.Background(), storage, testLogger())
	require.NoError(t, err)

	account, err := restored.Account("SQ_B_1")
	require.NoError(t, err)
	require.Len(t, account.Transactions, 1)
	assert.Equal(t, "tx-1", account.Transactions[0].ID)
}

func TestNewArena_ReseedsMissingAgencies(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), &Snapshot{
		State: &State{
			Accounts: []*domain.Account{testPlayer("SQ_B_1")},
			Messages: []*domain.ChannelMessage{},
		},
		SavedAt: time.Now(),
	}))

	arena, err := NewArena(context.Background(), storage, testLogger())
	require.NoError(t, err)

	// The player survives and every agency is back.
	_, err = arena.Account("SQ_B_1")
	require.NoError(t, err)
	for _, agency := range catalog.Agencies {
		_, err := arena.Account(agency.ID)
		require.NoError(t, err)
	}
}

func TestHealthCheck(t *testing.T) {
	arena, err := NewArena(context.Background(), NewMemoryStorage(), testLogger())
	require.NoError(t, err)
	assert.NoError(t, arena.HealthCheck(context.Background()))
}
