package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqboom/rewards-engine/internal/domain"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStorage_LoadEmpty(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())

	_, err := storage.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())
	savedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	player := testPlayer("SQ_B_1")
	player.ClaimedCoupons = []string{"msg-1"}
	player.VotedPolls = []string{"msg-2"}
	player.Transactions = []domain.Transaction{
		{ID: "tx-1", Kind: domain.TxReceived, Amount: decimal.NewFromInt(50)},
		{ID: "tx-2", Kind: domain.TxSent, Amount: decimal.NewFromInt(20)},
	}

	snapshot := &Snapshot{
		State: &State{
			Accounts: []*domain.Account{player},
			Messages: []*domain.ChannelMessage{{ID: "msg-2", Type: domain.MessagePoll, Poll: &domain.PollData{Question: "Q", Votes: 7}}},
			Settings: domain.PlatformSettings{
				ETBRate:   120,
				AdContent: &domain.AdContent{ID: "ad-1", Type: domain.AdPoll, Question: "Like it?", Votes: 3},
			},
		},
		SavedAt: savedAt,
	}
	require.NoError(t, storage.Save(context.Background(), snapshot))

	loaded, err := storage.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, loaded.State.Accounts, 1)
	restored := loaded.State.Accounts[0]
	assert.Equal(t, []string{"msg-1"}, restored.ClaimedCoupons)
	assert.Equal(t, []string{"msg-2"}, restored.VotedPolls)
	require.Len(t, restored.Transactions, 2)
	assert.Equal(t, domain.TxReceived, restored.Transactions[0].Kind)
	assert.True(t, restored.Transactions[1].Amount.Equal(decimal.NewFromInt(20)))

	require.Len(t, loaded.State.Messages, 1)
	assert.Equal(t, 7, loaded.State.Messages[0].Poll.Votes)

	assert.Equal(t, float64(120), loaded.State.Settings.ETBRate)
	require.NotNil(t, loaded.State.Settings.AdContent)
	assert.Equal(t, 3, loaded.State.Settings.AdContent.Votes)

	assert.True(t, loaded.SavedAt.Equal(savedAt))
}
