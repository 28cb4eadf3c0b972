package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestArena(t *testing.T, accounts ...*domain.Account) *store.Arena {
	t.Helper()

	arena, err := store.NewArena(context.Background(), store.NewMemoryStorage(), testLogger())
	require.NoError(t, err)

	if len(accounts) > 0 {
		require.NoError(t, arena.Update(func(s *store.State) error {
			s.Accounts = append(s.Accounts, accounts...)
			return nil
		}))
	}

	return arena
}

func testPlayer(id string, spendable, bonus int64) *domain.Account {
	return &domain.Account{
		ID:             id,
		Name:           "Player " + id,
		Role:           domain.RolePlayer,
		Level:          1,
		SpendableCoins: decimal.NewFromInt(spendable),
		BonusCoins:     decimal.NewFromInt(bonus),
		LifetimeEarned: decimal.NewFromInt(spendable),
		ClaimedCoupons: []string{},
		VotedPolls:     []string{},
		VotedAdPolls:   []string{},
		Transactions:   []domain.Transaction{},
	}
}

func newTestService(t *testing.T, accounts ...*domain.Account) *Service {
	t.Helper()

	svc := NewService(newTestArena(t, accounts...), testLogger())
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return svc
}

func TestCredit(t *testing.T) {
	svc := newTestService(t, testPlayer("SQ_B_1", 100, 0))

	updated, err := svc.Credit("SQ_B_1", decimal.NewFromInt(50), domain.TxDailyReward, "Claimed Daily Reward")
	require.NoError(t, err)

	assert.True(t, updated.SpendableCoins.Equal(decimal.NewFromInt(150)))
	assert.True(t, updated.LifetimeEarned.Equal(decimal.NewFromInt(150)))
	require.Len(t, updated.Transactions, 1)
	assert.Equal(t, domain.TxDailyReward, updated.Transactions[0].Kind)
	assert.Equal(t, "SQ_B_1", updated.Transactions[0].ReceiverID)
	assert.NotEmpty(t, updated.Transactions[0].ID)
}

func TestCredit_InvalidAmount(t *testing.T) {
	svc := newTestService(t, testPlayer("SQ_B_1", 100, 0))

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.Credit("SQ_B_1", amount, domain.TxDailyReward, "bad")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestCredit_UnknownAccount(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Credit("missing", decimal.NewFromInt(10), domain.TxDailyReward, "x")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestTransfer(t *testing.T) {
	sender := testPlayer("SQ_B_1", 100, 0)
	receiver := testPlayer("SQ_B_2", 30, 0)
	svc := newTestService(t, sender, receiver)

	sent, err := svc.Transfer("SQ_B_1", "SQ_B_2", decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, domain.TxSent, sent.Kind)

	gotSender, err := svc.arena.Account("SQ_B_1")
	require.NoError(t, err)
	gotReceiver, err := svc.arena.Account("SQ_B_2")
	require.NoError(t, err)

	assert.True(t, gotSender.SpendableCoins.Equal(decimal.NewFromInt(70)))
	assert.True(t, gotReceiver.SpendableCoins.Equal(decimal.NewFromInt(60)))

	// Receiving a transfer never raises the lifetime-earned mark.
	assert.True(t, gotReceiver.LifetimeEarned.Equal(decimal.NewFromInt(30)))

	require.Len(t, gotSender.Transactions, 1)
	require.Len(t, gotReceiver.Transactions, 1)
	assert.Equal(t, gotSender.Transactions[0].ID, gotReceiver.Transactions[0].ID)
	assert.Equal(t, domain.TxSent, gotSender.Transactions[0].Kind)
	assert.Equal(t, domain.TxReceived, gotReceiver.Transactions[0].Kind)
}

func TestTransfer_BonusCoinsDrawnFirst(t *testing.T) {
	sender := testPlayer("SQ_B_1", 50, 40)
	receiver := testPlayer("SQ_B_2", 0, 0)
	svc := newTestService(t, sender, receiver)

	_, err := svc.Transfer("SQ_B_1", "SQ_B_2", decimal.NewFromInt(60))
	require.NoError(t, err)

	gotSender, err := svc.arena.Account("SQ_B_1")
	require.NoError(t, err)
	gotReceiver, err := svc.arena.Account("SQ_B_2")
	require.NoError(t, err)

	assert.True(t, gotSender.BonusCoins.IsZero())
	assert.True(t, gotSender.SpendableCoins.Equal(decimal.NewFromInt(30)))

	// Transferred funds arrive as plain spendable coins, never bonus-tagged.
	assert.True(t, gotReceiver.BonusCoins.IsZero())
	assert.True(t, gotReceiver.SpendableCoins.Equal(decimal.NewFromInt(60)))
}

func TestTransfer_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		sender   string
		receiver string
		amount   decimal.Decimal
		expected error
	}{
		{name: "self transfer", sender: "SQ_B_1", receiver: "SQ_B_1", amount: decimal.NewFromInt(10), expected: domain.ErrInvalidRecipient},
		{name: "non-positive amount", sender: "SQ_B_1", receiver: "SQ_B_2", amount: decimal.Zero, expected: domain.ErrInvalidAmount},
		{name: "unknown receiver", sender: "SQ_B_1", receiver: "ghost", amount: decimal.NewFromInt(10), expected: domain.ErrAccountNotFound},
		{name: "insufficient funds", sender: "SQ_B_1", receiver: "SQ_B_2", amount: decimal.NewFromInt(1000), expected: domain.ErrInsufficientFunds},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, testPlayer("SQ_B_1", 100, 0), testPlayer("SQ_B_2", 0, 0))

			_, err := svc.Transfer(tc.sender, tc.receiver, tc.amount)
			assert.ErrorIs(t, err, tc.expected)

			// A failed transfer leaves both balances untouched.
			gotSender, err := svc.arena.Account("SQ_B_1")
			require.NoError(t, err)
			assert.True(t, gotSender.SpendableCoins.Equal(decimal.NewFromInt(100)))
			assert.Empty(t, gotSender.Transactions)
		})
	}
}

func TestProcessCallFee(t *testing.T) {
	svc := newTestService(t, testPlayer("SQ_B_1", 100, 0))

	fee, err := svc.ProcessCallFee("SQ_B_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TxCallFee, fee.Kind)
	assert.True(t, fee.Amount.Equal(catalog.CallFee))
	assert.Equal(t, catalog.FeeReceiverID, fee.ReceiverID)

	gotSender, err := svc.arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.True(t, gotSender.SpendableCoins.Equal(decimal.NewFromInt(45)))

	receiver, err := svc.arena.Account(catalog.FeeReceiverID)
	require.NoError(t, err)
	assert.True(t, receiver.SpendableCoins.Equal(decimal.NewFromInt(1_000_055)))
	require.Len(t, receiver.Transactions, 1)
	assert.Equal(t, domain.TxReceived, receiver.Transactions[0].Kind)
}

func TestProcessCallFee_InsufficientFunds(t *testing.T) {
	svc := newTestService(t, testPlayer("SQ_B_1", 10, 0))

	_, err := svc.ProcessCallFee("SQ_B_1")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestVerifyTransaction(t *testing.T) {
	svc := newTestService(t, testPlayer("SQ_B_1", 100, 0), testPlayer("SQ_B_2", 0, 0))

	sent, err := svc.Transfer("SQ_B_1", "SQ_B_2", decimal.NewFromInt(25))
	require.NoError(t, err)

	found, err := svc.VerifyTransaction(sent.ID)
	require.NoError(t, err)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(25)))

	_, err = svc.VerifyTransaction("does-not-exist")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestDebit_LifetimeEarnedUntouched(t *testing.T) {
	account := testPlayer("SQ_B_1", 100, 20)

	require.NoError(t, debit(account, decimal.NewFromInt(50)))
	assert.True(t, account.LifetimeEarned.Equal(decimal.NewFromInt(100)))
	assert.True(t, account.BonusCoins.IsZero())
	assert.True(t, account.SpendableCoins.Equal(decimal.NewFromInt(70)))
}
