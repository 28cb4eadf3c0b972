package account

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/ratelimit"
	"github.com/sqboom/rewards-engine/internal/store"
)

const supportAgencyID = "620034"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, accounts ...*domain.Account) (*Service, *store.Arena) {
	t.Helper()

	arena, err := store.NewArena(context.Background(), store.NewMemoryStorage(), testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *store.State) error {
		s.Accounts = append(s.Accounts, accounts...)
		return nil
	}))

	svc := NewService(arena, progression.NewEngine(arena, testLogger()), ratelimit.NewMemoryLimiter(), testLogger())
	return svc, arena
}

func testPlayer(id string) *domain.Account {
	return &domain.Account{
		ID:    id,
		Name:  "Player " + id,
		Email: id + "@example.com",
		Role:  domain.RolePlayer,
		Level: 1,
	}
}

func testRegistration() Registration {
	return Registration{
		FullName: "Abebe Bikila",
		Phone:    "+251 91 555 0000",
		Email:    "abebe@example.com",
		Password: "secret1",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Register(testRegistration())
	require.NoError(t, err)

	assert.Contains(t, created.ID, "SQ_B_")
	assert.Equal(t, "Abebe", created.Nickname)
	assert.Equal(t, domain.RolePlayer, created.Role)
	assert.Equal(t, 1, created.Level)
	assert.True(t, created.SpendableCoins.IsZero())
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	reg := testRegistration()
	reg.Email = "not-an-email"

	_, err := svc.Register(reg)
	assert.Error(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(testRegistration())
	require.NoError(t, err)

	_, err = svc.Register(testRegistration())
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestRegister_ReferralPayout(t *testing.T) {
	svc, arena := newTestService(t, testPlayer("SQ_B_1"))

	reg := testRegistration()
	reg.ReferrerID = "SQ_B_1"

	_, err := svc.Register(reg)
	require.NoError(t, err)

	referrer, err := arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.Invites)
	assert.True(t, referrer.SpendableCoins.Equal(catalog.ReferralReward))
	require.Len(t, referrer.Transactions, 1)
	assert.Equal(t, domain.TxReferralBonus, referrer.Transactions[0].Kind)
}

func TestRegister_UnknownReferrerIgnored(t *testing.T) {
	svc, _ := newTestService(t)

	reg := testRegistration()
	reg.ReferrerID = "nobody"

	created, err := svc.Register(reg)
	require.NoError(t, err)
	assert.Equal(t, "nobody", created.ReferrerID)
}

func TestAuthenticate(t *testing.T) {
	player := testPlayer("SQ_B_1")
	player.Password = "secret1"
	svc, _ := newTestService(t, player)

	account, err := svc.Authenticate(context.Background(), "SQ_B_1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "SQ_B_1", account.ID)

	// Email works as the identifier too.
	account, err = svc.Authenticate(context.Background(), "SQ_B_1@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "SQ_B_1", account.ID)

	_, err = svc.Authenticate(context.Background(), "SQ_B_1", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAuthenticate_PasswordlessPlayer(t *testing.T) {
	svc, _ := newTestService(t, testPlayer("SQ_B_1"))

	_, err := svc.Authenticate(context.Background(), "SQ_B_1", "")
	assert.NoError(t, err)
}

func TestAuthenticate_Banned(t *testing.T) {
	player := testPlayer("SQ_B_1")
	player.Banned = true
	svc, _ := newTestService(t, player)

	_, err := svc.Authenticate(context.Background(), "SQ_B_1", "")
	assert.ErrorIs(t, err, domain.ErrBannedAccount)
}

func TestAuthenticate_AgencyRequiresPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), catalog.PrimaryAgencyID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	account, err := svc.Authenticate(context.Background(), catalog.PrimaryAgencyID, "sqboom2025")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, account.Role)
}

func TestAuthenticate_RateLimited(t *testing.T) {
	player := testPlayer("SQ_B_1")
	player.Password = "secret1"
	svc, _ := newTestService(t, player)

	for i := 0; i < loginAttemptLimit; i++ {
		_, err := svc.Authenticate(context.Background(), "SQ_B_1", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	_, err := svc.Authenticate(context.Background(), "SQ_B_1", "secret1")
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)
}

func TestChangePassword(t *testing.T) {
	svc, arena := newTestService(t, testPlayer("SQ_B_1"))

	require.NoError(t, svc.ChangePassword("SQ_B_1", "fresh1"))

	account, err := arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.Equal(t, "fresh1", account.Password)

	assert.ErrorIs(t, svc.ChangePassword("ghost", "x"), domain.ErrAccountNotFound)
}

func TestSetBanned(t *testing.T) {
	svc, arena := newTestService(t, testPlayer("SQ_B_1"), testPlayer("SQ_B_2"))

	err := svc.SetBanned("SQ_B_2", "SQ_B_1", true)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// The support agency may ban.
	require.NoError(t, svc.SetBanned(supportAgencyID, "SQ_B_1", true))

	account, err := arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.True(t, account.Banned)

	require.NoError(t, svc.SetBanned(catalog.PrimaryAgencyID, "SQ_B_1", false))
	account, err = arena.Account("SQ_B_1")
	require.NoError(t, err)
	assert.False(t, account.Banned)
}

func TestApproveLevelUp(t *testing.T) {
	player := testPlayer("SQ_B_1")
	player.Level = 15
	player.LifetimeEarned = decimal.NewFromInt(500_000_000)
	svc, _ := newTestService(t, player)

	_, err := svc.ApproveLevelUp("SQ_B_1", "SQ_B_1")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	updated, err := svc.ApproveLevelUp(catalog.PrimaryAgencyID, "SQ_B_1")
	require.NoError(t, err)
	assert.Equal(t, 16, updated.Level)
}

func TestApproveLevelUp_RequirementsStillGate(t *testing.T) {
	// Approval toward level 3 cannot skip its coin requirement.
	player := testPlayer("SQ_B_1")
	player.Level = 2
	player.LifetimeEarned = decimal.NewFromInt(10)
	svc, _ := newTestService(t, player)

	_, err := svc.ApproveLevelUp(catalog.PrimaryAgencyID, "SQ_B_1")
	assert.ErrorIs(t, err, domain.ErrLevelTooLow)
}
