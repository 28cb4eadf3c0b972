package handlers

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
	"github.com/sqboom/rewards-engine/internal/jobs"
	"github.com/sqboom/rewards-engine/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestArena(t *testing.T, storage store.Storage, accounts ...*domain.Account) *store.Arena {
	t.Helper()

	arena, err := store.NewArena(context.Background(), storage, testLogger())
	require.NoError(t, err)
	require.NoError(t, arena.Update(func(s *store.State) error {
		s.Accounts = append(s.Accounts, accounts...)
		return nil
	}))

	return arena
}

func TestTapsResetHandler(t *testing.T) {
	arena := newTestArena(t, store.NewMemoryStorage(),
		&domain.Account{ID: "SQ_B_1", Role: domain.RolePlayer, TapsToday: 4999},
		&domain.Account{ID: "SQ_B_2", Role: domain.RolePlayer, TapsToday: 12},
	)

	task, err := jobs.NewTapsResetTask(time.Now().UnixMilli())
	require.NoError(t, err)

	handler := NewTapsResetHandler(arena, testLogger())
	require.NoError(t, handler.ProcessTask(context.Background(), task))

	for _, id := range []string{"SQ_B_1", "SQ_B_2"} {
		account, err := arena.Account(id)
		require.NoError(t, err)
		assert.Zero(t, account.TapsToday)
	}

	// Agency accounts never tap; the reset leaves them alone.
	_, err = arena.Account(catalog.PrimaryAgencyID)
	require.NoError(t, err)
}

func TestSnapshotPersistHandler(t *testing.T) {
	storage := store.NewMemoryStorage()
	arena := newTestArena(t, storage,
		&domain.Account{ID: "SQ_B_1", Role: domain.RolePlayer, TapsToday: 7},
	)

	task, err := jobs.NewSnapshotPersistTask(time.Now().UnixMilli())
	require.NoError(t, err)

	handler := NewSnapshotPersistHandler(arena, testLogger())
	require.NoError(t, handler.ProcessTask(context.Background(), task))

	snapshot, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snapshot.State.AccountByID("SQ_B_1"))
}
