package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
)

const defaultETBRate = 100

// Arena holds the live state behind a single coarse lock. There is no true
// parallelism in the core: one logical operation completes fully before the
// next begins, which the write lock enforces.
type Arena struct {
	mu      sync.RWMutex
	state   *State
	storage Storage
	log     *slog.Logger
}

// NewArena loads the persisted snapshot from storage, seeding the agency
// accounts and default settings when none exists.
func NewArena(ctx context.Context, storage Storage, log *slog.Logger) (*Arena, error) {
	if log == nil {
		log = slog.Default()
	}

	arena := &Arena{storage: storage, log: log}

	snapshot, err := storage.Load(ctx)
	switch {
	case err == nil:
		arena.state = snapshot.State
		arena.ensureAgencies()
		log.Info("state snapshot restored",
			slog.Int("accounts", len(arena.state.Accounts)),
			slog.Int("messages", len(arena.state.Messages)),
			slog.Time("saved_at", snapshot.SavedAt),
		)
	case errors.Is(err, ErrNoSnapshot):
		arena.state = &State{
			Accounts: catalog.SeedAccounts(),
			Messages: []*domain.ChannelMessage{},
			Settings: domain.PlatformSettings{ETBRate: defaultETBRate},
		}
		log.Info("no snapshot found, seeded fresh state", slog.Int("accounts", len(arena.state.Accounts)))
	default:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	return arena, nil
}

// Update runs fn against a deep copy of the current state and swaps the
// copy in only when fn succeeds. A failed operation therefore leaves the
// observable state byte-for-byte unchanged.
func (a *Arena) Update(fn func(*State) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.state.Clone()
	if err := fn(next); err != nil {
		return err
	}

	a.state = next
	return nil
}

// View runs fn under the read lock. fn must not retain references to state
// internals beyond the call; use the Clone helpers for that.
func (a *Arena) View(fn func(*State)) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	fn(a.state)
}

// Account returns a deep copy of the account or domain.ErrAccountNotFound.
func (a *Arena) Account(id string) (*domain.Account, error) {
	var account *domain.Account
	a.View(func(s *State) {
		account = s.AccountByID(id).Clone()
	})

	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// Accounts returns deep copies of every account.
func (a *Arena) Accounts() []*domain.Account {
	var accounts []*domain.Account
	a.View(func(s *State) {
		accounts = make([]*domain.Account, 0, len(s.Accounts))
		for _, account := range s.Accounts {
			accounts = append(accounts, account.Clone())
		}
	})
	return accounts
}

// Messages returns deep copies of the broadcast message log.
func (a *Arena) Messages() []*domain.ChannelMessage {
	var messages []*domain.ChannelMessage
	a.View(func(s *State) {
		messages = make([]*domain.ChannelMessage, 0, len(s.Messages))
		for _, message := range s.Messages {
			messages = append(messages, message.Clone())
		}
	})
	return messages
}

// Settings returns a copy of the platform settings.
func (a *Arena) Settings() domain.PlatformSettings {
	var settings domain.PlatformSettings
	a.View(func(s *State) {
		settings = s.Settings
		if s.Settings.AdContent != nil {
			ad := *s.Settings.AdContent
			settings.AdContent = &ad
		}
	})
	return settings
}

// Persist writes the current state to the backing storage.
func (a *Arena) Persist(ctx context.Context) error {
	a.mu.RLock()
	snapshot := &Snapshot{State: a.state.Clone(), SavedAt: time.Now().UTC()}
	a.mu.RUnlock()

	if err := a.storage.Save(ctx, snapshot); err != nil {
		a.log.Error("failed to persist snapshot", slog.Any("error", err))
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// HealthCheck reports whether the arena holds a usable state.
func (a *Arena) HealthCheck(_ context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.state == nil {
		return errors.New("arena state not initialized")
	}
	return nil
}

// ensureAgencies re-adds any agency account missing from a restored
// snapshot, mirroring the seeding done on first start.
func (a *Arena) ensureAgencies() {
	for _, seeded := range catalog.SeedAccounts() {
		if a.state.AccountByID(seeded.ID) == nil {
			a.state.Accounts = append(a.state.Accounts, seeded)
			a.log.Warn("agency account missing from snapshot, reseeded", slog.String("account_id", seeded.ID))
		}
	}
}
