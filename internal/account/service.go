// Package account handles registration, the one-hop referral payout,
// authentication, and the administrative account operations.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/ledger"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/ratelimit"
	"github.com/sqboom/rewards-engine/internal/store"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = time.Minute
)

// Registration carries the profile fields supplied at sign-up.
type Registration struct {
	FullName   string `validate:"required,min=2"`
	Phone      string `validate:"required"`
	Email      string `validate:"required,email"`
	Password   string `validate:"omitempty,min=6"`
	ReferrerID string
	PhotoURL   string
	Age        int `validate:"omitempty,gte=0,lte=120"`
}

// Service owns the account lifecycle.
type Service struct {
	arena       *store.Arena
	progression *progression.Engine
	limiter     ratelimit.Limiter
	validate    *validator.Validate
	log         *slog.Logger
	now         func() time.Time
	newID       func() string
}

// NewService constructs an account Service.
func NewService(arena *store.Arena, progressionEngine *progression.Engine, limiter ratelimit.Limiter, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		arena:       arena,
		progression: progressionEngine,
		limiter:     limiter,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		log:         log,
		now:         time.Now,
		newID:       newAccountID,
	}
}

// Register creates a new player account. When a resolvable referrer id is
// supplied, the referrer's invite counter and referral bonus commit
// atomically with the account creation; an unresolvable referrer id is
// silently ignored.
func (s *Service) Register(reg Registration) (*domain.Account, error) {
	if err := s.validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("validate registration: %w", err)
	}

	now := s.now()
	referrerID := strings.TrimSpace(reg.ReferrerID)
	var created *domain.Account
	var referrerCredited string

	err := s.arena.Update(func(state *store.State) error {
		if state.AccountByIdentifier(reg.Email) != nil {
			return domain.ErrDuplicateAccount
		}

		id := s.newID()
		for state.AccountByID(id) != nil {
			id = s.newID()
		}

		account := &domain.Account{
			ID:                  id,
			Name:                reg.FullName,
			Nickname:            firstName(reg.FullName),
			Phone:               reg.Phone,
			Email:               reg.Email,
			Password:            reg.Password,
			PhotoURL:            reg.PhotoURL,
			Age:                 reg.Age,
			Role:                domain.RolePlayer,
			Level:               1,
			ReferrerID:          referrerID,
			SpendableCoins:      decimal.Zero,
			BonusCoins:          decimal.Zero,
			LifetimeEarned:      decimal.Zero,
			ClaimedCoupons:      []string{},
			VotedPolls:          []string{},
			VotedAdPolls:        []string{},
			Transactions:        []domain.Transaction{},
			BotAccumulatedCoins: decimal.Zero,
		}
		state.Accounts = append(state.Accounts, account)

		if referrerID != "" {
			if referrer := state.AccountByID(referrerID); referrer != nil {
				referrer.Invites++
				description := fmt.Sprintf("Referral bonus for %s", account.Name)
				if _, err := ledger.CreditAccount(referrer, catalog.ReferralReward, domain.TxReferralBonus, description, now.UnixMilli()); err != nil {
					return err
				}
				referrerCredited = referrer.ID
			}
		}

		created = account.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if referrerCredited != "" {
		if _, err := s.progression.EvaluateLevelUp(referrerCredited); err != nil {
			s.log.Error("referrer level evaluation failed", slog.String("account_id", referrerCredited), slog.Any("error", err))
		}
	}

	s.log.Info("account registered",
		slog.String("account_id", created.ID),
		slog.Bool("referred", referrerCredited != ""),
	)

	return created, nil
}

// Authenticate resolves the identifier (account id or email) and checks the
// credentials. Agency accounts always require a password; player passwords
// are compared in plain text, matching the platform's stored credentials.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*domain.Account, error) {
	if s.limiter != nil {
		if _, err := s.limiter.Check(ctx, "login:"+strings.ToLower(identifier), loginAttemptLimit, loginAttemptWindow); err != nil {
			return nil, err
		}
	}

	var account *domain.Account
	s.arena.View(func(state *store.State) {
		account = state.AccountByIdentifier(identifier).Clone()
	})

	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if account.Banned {
		return nil, domain.ErrBannedAccount
	}

	if account.Role != domain.RolePlayer {
		if password == "" || account.Password != password {
			return nil, domain.ErrInvalidCredentials
		}
		return account, nil
	}

	if password != "" {
		if account.Password == "" || account.Password != password {
			return nil, domain.ErrInvalidCredentials
		}
	}

	return account, nil
}

// ChangePassword replaces the account's password.
func (s *Service) ChangePassword(accountID, newPassword string) error {
	return s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		account.Password = newPassword
		return nil
	})
}

// SetBanned flips the ban flag. Banning is an agency capability. The flag
// gates login only; the account's ledger stays intact.
func (s *Service) SetBanned(actorID, targetID string, banned bool) error {
	err := s.arena.Update(func(state *store.State) error {
		actor := state.AccountByID(actorID)
		if actor == nil {
			return domain.ErrAccountNotFound
		}
		if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSupport {
			return domain.ErrNotAuthorized
		}

		target := state.AccountByID(targetID)
		if target == nil {
			return domain.ErrAccountNotFound
		}

		target.Banned = banned
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("ban flag updated", slog.String("target_id", targetID), slog.Bool("banned", banned))
	return nil
}

// ApproveLevelUp advances an account past a manual-approval gate. The
// approver must be an agency; every non-manual requirement of the next
// level must already hold.
func (s *Service) ApproveLevelUp(actorID, targetID string) (*domain.Account, error) {
	var updated *domain.Account
	err := s.arena.Update(func(state *store.State) error {
		actor := state.AccountByID(actorID)
		if actor == nil {
			return domain.ErrAccountNotFound
		}
		if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSupport {
			return domain.ErrNotAuthorized
		}

		target := state.AccountByID(targetID)
		if target == nil {
			return domain.ErrAccountNotFound
		}

		current, ok := catalog.LevelByNumber(target.Level)
		if !ok || current.Terminal() {
			updated = target.Clone()
			return nil
		}
		next, _ := catalog.LevelByNumber(current.NextLevel)

		remaining := make([]domain.LevelRequirement, 0, len(next.Requirements))
		for _, req := range next.Requirements {
			if req.Kind != domain.RequireManualApproval {
				remaining = append(remaining, req)
			}
		}
		if !progression.MeetsRequirements(target, remaining) {
			return domain.ErrLevelTooLow
		}

		target.Level = next.Number
		updated = target.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Get returns a copy of the account.
func (s *Service) Get(accountID string) (*domain.Account, error) {
	return s.arena.Account(accountID)
}

// List returns copies of every account.
func (s *Service) List() []*domain.Account {
	return s.arena.Accounts()
}

func firstName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return fullName
	}
	return parts[0]
}

// newAccountID mints ids in the platform's historical SQ_B_ format.
func newAccountID() string {
	return fmt.Sprintf("SQ_B_%d", 1_000_000+rand.Intn(9_000_000))
}
