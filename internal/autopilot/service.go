package autopilot

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/ledger"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/store"
)

var millisPerHour = decimal.NewFromInt(3_600_000)

// Service drives the bot lifecycle against the state arena.
type Service struct {
	arena       *store.Arena
	progression *progression.Engine
	log         *slog.Logger
	now         func() time.Time
}

// NewService constructs an autopilot Service.
func NewService(arena *store.Arena, progressionEngine *progression.Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{arena: arena, progression: progressionEngine, log: log, now: time.Now}
}

// StateOf derives the current bot state for the account.
func (s *Service) StateOf(account *domain.Account) State {
	return StateAt(account, s.now())
}

// StateAt derives the bot state for the account at the given instant.
func StateAt(account *domain.Account, now time.Time) State {
	switch {
	case account.ActiveBotTier == 0:
		return StateNoBot
	case account.BotSessionStartedAt == 0:
		return StateIdle
	case now.Sub(time.UnixMilli(account.BotSessionStartedAt)) >= catalog.BotSessionDuration:
		return StateClaimReady
	default:
		return StateRunning
	}
}

// SelectTier activates a bot tier for the account. The account must meet
// the tier's level requirement and afford its cost; any running session and
// accumulated coins are discarded.
func (s *Service) SelectTier(accountID string, tierNumber int) (*domain.Account, error) {
	tier, ok := catalog.BotTierByNumber(tierNumber)
	if !ok {
		return nil, domain.ErrTierNotFound
	}

	var updated *domain.Account
	err := s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if account.Level < tier.LevelRequirement {
			return domain.ErrLevelTooLow
		}
		if account.SpendableCoins.LessThan(tier.Cost) {
			return domain.ErrInsufficientFunds
		}

		from := s.StateOf(account)
		account.SpendableCoins = account.SpendableCoins.Sub(tier.Cost)
		account.ActiveBotTier = tier.Tier
		account.BotSessionStartedAt = 0
		account.BotAccumulatedCoins = decimal.Zero
		transitionRecorder(string(from), string(StateIdle))

		updated = account.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bot tier selected", slog.String("account_id", accountID), slog.Int("tier", tierNumber))
	return updated, nil
}

// StartSession begins an accrual session for the active tier.
func (s *Service) StartSession(accountID string) (*domain.Account, error) {
	now := s.now()

	var updated *domain.Account
	err := s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if account.ActiveBotTier == 0 {
			return domain.ErrNoActiveTier
		}
		if account.BotSessionStartedAt != 0 {
			return domain.ErrSessionRunning
		}

		account.BotSessionStartedAt = now.UnixMilli()
		account.BotAccumulatedCoins = decimal.Zero
		transitionRecorder(string(StateIdle), string(StateRunning))

		updated = account.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RecomputeAll refreshes the accumulated coins of every running session.
// The projection is recomputed from scratch each tick to avoid drift and is
// capped at the fixed session duration.
func (s *Service) RecomputeAll() {
	now := s.now()

	_ = s.arena.Update(func(state *store.State) error {
		for _, account := range state.Accounts {
			if account.Role != domain.RolePlayer || account.ActiveBotTier == 0 || account.BotSessionStartedAt == 0 {
				continue
			}

			tier, ok := catalog.BotTierByNumber(account.ActiveBotTier)
			if !ok {
				continue
			}

			account.BotAccumulatedCoins = Accrued(tier, account.Level, account.BotSessionStartedAt, now)
		}
		return nil
	})
}

// Accrued computes the earned coins for a session: elapsed time (capped at
// the session duration) times the tier's tap rate times the level's
// per-tap reward, floored to a whole coin.
func Accrued(tier domain.BotTier, level int, sessionStartMillis int64, now time.Time) decimal.Decimal {
	elapsed := now.Sub(time.UnixMilli(sessionStartMillis))
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > catalog.BotSessionDuration {
		elapsed = catalog.BotSessionDuration
	}

	// earned = elapsedMs * tapsPerHour * coinsPerTap / 3_600_000
	return decimal.NewFromInt(elapsed.Milliseconds()).
		Mul(decimal.NewFromInt(int64(tier.TapsPerHour))).
		Mul(catalog.CoinsPerTap(level)).
		Div(millisPerHour).
		Floor()
}

// ClaimEarnings credits the accumulated coins through the ledger and
// returns the bot to idle. The accrual is recomputed at claim time so the
// player is paid for the full elapsed session.
func (s *Service) ClaimEarnings(accountID string) (*domain.Account, error) {
	now := s.now()

	err := s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}
		if account.ActiveBotTier == 0 {
			return domain.ErrNoActiveTier
		}

		tier, ok := catalog.BotTierByNumber(account.ActiveBotTier)
		if ok && account.BotSessionStartedAt != 0 {
			account.BotAccumulatedCoins = Accrued(tier, account.Level, account.BotSessionStartedAt, now)
		}

		if !account.BotAccumulatedCoins.IsPositive() {
			return domain.ErrNothingToClaim
		}

		from := s.StateOf(account)
		if _, err := ledger.CreditAccount(account, account.BotAccumulatedCoins, domain.TxBotClaim, "Bot Earnings Claim", now.UnixMilli()); err != nil {
			return err
		}
		account.BotSessionStartedAt = 0
		account.BotAccumulatedCoins = decimal.Zero
		transitionRecorder(string(from), string(StateIdle))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.progression.EvaluateLevelUp(accountID)
}
