// Package rewards implements the periodic claims (daily reward, ad bonus)
// and the per-tap credit.
package rewards

import (
	"log/slog"
	"time"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/cooldown"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/ledger"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/store"
	"github.com/sqboom/rewards-engine/pkg/metrics"
)

// Service owns the claim operations. Each claim commits the credit and the
// cooldown-timestamp reset as one state transition, then re-evaluates
// progression.
type Service struct {
	arena       *store.Arena
	progression *progression.Engine
	log         *slog.Logger
	now         func() time.Time
}

// NewService constructs a rewards Service.
func NewService(arena *store.Arena, progressionEngine *progression.Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{arena: arena, progression: progressionEngine, log: log, now: time.Now}
}

// ClaimDailyReward credits the fixed daily amount when the 24h cooldown has
// fully elapsed and restarts the cooldown.
func (s *Service) ClaimDailyReward(accountID string) (*domain.Account, error) {
	now := s.now()

	err := s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if cooldown.Remaining(account.LastDailyRewardAt, now, catalog.DailyRewardCooldown) > 0 {
			return domain.ErrCooldownActive
		}

		if _, err := ledger.CreditAccount(account, catalog.DailyRewardAmount, domain.TxDailyReward, "Claimed Daily Reward", now.UnixMilli()); err != nil {
			return err
		}
		account.LastDailyRewardAt = now.UnixMilli()
		return nil
	})
	if err != nil {
		metrics.RecordClaim("daily_reward", "rejected")
		return nil, err
	}

	metrics.RecordClaim("daily_reward", "ok")
	return s.progression.EvaluateLevelUp(accountID)
}

// ClaimAdBonus credits the ad bonus when an ad is configured and the 3h
// cooldown has elapsed. Poll ads additionally require a prior vote.
func (s *Service) ClaimAdBonus(accountID string) (*domain.Account, error) {
	now := s.now()

	err := s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		ad := state.Settings.AdContent
		if ad == nil {
			return domain.ErrNoAdContent
		}
		if ad.Type == domain.AdPoll && !account.HasVotedAdPoll(ad.ID) {
			return domain.ErrAdVoteRequired
		}

		if cooldown.Remaining(account.LastAdBonusAt, now, catalog.AdBonusCooldown) > 0 {
			return domain.ErrCooldownActive
		}

		if _, err := ledger.CreditAccount(account, catalog.AdBonusCoins, domain.TxAdBonus, "Claimed Ad Bonus", now.UnixMilli()); err != nil {
			return err
		}
		account.LastAdBonusAt = now.UnixMilli()
		return nil
	})
	if err != nil {
		metrics.RecordClaim("ad_bonus", "rejected")
		return nil, err
	}

	metrics.RecordClaim("ad_bonus", "ok")
	return s.progression.EvaluateLevelUp(accountID)
}

// Tap credits one tap at the account's level rate. Taps do not append
// ledger transactions; the daily tap counter gates them and is reset by the
// nightly job.
func (s *Service) Tap(accountID string) (*domain.Account, error) {
	var updated *domain.Account
	err := s.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if account.TapsToday >= catalog.DailyTapLimit {
			return domain.ErrTapLimitReached
		}

		rate := catalog.CoinsPerTap(account.Level)
		account.SpendableCoins = account.SpendableCoins.Add(rate)
		account.LifetimeEarned = account.LifetimeEarned.Add(rate)
		account.TapsToday++

		updated = account.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTap()
	if evaluated, err := s.progression.EvaluateLevelUp(accountID); err == nil {
		return evaluated, nil
	}

	return updated, nil
}
