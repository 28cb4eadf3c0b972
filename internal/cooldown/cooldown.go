// Package cooldown derives remaining-wait durations for the periodic
// claims. A cooldown is a pure function of the last claim timestamp and the
// wall clock, recomputed on every tick rather than driven by events.
package cooldown

import (
	"time"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/store"
)

// Kind names the two independent cooldown instances.
type Kind string

const (
	KindDailyReward Kind = "daily_reward"
	KindAdBonus     Kind = "ad_bonus"
)

// Duration returns the configured window for the kind.
func Duration(kind Kind) time.Duration {
	switch kind {
	case KindDailyReward:
		return catalog.DailyRewardCooldown
	case KindAdBonus:
		return catalog.AdBonusCooldown
	default:
		return 0
	}
}

// Remaining computes the wait left before the next claim: zero when the
// claim is available. lastClaimMillis zero means never claimed.
func Remaining(lastClaimMillis int64, now time.Time, window time.Duration) time.Duration {
	end := time.UnixMilli(lastClaimMillis).Add(window)
	remaining := end.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Scheduler answers cooldown queries against the state arena.
type Scheduler struct {
	arena *store.Arena
	now   func() time.Time
}

// NewScheduler constructs a Scheduler.
func NewScheduler(arena *store.Arena) *Scheduler {
	return &Scheduler{arena: arena, now: time.Now}
}

// RemainingFor returns the wait left on the given cooldown for the account.
func (s *Scheduler) RemainingFor(accountID string, kind Kind) (time.Duration, error) {
	account, err := s.arena.Account(accountID)
	if err != nil {
		return 0, err
	}

	return Remaining(lastClaim(account, kind), s.now(), Duration(kind)), nil
}

func lastClaim(account *domain.Account, kind Kind) int64 {
	switch kind {
	case KindDailyReward:
		return account.LastDailyRewardAt
	case KindAdBonus:
		return account.LastAdBonusAt
	default:
		return 0
	}
}
