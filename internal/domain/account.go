// Package domain holds the core entities of the rewards engine: accounts,
// transactions, the level and bot-tier catalogs, and broadcast messages.
package domain

import "github.com/shopspring/decimal"

// Role classifies an account. Ordinary players hold RolePlayer; the three
// remaining roles belong to the fixed agency accounts seeded at startup.
type Role string

const (
	RolePlayer   Role = "PLAYER"
	RoleAdmin    Role = "ADMIN"
	RoleSupport  Role = "SUPPORT"
	RoleReceiver Role = "RECEIVER"
)

// Account is one participant. Balances are kept as decimals because the
// per-tap reward rates are fractional.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
	Password string `json:"password,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
	Age      int    `json:"age,omitempty"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Banned   bool   `json:"banned"`

	// SpendableCoins is the primary balance. BonusCoins are earned from ad
	// interactions and are always drawn first on debits. LifetimeEarned is a
	// monotone high-water mark used only for level gating; spending never
	// reduces it.
	SpendableCoins decimal.Decimal `json:"spendable_coins"`
	BonusCoins     decimal.Decimal `json:"bonus_coins"`
	LifetimeEarned decimal.Decimal `json:"lifetime_earned"`

	Level      int    `json:"level"`
	Invites    int    `json:"invites"`
	TapsToday  int    `json:"taps_today"`
	ReferrerID string `json:"referrer_id,omitempty"`

	ClaimedCoupons []string `json:"claimed_coupons"`
	VotedPolls     []string `json:"voted_polls"`
	VotedAdPolls   []string `json:"voted_ad_polls"`

	// Transactions is the append-only per-account ledger, insertion order =
	// chronological order.
	Transactions []Transaction `json:"transactions"`

	// Cooldown timestamps in epoch milliseconds; zero means never claimed.
	LastDailyRewardAt int64 `json:"last_daily_reward_at"`
	LastAdBonusAt     int64 `json:"last_ad_bonus_at"`

	// Automation state. ActiveBotTier zero means no tier selected;
	// BotSessionStartedAt zero means no running session.
	ActiveBotTier       int             `json:"active_bot_tier"`
	BotSessionStartedAt int64           `json:"bot_session_started_at"`
	BotAccumulatedCoins decimal.Decimal `json:"bot_accumulated_coins"`
}

// AvailableBalance is the total the account can spend right now.
func (a *Account) AvailableBalance() decimal.Decimal {
	return a.SpendableCoins.Add(a.BonusCoins)
}

// HasClaimedCoupon reports whether the account already redeemed the coupon
// message with the given id.
func (a *Account) HasClaimedCoupon(messageID string) bool {
	return containsID(a.ClaimedCoupons, messageID)
}

// HasVotedPoll reports whether the account already voted on the channel poll.
func (a *Account) HasVotedPoll(messageID string) bool {
	return containsID(a.VotedPolls, messageID)
}

// HasVotedAdPoll reports whether the account already voted on the ad poll.
// Ad-poll votes are an independent pool from channel-poll votes.
func (a *Account) HasVotedAdPoll(adID string) bool {
	return containsID(a.VotedAdPolls, adID)
}

// Clone returns a deep copy safe to hand to callers outside the state lock.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}

	clone := *a
	clone.ClaimedCoupons = append([]string(nil), a.ClaimedCoupons...)
	clone.VotedPolls = append([]string(nil), a.VotedPolls...)
	clone.VotedAdPolls = append([]string(nil), a.VotedAdPolls...)
	clone.Transactions = append([]Transaction(nil), a.Transactions...)

	return &clone
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
