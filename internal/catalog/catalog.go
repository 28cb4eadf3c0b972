// Package catalog holds the static game data: the level ladder, the bot
// tiers, the seeded agency accounts, and the reward tuning constants.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sqboom/rewards-engine/internal/domain"
)

const (
	DailyTapLimit       = 5000
	AdBonusCooldown     = 3 * time.Hour
	DailyRewardCooldown = 24 * time.Hour
	BotSessionDuration  = 3 * time.Hour

	PrimaryAgencyID   = "445133"
	FeeReceiverID     = "551340"
	OfficialChannelID = "SQ_OFFICIAL_CHANNEL"
)

var (
	AdBonusCoins      = decimal.NewFromInt(5)
	DailyRewardAmount = decimal.NewFromInt(1000)
	ReferralReward    = decimal.NewFromInt(200)
	CallFee           = decimal.NewFromInt(55)
)

// BotTiers is the automation catalog. Costs are zero today; selection still
// enforces them.
var BotTiers = []domain.BotTier{
	{Tier: 1, Name: "Bronze Bot", Cost: decimal.Zero, TapsPerHour: 1500, LevelRequirement: 1},
	{Tier: 2, Name: "Silver Bot", Cost: decimal.Zero, TapsPerHour: 2500, LevelRequirement: 2},
	{Tier: 3, Name: "Gold Bot", Cost: decimal.Zero, TapsPerHour: 15000, LevelRequirement: 5},
}

// BotTierByNumber resolves a tier from the catalog.
func BotTierByNumber(tier int) (domain.BotTier, bool) {
	for _, t := range BotTiers {
		if t.Tier == tier {
			return t, true
		}
	}
	return domain.BotTier{}, false
}

// Levels is the 21-step ladder. The per-tap rate doubles with every level;
// the coin requirement doubles alongside it. Level 16 is the manual-approval
// gate and level 21 is terminal.
var Levels = buildLevels()

// LevelByNumber resolves a level from the ladder.
func LevelByNumber(number int) (domain.Level, bool) {
	for _, l := range Levels {
		if l.Number == number {
			return l, true
		}
	}
	return domain.Level{}, false
}

// CoinsPerTap returns the reward rate for the given level, falling back to
// the level-1 rate for unknown numbers.
func CoinsPerTap(level int) decimal.Decimal {
	if l, ok := LevelByNumber(level); ok {
		return l.CoinsPerTap
	}
	return Levels[0].CoinsPerTap
}

func buildLevels() []domain.Level {
	coins := func(target int64) domain.LevelRequirement {
		return domain.LevelRequirement{
			Kind:        domain.RequireCoins,
			Target:      decimal.NewFromInt(target),
			Description: "Earn {value} Coins",
		}
	}

	levels := []domain.Level{
		{Number: 1, Requirements: []domain.LevelRequirement{coins(25_000)}},
		{Number: 2, Requirements: []domain.LevelRequirement{
			coins(50_000),
			{Kind: domain.RequireInvites, Target: decimal.NewFromInt(3), Description: "Invite {value} Users"},
		}},
		{Number: 3, Requirements: []domain.LevelRequirement{coins(100_000)}},
		{Number: 4, Requirements: []domain.LevelRequirement{coins(200_000)}},
		{Number: 5, Requirements: []domain.LevelRequirement{coins(400_000)}},
		{Number: 6, Requirements: []domain.LevelRequirement{coins(800_000)}},
		{Number: 7, Requirements: []domain.LevelRequirement{coins(1_600_000)}},
		{Number: 8, Requirements: []domain.LevelRequirement{coins(3_200_000)}},
		{Number: 9, Requirements: []domain.LevelRequirement{coins(6_400_000)}},
		{Number: 10, Requirements: []domain.LevelRequirement{coins(12_800_000)}},
		{Number: 11, Requirements: []domain.LevelRequirement{coins(25_600_000)}},
		{Number: 12, Requirements: []domain.LevelRequirement{coins(51_200_000)}},
		{Number: 13, Requirements: []domain.LevelRequirement{coins(102_400_000)}},
		{Number: 14, Requirements: []domain.LevelRequirement{coins(204_800_000)}},
		{Number: 15, Requirements: []domain.LevelRequirement{coins(409_600_000)}},
		{Number: 16, Requirements: []domain.LevelRequirement{
			{Kind: domain.RequireManualApproval, Target: decimal.NewFromInt(1), Description: "Get Agency Approval"},
		}},
		{Number: 17, Requirements: []domain.LevelRequirement{coins(819_200_000)}},
		{Number: 18, Requirements: []domain.LevelRequirement{coins(1_638_400_000)}},
		{Number: 19, Requirements: []domain.LevelRequirement{coins(3_276_800_000)}},
		{Number: 20, Requirements: []domain.LevelRequirement{coins(6_553_600_000)}},
		{Number: 21},
	}

	rate := decimal.RequireFromString("0.002")
	two := decimal.NewFromInt(2)
	for i := range levels {
		levels[i].CoinsPerTap = rate
		rate = rate.Mul(two)
		if i < len(levels)-1 {
			levels[i].NextLevel = levels[i+1].Number
		}
	}

	return levels
}

// Agency describes one of the fixed platform accounts.
type Agency struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	PhotoURL string
	Role     domain.Role
}

// Agencies are the verified platform accounts seeded when the store starts
// with no prior state.
var Agencies = []Agency{
	{ID: PrimaryAgencyID, Name: "SQ BOOM Platform Control", Email: "ethioska@gmail.com", Phone: "+251 90 000 0000", PhotoURL: "https://api.dicebear.com/7.x/bottts/svg?seed=admin", Role: domain.RoleAdmin},
	{ID: "620034", Name: "User Support & Approvals", Email: "seidk1430@gmail.com", Phone: "+251 91 123 4567", PhotoURL: "https://api.dicebear.com/7.x/bottts/svg?seed=support", Role: domain.RoleSupport},
	{ID: FeeReceiverID, Name: "SQ BOOM MS", Email: "sqboomms@gmail.com", Phone: "+251 98 765 4321", PhotoURL: "https://api.dicebear.com/7.x/bottts/svg?seed=bank", Role: domain.RoleReceiver},
	{ID: "748158", Name: "SQ BOOM App", Email: "sqboomapp@gmail.com", Phone: "+221 7X XXX XXXX", PhotoURL: "https://api.dicebear.com/7.x/bottts/svg?seed=app", Role: domain.RoleReceiver},
}

// SeedAccounts builds the initial account collection for a fresh store:
// every agency with its default credentials, a full wallet, and the terminal
// level.
func SeedAccounts() []*domain.Account {
	seedBalance := decimal.NewFromInt(1_000_000)

	accounts := make([]*domain.Account, 0, len(Agencies))
	for _, agency := range Agencies {
		accounts = append(accounts, &domain.Account{
			ID:                  agency.ID,
			Name:                agency.Name,
			Nickname:            agency.Name,
			Email:               agency.Email,
			Phone:               agency.Phone,
			PhotoURL:            agency.PhotoURL,
			Role:                agency.Role,
			Password:            "sqboom2025",
			SpendableCoins:      seedBalance,
			LifetimeEarned:      seedBalance,
			BonusCoins:          decimal.Zero,
			Level:               21,
			ClaimedCoupons:      []string{},
			VotedPolls:          []string{},
			VotedAdPolls:        []string{},
			Transactions:        []domain.Transaction{},
			BotAccumulatedCoins: decimal.Zero,
		})
	}

	return accounts
}
