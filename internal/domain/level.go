package domain

import "github.com/shopspring/decimal"

// RequirementKind classifies a single level-up requirement.
type RequirementKind string

const (
	RequireCoins RequirementKind = "COINS"
	RequireInvites RequirementKind = "INVITES"
	// RequireManualApproval is never auto-satisfied by the progression
	// engine; advancing past such a level takes an administrative action.
	RequireManualApproval RequirementKind = "MANUAL_APPROVAL"
)

// LevelRequirement is one condition of a level; all requirements of a level
// must hold simultaneously for its next level to become reachable.
type LevelRequirement struct {
	Kind        RequirementKind `json:"kind"`
	Target      decimal.Decimal `json:"target"`
	Description string          `json:"description"`
}

// Level is a static catalog entry. CoinsPerTap is the reward rate applied to
// taps and bot accrual while the account holds this level. NextLevel zero
// marks the terminal level.
type Level struct {
	Number       int                `json:"number"`
	CoinsPerTap  decimal.Decimal    `json:"coins_per_tap"`
	Requirements []LevelRequirement `json:"requirements"`
	NextLevel    int                `json:"next_level"`
}

// Terminal reports whether the level has no successor.
func (l *Level) Terminal() bool {
	return l == nil || l.NextLevel == 0
}

// BotTier is a static automation catalog entry. Cost is zero in the current
// catalog but the selection contract still checks it.
type BotTier struct {
	Tier             int             `json:"tier"`
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	TapsPerHour      int             `json:"taps_per_hour"`
	LevelRequirement int             `json:"level_requirement"`
}
