// Package progression evaluates level-up eligibility against the level
// ladder and derives the progress view shown to players.
package progression

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sqboom/rewards-engine/internal/catalog"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/store"
	"github.com/sqboom/rewards-engine/pkg/metrics"
)

// Engine is the leveling state machine. Its sole transition advances an
// account a single level when every requirement of the next level holds.
type Engine struct {
	arena *store.Arena
	log   *slog.Logger
}

// NewEngine constructs a progression Engine.
func NewEngine(arena *store.Arena, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{arena: arena, log: log}
}

// EvaluateLevelUp advances the account by at most one level. Callers wanting
// chained level-ups within one logical action re-run the evaluation. The
// level never decreases and the terminal level is a no-op.
func (e *Engine) EvaluateLevelUp(accountID string) (*domain.Account, error) {
	var updated *domain.Account
	err := e.arena.Update(func(state *store.State) error {
		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if next, ok := nextLevel(account.Level); ok && MeetsRequirements(account, next.Requirements) {
			from := account.Level
			account.Level = next.Number
			metrics.RecordLevelUp(from, next.Number)
			e.log.Info("account leveled up",
				slog.String("account_id", account.ID),
				slog.Int("from", from),
				slog.Int("to", next.Number),
			)
		}

		updated = account.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// MeetsRequirements reports whether every requirement holds simultaneously.
// Manual-approval requirements never auto-satisfy; they gate progression
// until an administrative action advances the account.
func MeetsRequirements(account *domain.Account, requirements []domain.LevelRequirement) bool {
	for _, req := range requirements {
		switch req.Kind {
		case domain.RequireCoins:
			if account.LifetimeEarned.LessThan(req.Target) {
				return false
			}
		case domain.RequireInvites:
			if decimal.NewFromInt(int64(account.Invites)).LessThan(req.Target) {
				return false
			}
		case domain.RequireManualApproval:
			return false
		default:
			return false
		}
	}
	return true
}

// Progress is the read-only progress view toward the next level.
type Progress struct {
	Percent      float64  `json:"percent"`
	Requirements []string `json:"requirements"`
	LevelLabel   string   `json:"level_label"`
}

// Progress computes the averaged per-requirement completion toward the next
// level, capped at 100 percent.
func (e *Engine) Progress(accountID string) (Progress, error) {
	account, err := e.arena.Account(accountID)
	if err != nil {
		return Progress{}, err
	}

	next, ok := nextLevel(account.Level)
	if !ok {
		return Progress{
			Percent:      100,
			Requirements: []string{"Max level reached!"},
			LevelLabel:   fmt.Sprintf("Level %d", account.Level),
		}, nil
	}

	var total float64
	labels := make([]string, 0, len(next.Requirements))
	for _, req := range next.Requirements {
		var current decimal.Decimal
		switch req.Kind {
		case domain.RequireCoins:
			current = account.LifetimeEarned
			labels = append(labels, fmt.Sprintf("%s / %s Coins", compact(current), compact(req.Target)))
		case domain.RequireInvites:
			current = decimal.NewFromInt(int64(account.Invites))
			labels = append(labels, fmt.Sprintf("%d/%s Invites", account.Invites, req.Target.String()))
		default:
			labels = append(labels, strings.ReplaceAll(req.Description, "{value}", req.Target.String()))
		}

		if req.Target.IsPositive() {
			ratio, _ := decimal.Min(current, req.Target).Div(req.Target).Float64()
			total += ratio * 100
		}
	}

	percent := total / float64(len(next.Requirements))
	if percent > 100 {
		percent = 100
	}

	return Progress{
		Percent:      percent,
		Requirements: labels,
		LevelLabel:   fmt.Sprintf("Level %d → %d", account.Level, next.Number),
	}, nil
}

func nextLevel(current int) (domain.Level, bool) {
	level, ok := catalog.LevelByNumber(current)
	if !ok || level.Terminal() {
		return domain.Level{}, false
	}
	return catalog.LevelByNumber(level.NextLevel)
}

// compact renders large coin counts the way the wallet UI shows them.
func compact(value decimal.Decimal) string {
	abs := value.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000_000)):
		return trimZero(value.Div(decimal.NewFromInt(1_000_000_000))) + "B"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		return trimZero(value.Div(decimal.NewFromInt(1_000_000))) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000)):
		return trimZero(value.Div(decimal.NewFromInt(1_000))) + "K"
	default:
		return value.Round(2).String()
	}
}

func trimZero(value decimal.Decimal) string {
	return value.Round(1).String()
}
