// Package handlers implements the asynq task handlers.
package handlers

import (
	"context"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/jobs"
	"github.com/sqboom/rewards-engine/internal/store"
)

// TapsResetHandler zeroes every player's daily tap counter.
type TapsResetHandler struct {
	arena *store.Arena
	log   *slog.Logger
}

// NewTapsResetHandler constructs the handler.
func NewTapsResetHandler(arena *store.Arena, log *slog.Logger) *TapsResetHandler {
	if log == nil {
		log = slog.Default()
	}

	return &TapsResetHandler{arena: arena, log: log}
}

// ProcessTask resets the tap counters across all player accounts.
func (h *TapsResetHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.TapsResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "taps reset: failed to decode payload", slog.Any("error", err))
		return err
	}

	reset := 0
	err := h.arena.Update(func(state *store.State) error {
		for _, account := range state.Accounts {
			if account.Role != domain.RolePlayer || account.TapsToday == 0 {
				continue
			}
			account.TapsToday = 0
			reset++
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.InfoContext(ctx, "taps reset complete", slog.Int("accounts", reset))
	return nil
}
