package handlers

import (
	"context"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/sqboom/rewards-engine/internal/jobs"
	"github.com/sqboom/rewards-engine/internal/store"
)

// SnapshotPersistHandler flushes the in-memory state to the snapshot store.
type SnapshotPersistHandler struct {
	arena *store.Arena
	log   *slog.Logger
}

// NewSnapshotPersistHandler constructs the handler.
func NewSnapshotPersistHandler(arena *store.Arena, log *slog.Logger) *SnapshotPersistHandler {
	if log == nil {
		log = slog.Default()
	}

	return &SnapshotPersistHandler{arena: arena, log: log}
}

// ProcessTask writes the current state snapshot to storage.
func (h *SnapshotPersistHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.SnapshotPersistPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "snapshot persist: failed to decode payload", slog.Any("error", err))
		return err
	}

	if err := h.arena.Persist(ctx); err != nil {
		h.log.ErrorContext(ctx, "snapshot persist failed", slog.Any("error", err))
		return err
	}

	h.log.DebugContext(ctx, "snapshot persisted")
	return nil
}
