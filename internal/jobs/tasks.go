// Package jobs defines the background task types and the asynq scheduler,
// worker, and manager that run them.
package jobs

import (
	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	// TaskTypeTapsReset resets every player's daily tap counter.
	TaskTypeTapsReset = "taps:reset"
	// TaskTypeSnapshotPersist writes the current state snapshot to storage.
	TaskTypeSnapshotPersist = "snapshot:persist"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// TapsResetPayload carries the trigger time of a tap counter reset.
type TapsResetPayload struct {
	RequestedAt int64 `json:"requested_at"`
}

// SnapshotPersistPayload carries the trigger time of a snapshot write.
type SnapshotPersistPayload struct {
	RequestedAt int64 `json:"requested_at"`
}

// NewTapsResetTask builds the nightly tap counter reset task.
func NewTapsResetTask(requestedAt int64) (*asynq.Task, error) {
	payload, err := json.Marshal(TapsResetPayload{RequestedAt: requestedAt})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeTapsReset, payload, asynq.Queue(QueueCritical)), nil
}

// NewSnapshotPersistTask builds a snapshot persistence task.
func NewSnapshotPersistTask(requestedAt int64) (*asynq.Task, error) {
	payload, err := json.Marshal(SnapshotPersistPayload{RequestedAt: requestedAt})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeSnapshotPersist, payload, asynq.Queue(QueueDefault)), nil
}
