package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoSnapshot indicates the backing store holds no persisted state yet.
var ErrNoSnapshot = errors.New("no snapshot persisted")

// Snapshot is the whole-document serialized form of the arena state. Load
// must restore every field verbatim, including the per-account claim and
// vote sets and the ordered transaction logs.
type Snapshot struct {
	State   *State    `json:"state"`
	SavedAt time.Time `json:"saved_at"`
}

// Storage persists state snapshots as whole-document blobs under fixed
// names. The engine does not dictate a byte format beyond round-trip
// fidelity.
type Storage interface {
	// Load returns the last persisted snapshot or ErrNoSnapshot.
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snapshot *Snapshot) error
}
