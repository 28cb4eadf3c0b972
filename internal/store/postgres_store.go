package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sqboom/rewards-engine/internal/domain"
)

const (
	pgDocAccounts = "accounts"
	pgDocMessages = "messages"
	pgDocSettings = "settings"
)

// PostgresStorage persists snapshots in a single key/document table, one
// whole JSON blob per fixed name.
type PostgresStorage struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresStorage builds a Postgres-backed Storage.
func NewPostgresStorage(db *sql.DB, log *slog.Logger) *PostgresStorage {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStorage{db: db, log: log}
}

// EnsureSchema creates the snapshot table when missing.
func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			document JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

// Load restores the snapshot documents or reports ErrNoSnapshot.
func (s *PostgresStorage) Load(ctx context.Context) (*Snapshot, error) {
	state := &State{Messages: []*domain.ChannelMessage{}}

	var savedAt time.Time
	accountsBlob, updatedAt, err := s.document(ctx, pgDocAccounts)
	if err != nil {
		return nil, err
	}
	if accountsBlob == nil {
		return nil, ErrNoSnapshot
	}
	savedAt = updatedAt

	if err := json.Unmarshal(accountsBlob, &state.Accounts); err != nil {
		return nil, fmt.Errorf("decode accounts document: %w", err)
	}

	if blob, _, err := s.document(ctx, pgDocMessages); err != nil {
		return nil, err
	} else if blob != nil {
		if err := json.Unmarshal(blob, &state.Messages); err != nil {
			return nil, fmt.Errorf("decode messages document: %w", err)
		}
	}

	if blob, _, err := s.document(ctx, pgDocSettings); err != nil {
		return nil, err
	} else if blob != nil {
		if err := json.Unmarshal(blob, &state.Settings); err != nil {
			return nil, fmt.Errorf("decode settings document: %w", err)
		}
	}

	return &Snapshot{State: state, SavedAt: savedAt}, nil
}

// Save upserts all documents inside one database transaction.
func (s *PostgresStorage) Save(ctx context.Context, snapshot *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	documents := map[string]interface{}{
		pgDocAccounts: snapshot.State.Accounts,
		pgDocMessages: snapshot.State.Messages,
		pgDocSettings: snapshot.State.Settings,
	}

	const query = `
		INSERT INTO snapshots (name, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`

	for name, doc := range documents {
		blob, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s document: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, query, name, blob, snapshot.SavedAt); err != nil {
			s.log.Error("failed to upsert snapshot document", slog.String("name", name), slog.Any("error", err))
			return fmt.Errorf("upsert %s document: %w", name, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStorage) document(ctx context.Context, name string) ([]byte, time.Time, error) {
	const query = `SELECT document, updated_at FROM snapshots WHERE name = $1`

	var blob []byte
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, query, name).Scan(&blob, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("select %s document: %w", name, err)
	}

	return blob, updatedAt, nil
}
