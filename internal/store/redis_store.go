package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	redis "github.com/redis/go-redis/v9"

	"github.com/sqboom/rewards-engine/internal/domain"
)

// Fixed blob names. Each document is replaced wholesale on save.
const (
	redisKeyAccounts = "sqboom:accounts"
	redisKeyMessages = "sqboom:messages"
	redisKeySettings = "sqboom:settings"
	redisKeySavedAt  = "sqboom:saved_at"
)

// RedisStorage persists snapshots as whole-document JSON blobs in Redis.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStorage builds a Redis-backed Storage.
func NewRedisStorage(client *redis.Client, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{client: client, log: log}
}

// Load restores the snapshot from the fixed keys or reports ErrNoSnapshot.
func (s *RedisStorage) Load(ctx context.Context) (*Snapshot, error) {
	accountsBlob, err := s.client.Get(ctx, redisKeyAccounts).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("get accounts blob: %w", err)
	}

	state := &State{}
	if err := json.Unmarshal(accountsBlob, &state.Accounts); err != nil {
		return nil, fmt.Errorf("decode accounts blob: %w", err)
	}

	messagesBlob, err := s.client.Get(ctx, redisKeyMessages).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get messages blob: %w", err)
	}
	if len(messagesBlob) > 0 {
		if err := json.Unmarshal(messagesBlob, &state.Messages); err != nil {
			return nil, fmt.Errorf("decode messages blob: %w", err)
		}
	}
	if state.Messages == nil {
		state.Messages = []*domain.ChannelMessage{}
	}

	settingsBlob, err := s.client.Get(ctx, redisKeySettings).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get settings blob: %w", err)
	}
	if len(settingsBlob) > 0 {
		if err := json.Unmarshal(settingsBlob, &state.Settings); err != nil {
			return nil, fmt.Errorf("decode settings blob: %w", err)
		}
	}

	snapshot := &Snapshot{State: state}
	if savedAt, err := s.client.Get(ctx, redisKeySavedAt).Result(); err == nil {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, savedAt); parseErr == nil {
			snapshot.SavedAt = parsed
		}
	}

	return snapshot, nil
}

// Save replaces all blobs atomically through a transactional pipeline.
func (s *RedisStorage) Save(ctx context.Context, snapshot *Snapshot) error {
	accountsBlob, err := json.Marshal(snapshot.State.Accounts)
	if err != nil {
		return fmt.Errorf("encode accounts blob: %w", err)
	}
	messagesBlob, err := json.Marshal(snapshot.State.Messages)
	if err != nil {
		return fmt.Errorf("encode messages blob: %w", err)
	}
	settingsBlob, err := json.Marshal(snapshot.State.Settings)
	if err != nil {
		return fmt.Errorf("encode settings blob: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyAccounts, accountsBlob, 0)
	pipe.Set(ctx, redisKeyMessages, messagesBlob, 0)
	pipe.Set(ctx, redisKeySettings, settingsBlob, 0)
	pipe.Set(ctx, redisKeySavedAt, snapshot.SavedAt.Format(time.RFC3339Nano), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to save snapshot to redis", slog.Any("error", err))
		return fmt.Errorf("exec snapshot pipeline: %w", err)
	}

	return nil
}
