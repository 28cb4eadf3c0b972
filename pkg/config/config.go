package config

import "fmt"

// Config holds runtime configuration for the rewards engine.
type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HTTPPort string `mapstructure:"http_port" validate:"required"`

	// Storage selects the snapshot backend: redis, postgres, or memory.
	Storage string `mapstructure:"storage" validate:"required,oneof=redis postgres memory"`

	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Log      LogConfig      `mapstructure:"log"`
	Jobs     JobsConfig     `mapstructure:"jobs"`

	SentryDSN string `mapstructure:"sentry_dsn"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LogConfig holds file rotation settings; an empty path disables file output.
type LogConfig struct {
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// JobsConfig holds the background job settings.
type JobsConfig struct {
	// RecomputeInterval is the autopilot recompute cadence in seconds.
	RecomputeInterval int `mapstructure:"recompute_interval" validate:"gte=1"`
	// TapsResetCron is the asynq cron spec for the nightly tap counter reset.
	TapsResetCron string `mapstructure:"taps_reset_cron" validate:"required"`
	// SnapshotCron is the asynq cron spec for periodic snapshot persistence.
	SnapshotCron string `mapstructure:"snapshot_cron" validate:"required"`
	// WorkerConcurrency caps concurrent asynq task handlers.
	WorkerConcurrency int `mapstructure:"worker_concurrency" validate:"gte=1"`
}

// DSN returns the PostgreSQL connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
