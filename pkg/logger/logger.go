// Package logger builds the application slog.Logger: JSON output with
// optional file rotation, sensitive-field masking, and Sentry fanout for
// errors.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	Level      string
	Env        string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	SentryDSN  string
}

// New constructs the logger. The returned flush function drains pending
// Sentry events and must be called on shutdown.
func New(opts Options) (*slog.Logger, func(), error) {
	var writer io.Writer = os.Stdout
	if opts.FilePath != "" {
		writer = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
	}

	handler := slog.Handler(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: parseLevel(opts.Level)}))

	flush := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init sentry: %w", err)
		}

		sentryHandler := slogsentry.Option{Level: slog.LevelError}.NewSentryHandler()
		handler = newTeeHandler(handler, sentryHandler)
		flush = func() { sentry.Flush(flushTimeout) }
	}

	return slog.New(NewMaskingHandler(handler)), flush, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
