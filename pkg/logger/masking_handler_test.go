package logger

import (
	"bytes"
	"log/slog"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maskedRecord(t *testing.T, logFn func(log *slog.Logger)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))
	logFn(log)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestMaskingHandler_RedactsSensitiveAttrs(t *testing.T) {
	record := maskedRecord(t, func(log *slog.Logger) {
		log.Info("login",
			slog.String("password", "sqboom2025"),
			slog.String("api_token", "abc123"),
			slog.String("account_id", "SQ_B_1"),
		)
	})

	assert.Equal(t, "***", record["password"])
	assert.Equal(t, "***", record["api_token"])
	assert.Equal(t, "SQ_B_1", record["account_id"])
}

func TestMaskingHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil))).With(slog.String("db_dsn", "postgres://u:p@host/db"))
	log.Info("connected")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "***", record["db_dsn"])
}

func TestMaskingHandler_KeyMatchingIsCaseInsensitive(t *testing.T) {
	record := maskedRecord(t, func(log *slog.Logger) {
		log.Info("request", slog.String("Authorization", "Bearer abc"))
	})

	assert.Equal(t, "***", record["Authorization"])
}
