package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/velo/pkg/logger"
)

type ctxKey struct{}

func lastLine(buf *bytes.Buffer) map[string]any {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		return nil
	}
	return entry
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes json entries at or above the level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, slog.LevelInfo)

		log.Debug("hidden")
		require.Zero(t, buf.Len())

		log.Info("visible", "key", "value")
		entry := lastLine(&buf)
		require.Equal(t, "visible", entry["msg"])
		require.Equal(t, "value", entry["key"])
	})

	t.Run("extractors add request-scoped attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, slog.LevelInfo, func(ctx context.Context) (slog.Attr, bool) {
			if v, ok := ctx.Value(ctxKey{}).(string); ok {
				return slog.String("request_id", v), true
			}
			return slog.Attr{}, false
		})

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "handled")
		require.Equal(t, "req-1", lastLine(&buf)["request_id"])

		buf.Reset()
		log.InfoContext(context.Background(), "handled")
		require.NotContains(t, lastLine(&buf), "request_id")
	})

	t.Run("nil extractors are ignored", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, slog.LevelInfo, nil)
		require.NotPanics(t, func() { log.Info("still works") })
	})

	t.Run("extractors survive With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, slog.LevelInfo, func(ctx context.Context) (slog.Attr, bool) {
			return slog.String("always", "here"), true
		}).With(slog.String("component", "api"))

		log.InfoContext(context.Background(), "handled")
		entry := lastLine(&buf)
		require.Equal(t, "api", entry["component"])
		require.Equal(t, "here", entry["always"])
	})
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	require.NotPanics(t, func() { log.Error("discarded") })
}
