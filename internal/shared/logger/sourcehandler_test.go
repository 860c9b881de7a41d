package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTextLogger(buf *bytes.Buffer, minSource slog.Level) *slog.Logger {
	base := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug, ReplaceAttr: redactAttr})
	return slog.New(NewSourceHandler(base, minSource))
}

func TestSourceHandler_Threshold(t *testing.T) {
	tests := []struct {
		name       string
		minSource  slog.Level
		level      slog.Level
		wantSource bool
	}{
		{"info below warn threshold", slog.LevelWarn, slog.LevelInfo, false},
		{"warn at threshold", slog.LevelWarn, slog.LevelWarn, true},
		{"error above threshold", slog.LevelWarn, slog.LevelError, true},
		{"debug threshold covers everything", slog.LevelDebug, slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newTextLogger(&buf, tt.minSource).Log(context.Background(), tt.level, "pool refreshed")

			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
		})
	}
}

func TestSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := newTextLogger(&buf, slog.LevelError).With("owner", "acme").WithGroup("pool")
	log.Info("bound", "id", "p1")

	out := buf.String()
	assert.Contains(t, out, "owner=acme")
	assert.Contains(t, out, "pool.id=p1")
	assert.NotContains(t, out, "source=")
}

func TestSourceHandler_EnabledFollowsWrappedHandler(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := NewSourceHandler(base, slog.LevelDebug)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestRedactAttr(t *testing.T) {
	var buf bytes.Buffer
	newTextLogger(&buf, slog.LevelError).Info("login",
		"principal", "alice",
		"access_token", "eyJhbGciOi",
		"Authorization", "Bearer eyJhbGciOi",
		"db_password", "hunter2",
	)

	out := buf.String()
	assert.Contains(t, out, "principal=alice")
	assert.NotContains(t, out, "eyJhbGciOi")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "access_token="+redacted)
}

func TestTintAttr_RendersErrors(t *testing.T) {
	a := tintAttr(nil, slog.Any("error", errors.New("boom")))
	assert.NotEqual(t, "error", a.Key, "errors are handed to tint for formatting")

	a = tintAttr(nil, slog.String("secret", "x"))
	assert.Equal(t, redacted, a.Value.String())
}
