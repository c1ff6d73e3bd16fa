package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelDebug)

	ctx := AppendCtx(context.Background(), slog.String("request", "abc"))
	ctx = AppendCtx(ctx, slog.Group("qr", slog.Int("version", 2)))
	log.InfoContext(ctx, "combined", "frames", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "combined", rec["msg"])
	assert.Equal(t, "abc", rec["request"])
	assert.Equal(t, float64(3), rec["frames"])
	assert.Equal(t, map[string]any{"version": float64(2)}, rec["qr"])
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelWarn)
	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.With("k", "v").Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, l)

	l, ok = ParseLevel("loud")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestWriter_File(t *testing.T) {
	assert.Equal(t, os.Stdout, Writer(""))

	path := filepath.Join(t.TempDir(), "svc.log")
	w := Writer(path)
	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
