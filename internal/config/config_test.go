package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alitto/shuttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ThreadSingle, cfg.Worker.Thread)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shuttle.yaml")
	err := os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
worker:
  thread: ants
  pool_size: 8
pump:
  exclude: [input, focus]
metrics:
  addr: ":9090"
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ThreadAnts, cfg.Worker.Thread)
	assert.Equal(t, 8, cfg.Worker.PoolSize)
	assert.Equal(t, []string{"input", "focus"}, cfg.Pump.Exclude)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shuttle.toml")
	err := os.WriteFile(path, []byte(`
[worker]
thread = "workerpool"
pool_size = 2

[pump]
exclude = ["paint"]
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ThreadWorkerPool, cfg.Worker.Thread)
	assert.Equal(t, 2, cfg.Worker.PoolSize)
	assert.Equal(t, []string{"paint"}, cfg.Pump.Exclude)

	// Sections absent from the file keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(".ini", "shuttle.ini", []byte("thread=single"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseMalformed(t *testing.T) {
	_, err := LoadFromReader(".toml", strings.NewReader("[worker\nthread = "))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "<reader>", parseErr.Path)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Worker.Thread = "ants"
	cfg.Worker.PoolSize = 0
	cfg.Pump.Exclude = []string{"input", "keyboard"}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "log.level")
	assert.Contains(t, msg, "log.format")
	assert.Contains(t, msg, "worker.pool_size")
	assert.Contains(t, msg, `"keyboard"`)
}

func TestValidateUnknownThread(t *testing.T) {
	cfg := Default()
	cfg.Worker.Thread = "fiber"

	assert.ErrorContains(t, cfg.Validate(), "worker.thread")
}

func TestWorkerThread(t *testing.T) {
	tests := []struct {
		thread string
		check  func(shuttle.WorkerThread) bool
	}{
		{ThreadSingle, func(w shuttle.WorkerThread) bool { _, ok := w.(*shuttle.SingleWorkerThread); return ok }},
		{ThreadMulti, func(w shuttle.WorkerThread) bool { _, ok := w.(*shuttle.MultiWorkerThread); return ok }},
		{ThreadAnts, func(w shuttle.WorkerThread) bool { _, ok := w.(*shuttle.AntsWorkerThread); return ok }},
		{ThreadWorkerPool, func(w shuttle.WorkerThread) bool { _, ok := w.(*shuttle.WorkerPoolThread); return ok }},
	}

	for _, test := range tests {
		t.Run(test.thread, func(t *testing.T) {
			thread, err := WorkerConfig{Thread: test.thread, PoolSize: 2}.WorkerThread()
			require.NoError(t, err)
			assert.True(t, test.check(thread))
		})
	}

	_, err := WorkerConfig{Thread: "fiber"}.WorkerThread()
	assert.Error(t, err)
}

func TestPumpFilter(t *testing.T) {
	filter, err := PumpConfig{}.Filter()
	require.NoError(t, err)
	assert.Nil(t, filter)

	filter, err = PumpConfig{Exclude: []string{"input"}}.Filter()
	require.NoError(t, err)
	assert.False(t, filter(shuttle.NewEvent(shuttle.KindInput, nil)))
	assert.True(t, filter(shuttle.NewEvent(shuttle.KindPaint, nil)))

	_, err = PumpConfig{Exclude: []string{"keyboard"}}.Filter()
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shuttle.log")

	logger, closer, err := LogConfig{Level: "warn", Format: "json", File: path}.Logger()
	require.NoError(t, err)

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	logger.Warn("pump stalled", "depth", 2)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pump stalled"`)
	assert.Contains(t, string(data), `"depth":2`)
}
