package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/config"
	"episodic/internal/logging"
	"episodic/internal/services"
)

func noColor() *bool {
	v := false
	return &v
}

func TestConsoleLoggerWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "episodic.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		Console:     &console,
		OutputPaths: []string{logPath},
		Color:       noColor(),
	})
	require.NoError(t, err)

	logging.NewComponentLogger(logger, "ingest").Info("episode inserted",
		logging.String("title", "The Fall of Rome"),
		logging.Int64(logging.FieldEpisodeID, 7),
	)
	logger.Debug("hidden")

	line := console.String()
	assert.Contains(t, line, "INFO ingest: episode inserted episode_id=7")
	assert.Contains(t, line, `title="The Fall of Rome"`)
	assert.NotContains(t, line, "hidden")
	assert.NotContains(t, line, ".go:")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, line, string(content))
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Console: &console, Color: noColor()})
	require.NoError(t, err)
	logger.Debug("with caller")
	assert.Contains(t, console.String(), ".go:")
}

func TestConsoleColorOnlyWhenEnabled(t *testing.T) {
	var console bytes.Buffer
	on := true
	logger, err := logging.New(logging.Options{Console: &console, Color: &on})
	require.NoError(t, err)
	logger.Warn("careful")
	assert.Contains(t, console.String(), "\x1b[33mWARN\x1b[0m")
}

func TestJSONLogger(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Console: &console})
	require.NoError(t, err)
	logger.Info("json message", logging.String(logging.FieldEventType, "duplicate_detected"), logging.Error(errors.New("x")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &record))
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "json message", record["msg"])
	assert.Equal(t, "duplicate_detected", record["event_type"])
	_, err = time.Parse(time.RFC3339, record["ts"].(string))
	assert.NoError(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNewFromConfigLevelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "error"
	logger, err := logging.NewFromConfig(&cfg, "debug", io.Discard)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(t.Context(), -4))
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithEpisodeID(t.Context(), 123)
	ctx = services.WithStage(ctx, "clean")
	ctx = services.WithRunID(ctx, "run-xyz")

	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Console: &console})
	require.NoError(t, err)
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &record))
	assert.EqualValues(t, 123, record[logging.FieldEpisodeID])
	assert.Equal(t, "clean", record[logging.FieldStage])
	assert.Equal(t, "run-xyz", record[logging.FieldRunID])
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Console: &console})
	require.NoError(t, err)
	logging.WarnWithContext(logger, "something odd", "odd_event")

	var record map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &record))
	assert.Equal(t, "odd_event", record[logging.FieldEventType])
	assert.NotEmpty(t, record[logging.FieldErrorHint])
	assert.NotEmpty(t, record[logging.FieldImpact])
}

func TestPruneOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "validation_report_old.json")
	fresh := filepath.Join(dir, "validation_report_new.json")
	active := filepath.Join(dir, "validation_report_active.json")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, fresh, active, other} {
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}
	past := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{old, active, other} {
		require.NoError(t, os.Chtimes(path, past, past))
	}

	removed := logging.PruneOldFiles(logging.NewNop(), 5, dir, "validation_report_*.json", active)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, active)
	assert.FileExists(t, other)

	assert.Zero(t, logging.PruneOldFiles(nil, 0, dir, "*", ""))
	assert.True(t, strings.HasPrefix(filepath.Base(fresh), "validation_report_"))
}
