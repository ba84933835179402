package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json logger writes parseable entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "service.log")
		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("collection created", zap.String("invoice", "INV-1001"))
		require.NoError(t, log.Sync())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Equal(t, "collection created", entry["msg"])
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "INV-1001", entry["invoice"])
		assert.NotEmpty(t, entry["time"])
	})

	t.Run("level threshold filters entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "service.log")
		log, err := New(&Config{Level: "warn", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("suppressed")
		log.Warn("kept")
		require.NoError(t, log.Sync())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "suppressed")
		assert.Contains(t, string(raw), "kept")
	})

	t.Run("console format builds", func(t *testing.T) {
		log, err := New(&Config{Level: "debug", Format: "console", Output: "stdout"})
		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("unopenable file output is an error", func(t *testing.T) {
		_, err := New(&Config{
			Level:  "info",
			Format: "json",
			Output: filepath.Join(t.TempDir(), "missing", "service.log"),
		})
		assert.Error(t, err)
	})
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		t.Run(env, func(t *testing.T) {
			log, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, levelFor(tt.level))
		})
	}
}

func TestOpenSink(t *testing.T) {
	for _, output := range []string{"stdout", "STDOUT", "stderr", ""} {
		sink, err := openSink(output)
		require.NoError(t, err)
		assert.NotNil(t, sink)
	}

	path := filepath.Join(t.TempDir(), "out.log")
	sink, err := openSink(path)
	require.NoError(t, err)
	assert.NotNil(t, sink)
	assert.FileExists(t, path)
}

func TestSync(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	// stdout may refuse the flush on some platforms; only panics matter here
	_ = Sync(log)
}
