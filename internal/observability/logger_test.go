package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gabornoise/internal/config"
)

func TestInitialize(t *testing.T) {
	t.Run("console with colors", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "gabornoise",
			Colors:      config.ColorConfig{Info: "green"},
		}, zapcore.AddSync(&buf))
		GetLogger().Named("stimulus").Info("Loaded stimulus", zap.Uint32("seed", 9))

		out := buf.String()
		assert.Contains(t, out, colorGreen+"INFO"+colorReset)
		assert.Contains(t, out, "gabornoise.stimulus.")
		assert.Contains(t, out, `"seed": 9`)
	})

	t.Run("json with level filter", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "svc"}, zapcore.AddSync(&buf))
		GetLogger().Info("dropped")
		GetLogger().Warn("kept")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "svc", entry["logger"])
	})

	t.Run("bad level falls back to info", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "loud", Format: "json"}, zapcore.AddSync(&buf))
		GetLogger().Debug("hidden")
		assert.Zero(t, buf.Len())
		GetLogger().Info("shown")
		assert.NotZero(t, buf.Len())
	})

	t.Run("tees to file", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		path := filepath.Join(t.TempDir(), "run.log")
		var buf bytes.Buffer

		Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&buf))
		GetLogger().Info("to both")
		Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"to both"`)
		assert.Contains(t, buf.String(), "to both")
	})

	t.Run("second initialize is ignored", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		var first, second bytes.Buffer

		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))
		GetLogger().Info("once")
		assert.NotZero(t, first.Len())
		assert.Zero(t, second.Len())
	})
}

func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

type record struct{ seed uint32 }

func (r record) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", "Dynamic_Gabor_Noise")
	enc.AddUint32("seed", r.seed)
	return nil
}

func TestAnnounceLogger(t *testing.T) {
	var buf bytes.Buffer
	a := NewAnnounceLoggerTo(zapcore.AddSync(&buf), nil)
	a.Announce(0, record{seed: 5})
	a.Announce(60, record{seed: 5})
	require.NoError(t, a.Close())

	sc := bufio.NewScanner(&buf)
	var frames []float64
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		stim := line["stimulus"].(map[string]any)
		assert.Equal(t, "Dynamic_Gabor_Noise", stim["type"])
		assert.EqualValues(t, 5, stim["seed"])
		frames = append(frames, line["frame"].(float64))
	}
	assert.Equal(t, []float64{0, 60}, frames)
}

func TestAnnounceLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "announce.jsonl")
	a := NewAnnounceLogger(config.AnnounceConfig{File: path, MaxSize: 1}, zap.NewNop())
	a.Announce(1, record{seed: 2})
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"frame":1`)
}
