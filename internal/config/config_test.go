package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gabornoise/internal/params"
)

func TestDefaults(t *testing.T) {
	cfg, err := NewConfigFromViper(New())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "gabornoise", cfg.Logger.ServiceName)
	assert.Equal(t, 1024, cfg.Display.Width)
	assert.Equal(t, params.DisplayName, cfg.Display.Title)
	assert.Zero(t, cfg.Announce.EveryFrames)

	_, fixed := cfg.FixedSeed()
	assert.False(t, fixed)

	values, err := cfg.StimulusValues()
	require.NoError(t, err)
	assert.Equal(t, params.Defaults(), values)
}

func TestConfigFile(t *testing.T) {
	v := New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
logger:
  level: debug
  format: json
display:
  fullscreen: true
  hud: true
seed: 1234
announce:
  every_frames: 60
stimulus:
  noise_nImpulses: 8
  contrast: 0.25
`)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Display.Fullscreen)
	assert.Equal(t, 60, cfg.Announce.EveryFrames)

	seed, fixed := cfg.FixedSeed()
	assert.True(t, fixed)
	assert.Equal(t, uint32(1234), seed)

	values, err := cfg.StimulusValues()
	require.NoError(t, err)
	assert.Equal(t, 8.0, values[params.NoiseImpulses])
	assert.Equal(t, 0.25, values[params.Contrast])
	assert.Equal(t, 800.0, values[params.TextureSize])
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GABORNOISE_STIMULUS_TEXTURESIZE", "512")
	t.Setenv("GABORNOISE_LOGGER_LEVEL", "warn")

	cfg, err := NewConfigFromViper(New())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)

	values, err := cfg.StimulusValues()
	require.NoError(t, err)
	assert.Equal(t, 512.0, values[params.TextureSize])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want string
	}{
		{"format", map[string]any{"logger.format": "xml"}, "logger.format"},
		{"window", map[string]any{"display.width": 0}, "display.width"},
		{"announce", map[string]any{"announce.every_frames": -3}, "announce.every_frames"},
		{"seed", map[string]any{"seed": int64(1) << 33}, "seed"},
		{"zero seed", map[string]any{"seed": 0}, "seed 0"},
		{"unknown parameter", map[string]any{"stimulus.brightness": 2.0}, "unknown stimulus parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := NewConfigFromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFullscreenIgnoresWindowSize(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("display.fullscreen", true)
	v.Set("display.width", 0)

	_, err := NewConfigFromViper(v)
	assert.NoError(t, err)
}
