package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"gabornoise/internal/config"
	"gabornoise/internal/gpu/gputest"
	"gabornoise/internal/params"
	"gabornoise/internal/stimulus"
)

func loadConfig(t *testing.T, v *viper.Viper) *config.Config {
	t.Helper()
	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestApplySets(t *testing.T) {
	v := config.New()
	require.NoError(t, applySets(v, map[string]string{
		params.Contrast:      "0.3",
		params.NoiseImpulses: "7",
	}))
	values, err := loadConfig(t, v).StimulusValues()
	require.NoError(t, err)
	assert.Equal(t, 0.3, values[params.Contrast])
	assert.Equal(t, 7.0, values[params.NoiseImpulses])

	assert.ErrorIs(t, applySets(v, map[string]string{"gamma": "2"}), params.ErrInvalid)
	assert.Error(t, applySets(v, map[string]string{params.Contrast: "high"}))
}

func TestRootCommand_Params(t *testing.T) {
	h := &host{}
	root := newRootCmd(h)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"params", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	// An explicit config file that does not exist is an error.
	require.Error(t, root.Execute())

	path := filepath.Join(t.TempDir(), "gabornoise.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stimulus:\n  textureSize: 512\n"), 0o644))
	h = &host{}
	root = newRootCmd(h)
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"params", "--config", path})
	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(params.Schema())+1)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Regexp(t, `^textureSize\s+integer\s+yes\s+px\s+800\s+512$`, lines[5])
	assert.Regexp(t, `^horizontalScreenSize\s+float\s+no\s+mm\s+477\s+477$`, lines[4])
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd(&host{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), params.DisplayName+" "+Version)
}

func TestParseEntries(t *testing.T) {
	entries := map[string]string{}
	for name, v := range params.Defaults() {
		entries[name] = formatValue(mustLookup(t, name), v)
	}
	values, err := parseEntries(entries)
	require.NoError(t, err)
	assert.Equal(t, params.Defaults(), values)

	entries[params.Contrast] = "1"
	_, err = parseEntries(entries)
	assert.ErrorIs(t, err, params.ErrInvalid)

	entries[params.Contrast] = " 0.4 "
	entries[params.Sigma] = "wide"
	_, err = parseEntries(entries)
	assert.ErrorIs(t, err, params.ErrInvalid)
	assert.Contains(t, err.Error(), params.Sigma)
}

func mustLookup(t *testing.T, name string) params.Spec {
	t.Helper()
	s, ok := params.Lookup(name)
	require.True(t, ok)
	return s
}

func TestSaveValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, saveValues(config.New(), map[string]float64{params.Elevation: -2.5}, path))

	v := config.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	values, err := loadConfig(t, v).StimulusValues()
	require.NoError(t, err)
	assert.Equal(t, -2.5, values[params.Elevation])
}

func newTestStimulus(t *testing.T, v *viper.Viper) (*stimulus.Stimulus, *gputest.GL) {
	t.Helper()
	gl := gputest.New()
	s, err := newStimulus(loadConfig(t, v), gl, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Load())
	return s, gl
}

func TestNewStimulus_FixedSeed(t *testing.T) {
	v := config.New()
	v.Set("seed", 99)
	s, _ := newTestStimulus(t, v)
	assert.Equal(t, uint32(99), s.Seed())
}

func TestNewStimulus_ShaderDir(t *testing.T) {
	v := config.New()
	v.Set("shaders.dir", t.TempDir())
	s, err := newStimulus(loadConfig(t, v), gputest.New(), zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, s.Load())
}

func TestControls(t *testing.T) {
	s, gl := newTestStimulus(t, config.New())
	require.NoError(t, s.Play())
	loads := 0
	c := newControls(s, zaptest.NewLogger(t), func() { loads++ })
	p := s.Parameters()

	quit, err := c.key(glfw.KeyUp)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.InDelta(t, 0.55, p.Float(params.Contrast), 1e-12)

	for i := 0; i < 30; i++ {
		_, _ = c.key(glfw.KeyUp)
	}
	assert.InDelta(t, 0.95, p.Float(params.Contrast), 1e-12)
	for i := 0; i < 30; i++ {
		_, _ = c.key(glfw.KeyDown)
	}
	assert.InDelta(t, 0.05, p.Float(params.Contrast), 1e-12)

	_, _ = c.key(glfw.KeyT)
	assert.Zero(t, p.Float(params.Transparency))
	_, _ = c.key(glfw.KeyT)
	assert.Equal(t, 1.0, p.Float(params.Transparency))

	_, _ = c.key(glfw.KeySpace)
	assert.False(t, s.Playing())
	_, _ = c.key(glfw.KeySpace)
	assert.True(t, s.Playing())

	before := s.LoadID()
	_, err = c.key(glfw.KeyR)
	require.NoError(t, err)
	assert.NotEqual(t, before, s.LoadID())
	assert.True(t, s.Playing())
	assert.Equal(t, 1, loads)
	assert.Equal(t, 2, gl.LiveBuffers())

	quit, err = c.key(glfw.KeyA)
	require.NoError(t, err)
	assert.False(t, quit)
	quit, _ = c.key(glfw.KeyEscape)
	assert.True(t, quit)
}

func TestControls_FixedParameter(t *testing.T) {
	s, _ := newTestStimulus(t, config.New())
	require.NoError(t, s.Parameters().Bind(params.Contrast, params.Fixed(0.5)))
	c := newControls(s, zap.NewNop(), nil)

	_, err := c.apply(actionContrastUp)
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Parameters().Float(params.Contrast))
}
