// Package config loads host settings and stimulus parameter values through
// viper.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"gabornoise/internal/params"
)

// EnvPrefix scopes environment overrides, e.g. GABORNOISE_LOGGER_LEVEL.
const EnvPrefix = "GABORNOISE"

// TimeSeed selects a wall-clock seed on every load.
const TimeSeed = -1

type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
	Fatal string `mapstructure:"fatal"`
}

type LoggerConfig struct {
	Level       string      `mapstructure:"level"`
	Format      string      `mapstructure:"format"`
	AddSource   bool        `mapstructure:"add_source"`
	ServiceName string      `mapstructure:"service_name"`
	LogFile     string      `mapstructure:"log_file"`
	MaxSize     int         `mapstructure:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"`
	Compress    bool        `mapstructure:"compress"`
	Colors      ColorConfig `mapstructure:"colors"`
}

// DisplayConfig describes the presentation window.
type DisplayConfig struct {
	Fullscreen bool   `mapstructure:"fullscreen"`
	Monitor    int    `mapstructure:"monitor"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	VSync      bool   `mapstructure:"vsync"`
	HUD        bool   `mapstructure:"hud"`
	Title      string `mapstructure:"title"`
}

type ShadersConfig struct {
	// Dir overrides the embedded sources when set.
	Dir string `mapstructure:"dir"`
}

// AnnounceConfig controls the replay log. EveryFrames of 0 announces only
// on load.
type AnnounceConfig struct {
	File        string `mapstructure:"file"`
	EveryFrames int    `mapstructure:"every_frames"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
}

type Config struct {
	Logger   LoggerConfig       `mapstructure:"logger"`
	Display  DisplayConfig      `mapstructure:"display"`
	Shaders  ShadersConfig      `mapstructure:"shaders"`
	Announce AnnounceConfig     `mapstructure:"announce"`
	Seed     int64              `mapstructure:"seed"`
	Stimulus map[string]float64 `mapstructure:"stimulus"`
}

// SetDefaults registers every key with viper so env and file overrides
// resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gabornoise")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("display.fullscreen", false)
	v.SetDefault("display.monitor", 0)
	v.SetDefault("display.width", 1024)
	v.SetDefault("display.height", 768)
	v.SetDefault("display.vsync", true)
	v.SetDefault("display.hud", false)
	v.SetDefault("display.title", params.DisplayName)

	v.SetDefault("shaders.dir", "")

	v.SetDefault("announce.file", "")
	v.SetDefault("announce.every_frames", 0)
	v.SetDefault("announce.max_size", 100)
	v.SetDefault("announce.max_backups", 10)

	v.SetDefault("seed", TimeSeed)

	for _, s := range params.Schema() {
		v.SetDefault("stimulus."+s.Name, s.Default)
	}
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewConfigFromViper unmarshals and validates v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks host settings and that every stimulus key names a known
// parameter. Parameter values are checked by params.
func (c *Config) Validate() error {
	var errs []error
	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format))
	}
	if !c.Display.Fullscreen && (c.Display.Width <= 0 || c.Display.Height <= 0) {
		errs = append(errs, fmt.Errorf("display.width and display.height must be positive, got %dx%d", c.Display.Width, c.Display.Height))
	}
	if c.Display.Monitor < 0 {
		errs = append(errs, fmt.Errorf("display.monitor must not be negative"))
	}
	if c.Announce.EveryFrames < 0 {
		errs = append(errs, fmt.Errorf("announce.every_frames must not be negative"))
	}
	switch {
	case c.Seed < TimeSeed || c.Seed > math.MaxUint32:
		errs = append(errs, fmt.Errorf("seed must be -1 or within [1, %d], got %d", uint32(math.MaxUint32), c.Seed))
	case c.Seed == 0:
		errs = append(errs, errors.New("seed 0 locks the noise generator at zero; use -1 for a clock seed or any non-zero value"))
	}
	if _, err := c.StimulusValues(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// FixedSeed reports the configured seed, if one is set.
func (c *Config) FixedSeed() (uint32, bool) {
	if c.Seed == TimeSeed {
		return 0, false
	}
	return uint32(c.Seed), true
}

// StimulusValues maps the stimulus section back to parameter names. Viper
// folds keys to lower case, so names are matched case-insensitively.
func (c *Config) StimulusValues() (map[string]float64, error) {
	out := make(map[string]float64, len(c.Stimulus))
	for key, value := range c.Stimulus {
		name, ok := canonical(key)
		if !ok {
			return nil, fmt.Errorf("stimulus.%s: %w", key, errUnknownParameter)
		}
		out[name] = value
	}
	return out, nil
}

var errUnknownParameter = errors.New("unknown stimulus parameter")

func canonical(key string) (string, bool) {
	for _, s := range params.Schema() {
		if strings.EqualFold(s.Name, key) {
			return s.Name, true
		}
	}
	return "", false
}
