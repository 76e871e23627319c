package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PHASER_CLAUDE_BINARY
const EnvPrefix = "PHASER"

// FileName is the per-project config file looked up in the working directory
const FileName = ".phaser.yaml"

// Config represents the phaser configuration
type Config struct {
	Claude ClaudeConfig `mapstructure:"claude"`
	Runner RunnerConfig `mapstructure:"runner"`
	Voice  VoiceConfig  `mapstructure:"voice"`
}

// ClaudeConfig contains Claude-specific settings
type ClaudeConfig struct {
	Binary    string `mapstructure:"binary"`
	Model     string `mapstructure:"model"`
	KeepAwake bool   `mapstructure:"keep_awake"`
}

// RunnerConfig contains phase runner settings
type RunnerConfig struct {
	MaxMinutes      int           `mapstructure:"max_minutes"`
	Throttle        time.Duration `mapstructure:"throttle"`
	ProposedDir     string        `mapstructure:"proposed_dir"`
	CompletedDir    string        `mapstructure:"completed_dir"`
	RecentLimit     int           `mapstructure:"recent_limit"`
	Timer           bool          `mapstructure:"timer"`
	CompletionSound string        `mapstructure:"completion_sound"`
}

// VoiceConfig contains voice watcher settings
type VoiceConfig struct {
	File          string        `mapstructure:"file"`
	Interval      time.Duration `mapstructure:"interval"`
	ParseTimeout  time.Duration `mapstructure:"parse_timeout"`
	ContextSize   int           `mapstructure:"context_size"`
	TerminalApp   string        `mapstructure:"terminal_app"`
	PasteDelay    time.Duration `mapstructure:"paste_delay"`
	DefaultScroll int           `mapstructure:"default_scroll"`
}

// MaxRuntime is the runner budget as a duration
func (r RunnerConfig) MaxRuntime() time.Duration {
	return time.Duration(r.MaxMinutes) * time.Minute
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Claude: ClaudeConfig{
			Binary:    "claude",
			KeepAwake: true,
		},
		Runner: RunnerConfig{
			MaxMinutes:      90,
			Throttle:        2 * time.Second,
			ProposedDir:     "docs/proposed",
			CompletedDir:    "docs/completed",
			RecentLimit:     5,
			Timer:           true,
			CompletionSound: "/System/Library/Sounds/Glass.aiff",
		},
		Voice: VoiceConfig{
			File:          "~/Dropbox/ai.csv",
			Interval:      time.Second,
			ParseTimeout:  30 * time.Second,
			ContextSize:   10,
			TerminalApp:   "Terminal",
			PasteDelay:    200 * time.Millisecond,
			DefaultScroll: 5,
		},
	}
}

// New returns a viper instance with defaults, PHASER_* environment
// overrides and, when one is found, the config file applied.
// An explicit path must exist; otherwise .phaser.yaml in the working
// directory and then $XDG_CONFIG_HOME/phaser/config.yaml are tried.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return v, nil
}

// Load reads the config and validates it
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode unmarshals a viper instance into a Config
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Check decodes settings layered over the defaults, as a file holding
// them would be loaded
func Check(settings map[string]any) error {
	v := viper.New()
	setDefaults(v)
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	_, err := Decode(v)
	return err
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	var errs []error
	if c.Runner.MaxMinutes <= 0 {
		errs = append(errs, fmt.Errorf("runner.max_minutes must be positive, got %d", c.Runner.MaxMinutes))
	}
	if c.Runner.Throttle < 0 {
		errs = append(errs, fmt.Errorf("runner.throttle must not be negative, got %s", c.Runner.Throttle))
	}
	if c.Voice.Interval < 0 {
		errs = append(errs, fmt.Errorf("voice.interval must not be negative, got %s", c.Voice.Interval))
	}
	if c.Voice.ParseTimeout < 0 {
		errs = append(errs, fmt.Errorf("voice.parse_timeout must not be negative, got %s", c.Voice.ParseTimeout))
	}
	if c.Voice.ContextSize < 0 {
		errs = append(errs, fmt.Errorf("voice.context_size must not be negative, got %d", c.Voice.ContextSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Keys lists every known config key, sorted
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("claude.binary", d.Claude.Binary)
	v.SetDefault("claude.model", d.Claude.Model)
	v.SetDefault("claude.keep_awake", d.Claude.KeepAwake)

	v.SetDefault("runner.max_minutes", d.Runner.MaxMinutes)
	v.SetDefault("runner.throttle", d.Runner.Throttle)
	v.SetDefault("runner.proposed_dir", d.Runner.ProposedDir)
	v.SetDefault("runner.completed_dir", d.Runner.CompletedDir)
	v.SetDefault("runner.recent_limit", d.Runner.RecentLimit)
	v.SetDefault("runner.timer", d.Runner.Timer)
	v.SetDefault("runner.completion_sound", d.Runner.CompletionSound)

	v.SetDefault("voice.file", d.Voice.File)
	v.SetDefault("voice.interval", d.Voice.Interval)
	v.SetDefault("voice.parse_timeout", d.Voice.ParseTimeout)
	v.SetDefault("voice.context_size", d.Voice.ContextSize)
	v.SetDefault("voice.terminal_app", d.Voice.TerminalApp)
	v.SetDefault("voice.paste_delay", d.Voice.PasteDelay)
	v.SetDefault("voice.default_scroll", d.Voice.DefaultScroll)
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Claude.Binary == "" {
		cfg.Claude.Binary = defaults.Claude.Binary
	}
	if cfg.Runner.ProposedDir == "" {
		cfg.Runner.ProposedDir = defaults.Runner.ProposedDir
	}
	if cfg.Runner.CompletedDir == "" {
		cfg.Runner.CompletedDir = defaults.Runner.CompletedDir
	}
	if cfg.Runner.RecentLimit == 0 {
		cfg.Runner.RecentLimit = defaults.Runner.RecentLimit
	}
	if cfg.Voice.File == "" {
		cfg.Voice.File = defaults.Voice.File
	}
	if cfg.Voice.Interval == 0 {
		cfg.Voice.Interval = defaults.Voice.Interval
	}
	if cfg.Voice.ParseTimeout == 0 {
		cfg.Voice.ParseTimeout = defaults.Voice.ParseTimeout
	}
	if cfg.Voice.ContextSize == 0 {
		cfg.Voice.ContextSize = defaults.Voice.ContextSize
	}
	if cfg.Voice.TerminalApp == "" {
		cfg.Voice.TerminalApp = defaults.Voice.TerminalApp
	}
	if cfg.Voice.DefaultScroll == 0 {
		cfg.Voice.DefaultScroll = defaults.Voice.DefaultScroll
	}
}

func findConfigFile() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	path := filepath.Join(dir, "phaser", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
