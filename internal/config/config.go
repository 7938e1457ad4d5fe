package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/i18n"
)

const (
	// DefaultPath is read when no config file is given. It may be absent.
	DefaultPath = "patchwatch.yaml"

	DefaultBaseURL = "https://game-patch-api.onrender.com"

	EnvAPIURL   = "PATCHWATCH_API_URL"
	EnvLang     = "PATCHWATCH_LANG"
	EnvLogLevel = "PATCHWATCH_LOG_LEVEL"
)

type Config struct {
	API         APIConfig    `yaml:"api"`
	Stream      StreamConfig `yaml:"stream"`
	Lang        i18n.Lang    `yaml:"-"`
	RawLang     string       `yaml:"language"`
	Game        game.Game    `yaml:"-"`
	DefaultGame string       `yaml:"default_game"`
	LogFile     string       `yaml:"log_file"`
	Log         LogConfig    `yaml:"log"`
	TUI         TUIConfig    `yaml:"tui"`
}

type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"-"`
	RawTimeout string        `yaml:"timeout"`
}

type StreamConfig struct {
	Enabled       *bool         `yaml:"enabled,omitempty"`
	Reconnect     bool          `yaml:"reconnect"`
	MaxBackoff    time.Duration `yaml:"-"`
	RawMaxBackoff string        `yaml:"max_backoff"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TUIConfig struct {
	StatsRefreshInterval time.Duration `yaml:"-"`
	RawStatsInterval     string        `yaml:"stats_refresh_interval"`
}

// StreamEnabled reports whether live updates are on. They are unless the
// file turns them off.
func (c *Config) StreamEnabled() bool {
	return c.Stream.Enabled == nil || *c.Stream.Enabled
}

// Load reads the YAML file at path, applies environment overrides from the
// process and any .env file, then fills defaults. An empty path means
// DefaultPath, which is allowed to be missing.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath
	}

	// .env is a convenience; its absence is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLang); v != "" {
		c.RawLang = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// SetGame and SetLanguage apply command-line overrides after Load.
func (c *Config) SetGame(name string) error {
	g, err := game.Parse(name)
	if err != nil {
		return err
	}
	c.DefaultGame = name
	c.Game = g
	return nil
}

func (c *Config) SetLanguage(tag string) {
	c.RawLang = tag
	c.Lang = i18n.Match(tag)
}

func (c *Config) setDefaults() error {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	if c.API.RawTimeout == "" {
		c.API.RawTimeout = "10s"
	}
	d, err := time.ParseDuration(c.API.RawTimeout)
	if err != nil {
		return fmt.Errorf("parse api.timeout %q: %w", c.API.RawTimeout, err)
	}
	c.API.Timeout = d

	if c.Stream.RawMaxBackoff == "" {
		c.Stream.RawMaxBackoff = "30s"
	}
	backoff, err := time.ParseDuration(c.Stream.RawMaxBackoff)
	if err != nil {
		return fmt.Errorf("parse stream.max_backoff %q: %w", c.Stream.RawMaxBackoff, err)
	}
	c.Stream.MaxBackoff = backoff

	if c.RawLang == "" {
		c.RawLang = "en"
	}
	c.Lang = i18n.Match(c.RawLang)

	if c.DefaultGame == "" {
		c.DefaultGame = game.Valorant.String()
	}
	g, err := game.Parse(c.DefaultGame)
	if err != nil {
		return fmt.Errorf("parse default_game: %w", err)
	}
	c.Game = g

	if c.LogFile == "" {
		c.LogFile = filepath.Join(os.TempDir(), "patchwatch", "patchwatch.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.TUI.RawStatsInterval == "" {
		c.TUI.RawStatsInterval = "5m"
	}
	stats, err := time.ParseDuration(c.TUI.RawStatsInterval)
	if err != nil {
		return fmt.Errorf("parse tui.stats_refresh_interval %q: %w", c.TUI.RawStatsInterval, err)
	}
	c.TUI.StatsRefreshInterval = stats

	return nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.RawTimeout)
	}
	if c.Stream.MaxBackoff <= 0 {
		return fmt.Errorf("stream.max_backoff must be positive, got %s", c.Stream.RawMaxBackoff)
	}
	if c.TUI.StatsRefreshInterval <= 0 {
		return fmt.Errorf("tui.stats_refresh_interval must be positive, got %s", c.TUI.RawStatsInterval)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}
	return nil
}
