package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as "1s", "5m" or "90s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	str := strings.TrimSpace(string(text))
	if str == "" {
		return fmt.Errorf("invalid duration: empty value")
	}
	v, err := time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", str, err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", str)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type TimersConfig struct {
	TickInterval     Duration `toml:"tick_interval"`
	FreshnessWindow  Duration `toml:"freshness_window"`
	AlertOffset      Duration `toml:"alert_offset"`
	CompletionOffset Duration `toml:"completion_offset"`
}

type HistoryConfig struct {
	RetentionDays int `toml:"retention_days"`
}

// Retention is RetentionDays as a duration.
func (h HistoryConfig) Retention() time.Duration {
	return time.Duration(h.RetentionDays) * 24 * time.Hour
}

type DesktopConfig struct {
	Enabled *bool `toml:"enabled"`
}

type TelegramConfig struct {
	Enabled bool   `toml:"enabled"`
	Token   string `toml:"token"`
	ChatID  int64  `toml:"chat_id"`
}

type NotifyConfig struct {
	Desktop  DesktopConfig  `toml:"desktop"`
	Telegram TelegramConfig `toml:"telegram"`
}

type DBusConfig struct {
	Bus string `toml:"bus"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type CategoriesConfig struct {
	Defaults []string `toml:"defaults"`
}

type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Timers     TimersConfig     `toml:"timers"`
	History    HistoryConfig    `toml:"history"`
	Notify     NotifyConfig     `toml:"notify"`
	DBus       DBusConfig       `toml:"dbus"`
	Log        LogConfig        `toml:"log"`
	Categories CategoriesConfig `toml:"categories"`
}

// SetDefault fills every unset value.
func (c *Config) SetDefault() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(dataDir(), "timerwarden", "timers.db")
	}

	if c.Timers.TickInterval.Duration == 0 {
		c.Timers.TickInterval.Duration = time.Second
	}
	if c.Timers.FreshnessWindow.Duration == 0 {
		c.Timers.FreshnessWindow.Duration = 5 * time.Minute
	}
	if c.Timers.AlertOffset.Duration == 0 {
		c.Timers.AlertOffset.Duration = time.Second
	}
	if c.Timers.CompletionOffset.Duration == 0 {
		c.Timers.CompletionOffset.Duration = time.Second
	}

	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = 30
	}

	if c.Notify.Desktop.Enabled == nil {
		defaultVal := true
		c.Notify.Desktop.Enabled = &defaultVal
	}

	if c.DBus.Bus == "" {
		c.DBus.Bus = "session"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Categories.Defaults == nil {
		c.Categories.Defaults = []string{"Work", "Study", "Break", "Exercise"}
	}
}

// Validate reports values SetDefault cannot repair.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case "sqlite", "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	switch c.DBus.Bus {
	case "session", "system":
	default:
		errs = append(errs, fmt.Errorf("dbus.bus: must be session or system, got %q", c.DBus.Bus))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.Token == "" || c.Notify.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("notify.telegram: token and chat_id are required when enabled"))
	}
	return errors.Join(errs...)
}

// DefaultPath is $XDG_CONFIG_HOME/timerwarden/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "timerwarden", "config.toml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return "."
}

func LoadConfigFromFile(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	decoder := toml.NewDecoder(file)
	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}
	return finish(&config)
}

func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return finish(&config)
}

func finish(c *Config) (*Config, error) {
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	c.SetDefault()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv reads .env files into the process environment. Missing files are
// ignored; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides file values with TIMERWARDEN_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("TIMERWARDEN_STORAGE_PATH"); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup("TIMERWARDEN_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("TIMERWARDEN_TELEGRAM_TOKEN"); ok && v != "" {
		c.Notify.Telegram.Token = v
		c.Notify.Telegram.Enabled = true
	}
	if v, ok := lookup("TIMERWARDEN_TELEGRAM_CHAT_ID"); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TIMERWARDEN_TELEGRAM_CHAT_ID: %w", err)
		}
		c.Notify.Telegram.ChatID = id
	}
	return nil
}
