package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sadopc/planr/internal/dates"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// RemoteConfig selects the per-user document store.
type RemoteConfig struct {
	// Backend is one of "sqlite", "memory" or "none" (guest-only, no sync).
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Path is the document database file for the sqlite backend.
	Path string `yaml:"path" mapstructure:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataDir holds the device database, the session file and logs.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// TimezoneOffset is the fixed offset "today" is computed in, e.g. "+02:00".
	TimezoneOffset string `yaml:"timezone_offset" mapstructure:"timezone_offset"`

	// WeekStart is the first day of a planner week ("saturday" by default).
	WeekStart string `yaml:"week_start" mapstructure:"week_start"`

	Remote RemoteConfig `yaml:"remote" mapstructure:"remote"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DefaultDir returns ~/.config/planr.
func DefaultDir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return ".planr"
	}
	return filepath.Join(cfg, "planr")
}

// DefaultPath returns ~/.config/planr/config.yaml.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

func DefaultConfig() *Config {
	c := &Config{
		DataDir:        DefaultDir(),
		TimezoneOffset: "+02:00",
		WeekStart:      "saturday",
		Remote:         RemoteConfig{Backend: BackendSQLite},
		Log:            LogConfig{Level: "info", MaxSizeMB: 5, MaxBackups: 3},
	}
	c.Normalize()
	return c
}

// Normalize fills missing values so partially written files still work.
func (c *Config) Normalize() {
	if c.DataDir == "" {
		c.DataDir = DefaultDir()
	}
	if c.TimezoneOffset == "" {
		c.TimezoneOffset = "+02:00"
	}
	if _, err := dates.ParseWeekday(c.WeekStart); err != nil {
		c.WeekStart = "saturday"
	}
	switch c.Remote.Backend {
	case BackendSQLite, BackendMemory, BackendNone:
	default:
		c.Remote.Backend = BackendSQLite
	}
	if c.Remote.Path == "" {
		c.Remote.Path = filepath.Join(c.DataDir, "remote.db")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "planr.log")
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 5
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = 0
	}
}

// Validate rejects values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := dates.ParseOffset(c.TimezoneOffset); err != nil {
		return fmt.Errorf("timezone_offset: %w", err)
	}
	return nil
}

// DevicePath is the on-device key-value database.
func (c *Config) DevicePath() string {
	return filepath.Join(c.DataDir, "planr.db")
}

// SessionPath is the file the identity provider watches.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.yaml")
}

// Calendar builds the fixed-offset calendar described by the config.
func (c *Config) Calendar(clock dates.Clock) (*dates.Calendar, error) {
	offset, err := dates.ParseOffset(c.TimezoneOffset)
	if err != nil {
		return nil, fmt.Errorf("timezone_offset: %w", err)
	}
	ws, err := dates.ParseWeekday(c.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("week_start: %w", err)
	}
	return dates.NewCalendar(clock, offset, ws), nil
}

// Load reads the YAML config at path, applying PLANR_* environment
// overrides (PLANR_REMOTE_BACKEND, PLANR_LOG_LEVEL, ...). A missing file is
// created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err := Save(path, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PLANR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("timezone_offset", d.TimezoneOffset)
	v.SetDefault("week_start", d.WeekStart)
	v.SetDefault("remote.backend", d.Remote.Backend)
	v.SetDefault("remote.path", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".planr-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
