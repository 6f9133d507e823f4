// Package config loads and saves the finplan TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/finplan/internal/solver"
)

// Config holds all finplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Defaults   DefaultsConfig   `toml:"defaults"`
	Solver     SolverConfig     `toml:"solver"`
	Store      StoreConfig      `toml:"store"`
	Cache      CacheConfig      `toml:"cache"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	CurrencySymbol string `toml:"currency_symbol"`
}

// DefaultsConfig seeds calculator flags that the user does not set.
type DefaultsConfig struct {
	Years             int     `toml:"years"`
	ExpectedReturnPct float64 `toml:"expected_return_pct"`
	InflationPct      float64 `toml:"inflation_pct"`
	StepUpPct         float64 `toml:"step_up_pct"`
}

// SolverConfig tunes the step-up bisection.
type SolverConfig struct {
	Tolerance     float64 `toml:"tolerance"`
	MaxIterations int     `toml:"max_iterations"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// CacheConfig holds result cache settings. An empty RedisAddr selects the
// in-memory cache.
type CacheConfig struct {
	RedisAddr string `toml:"redis_addr,omitempty"`
	TTLSec    int    `toml:"ttl_sec"`
}

// DaemonConfig holds calculator API settings.
type DaemonConfig struct {
	Addr          string `toml:"addr"`
	RateLimit     int    `toml:"rate_limit"`
	RateWindowSec int    `toml:"rate_window_sec"`
	EventsBuffer  int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			CurrencySymbol: "₹",
		},
		Defaults: DefaultsConfig{
			Years:             15,
			ExpectedReturnPct: 12,
			InflationPct:      6,
			StepUpPct:         10,
		},
		Solver: SolverConfig{
			Tolerance:     solver.DefaultTolerance,
			MaxIterations: solver.DefaultMaxIterations,
		},
		Cache: CacheConfig{
			TTLSec: 3600,
		},
		Daemon: DaemonConfig{
			Addr:          "127.0.0.1:8787",
			RateLimit:     60,
			RateWindowSec: 60,
			EventsBuffer:  200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finplan")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "finplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "finplan")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetDBPath returns the database path from env var, config, or the default
// data directory, in that order.
func GetDBPath(cfg Config) string {
	if p := os.Getenv("FINPLAN_DB"); p != "" {
		return p
	}
	if cfg.Store.DBPath != "" {
		return cfg.Store.DBPath
	}
	return filepath.Join(DataDir(), "finplan.db")
}

// GetRedisAddr returns the Redis address from env var or config.
func GetRedisAddr(cfg Config) string {
	if addr := os.Getenv("FINPLAN_REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Cache.RedisAddr
}

// SolverOptions converts the solver section for the solver package.
func (c Config) SolverOptions() solver.Options {
	return solver.Options{
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
	}
}

// CacheTTL is the cache entry lifetime; zero keeps entries forever.
func (c Config) CacheTTL() time.Duration {
	if c.Cache.TTLSec <= 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLSec) * time.Second
}
