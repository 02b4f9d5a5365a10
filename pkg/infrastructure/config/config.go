// Package config loads the dashboard client configuration through viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PROCURE_API_BASE_URL.
const EnvPrefix = "PROCURE"

// Config holds all client settings
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Sync     SyncConfig     `mapstructure:"sync"`
	User     UserConfig     `mapstructure:"user"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Display  DisplayConfig  `mapstructure:"display"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Offline  OfflineConfig  `mapstructure:"offline"`
}

// APIConfig points the client at the remote procurement service
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SyncConfig controls the polling scheduler
type SyncConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	InitialView string        `mapstructure:"initial_view"`
}

// UserConfig selects the acting role
type UserConfig struct {
	Role string `mapstructure:"role"`
}

// OrdersConfig holds defaults for new orders
type OrdersConfig struct {
	DefaultQuantity float64 `mapstructure:"default_quantity"`
	DefaultType     string  `mapstructure:"default_type"`
}

// DisplayConfig holds presentation settings
type DisplayConfig struct {
	VATRate  float64 `mapstructure:"vat_rate"`
	Currency string  `mapstructure:"currency"`
}

// ScenarioConfig holds the initial what-if parameters
type ScenarioConfig struct {
	DelayDays      int `mapstructure:"delay_days"`
	DemandSpikePct int `mapstructure:"demand_spike_pct"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	// File receives log output. Empty means stderr.
	File string `mapstructure:"file"`
}

// OfflineConfig enables the in-process service
type OfflineConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	SeedFile         string        `mapstructure:"seed_file"`
	AutoApproveLimit float64       `mapstructure:"auto_approve_limit"`
	DayLength        time.Duration `mapstructure:"day_length"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
		},
		Sync: SyncConfig{
			Interval:    time.Second,
			InitialView: "orders",
		},
		User: UserConfig{
			Role: "employee",
		},
		Orders: OrdersConfig{
			DefaultQuantity: 20,
			DefaultType:     "standard",
		},
		Display: DisplayConfig{
			VATRate:  0.23,
			Currency: "PLN",
		},
		Logging: LoggingConfig{
			Level:             "info",
			Encoding:          "console",
			DisableStacktrace: true,
		},
		Offline: OfflineConfig{
			AutoApproveLimit: 1000,
			DayLength:        time.Second,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	setDefaultsOn(viper.GetViper())
}

// BindEnv enables PROCURE_* environment overrides on v. Dots in nested
// keys become underscores, e.g. PROCURE_SYNC_INTERVAL for sync.interval.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaultsOn(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("api.base_url", defaults.API.BaseURL)
	v.SetDefault("api.timeout", defaults.API.Timeout)

	v.SetDefault("sync.interval", defaults.Sync.Interval)
	v.SetDefault("sync.initial_view", defaults.Sync.InitialView)

	v.SetDefault("user.role", defaults.User.Role)

	v.SetDefault("orders.default_quantity", defaults.Orders.DefaultQuantity)
	v.SetDefault("orders.default_type", defaults.Orders.DefaultType)

	v.SetDefault("display.vat_rate", defaults.Display.VATRate)
	v.SetDefault("display.currency", defaults.Display.Currency)

	v.SetDefault("scenario.delay_days", defaults.Scenario.DelayDays)
	v.SetDefault("scenario.demand_spike_pct", defaults.Scenario.DemandSpikePct)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.encoding", defaults.Logging.Encoding)
	v.SetDefault("logging.disable_caller", defaults.Logging.DisableCaller)
	v.SetDefault("logging.disable_stacktrace", defaults.Logging.DisableStacktrace)
	v.SetDefault("logging.file", defaults.Logging.File)

	v.SetDefault("offline.enabled", defaults.Offline.Enabled)
	v.SetDefault("offline.seed_file", defaults.Offline.SeedFile)
	v.SetDefault("offline.auto_approve_limit", defaults.Offline.AutoApproveLimit)
	v.SetDefault("offline.day_length", defaults.Offline.DayLength)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load against an explicit viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "procure")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".procure"
	}
	return filepath.Join(home, ".config", "procure")
}
