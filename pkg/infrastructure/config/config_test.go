package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Sync.Interval != time.Second {
		t.Errorf("Sync.Interval = %v, want 1s", cfg.Sync.Interval)
	}
	if cfg.Sync.InitialView != "orders" {
		t.Errorf("Sync.InitialView = %q, want %q", cfg.Sync.InitialView, "orders")
	}
	if cfg.User.Role != "employee" {
		t.Errorf("User.Role = %q, want %q", cfg.User.Role, "employee")
	}
	if cfg.Orders.DefaultQuantity != 20 {
		t.Errorf("Orders.DefaultQuantity = %v, want 20", cfg.Orders.DefaultQuantity)
	}
	if cfg.Display.VATRate != 0.23 {
		t.Errorf("Display.VATRate = %v, want 0.23", cfg.Display.VATRate)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("API.Timeout = %v, want no timeout", cfg.API.Timeout)
	}
	if cfg.Offline.AutoApproveLimit != 1000 {
		t.Errorf("Offline.AutoApproveLimit = %v, want 1000", cfg.Offline.AutoApproveLimit)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Expected defaults to validate, got %v", ValidationErrors(errs))
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad base url", func(c *Config) { c.API.BaseURL = "localhost:8000" }, "api.base_url"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, "api.timeout"},
		{"zero interval", func(c *Config) { c.Sync.Interval = 0 }, "sync.interval"},
		{"unknown view", func(c *Config) { c.Sync.InitialView = "settings" }, "sync.initial_view"},
		{"unknown role", func(c *Config) { c.User.Role = "admin" }, "user.role"},
		{"zero quantity", func(c *Config) { c.Orders.DefaultQuantity = 0 }, "orders.default_quantity"},
		{"negative vat", func(c *Config) { c.Display.VATRate = -0.1 }, "display.vat_rate"},
		{"negative delay", func(c *Config) { c.Scenario.DelayDays = -1 }, "scenario.delay_days"},
		{"negative spike", func(c *Config) { c.Scenario.DemandSpikePct = -5 }, "scenario.demand_spike_pct"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "xml" }, "logging.encoding"},
		{"negative limit", func(c *Config) { c.Offline.AutoApproveLimit = -1 }, "offline.auto_approve_limit"},
		{"zero day length", func(c *Config) { c.Offline.DayLength = 0 }, "offline.day_length"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 validation error, got %d: %v", len(errs), ValidationErrors(errs))
			}
			if errs[0].Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, errs[0].Field)
			}
		})
	}
}

func TestValidate_OfflineIgnoresBaseURL(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = ""
	cfg.Offline.Enabled = true

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Expected no errors in offline mode, got %v", ValidationErrors(errs))
	}
}

func TestValidationErrors_Error(t *testing.T) {
	single := ValidationErrors{{Field: "user.role", Value: "admin", Message: "must be one of: employee, manager"}}
	if single.Error() != "user.role: must be one of: employee, manager (got: admin)" {
		t.Errorf("Unexpected message: %s", single.Error())
	}

	multiple := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	if !strings.HasPrefix(multiple.Error(), "2 validation errors:") {
		t.Errorf("Unexpected message: %s", multiple.Error())
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("Expected empty message for no errors")
	}
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://procurement.example.com
  timeout: 5s
sync:
  interval: 2s
  initial_view: forecast
user:
  role: manager
scenario:
  delay_days: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("PROCURE_SCENARIO_DEMAND_SPIKE_PCT", "25")

	v := viper.New()
	setDefaultsOn(v)
	v.SetConfigFile(path)
	BindEnv(v)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("Expected config to load: %v", err)
	}

	if cfg.API.BaseURL != "https://procurement.example.com" {
		t.Errorf("Expected base url from file, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Sync.Interval != 2*time.Second {
		t.Errorf("Expected 2s interval, got %v", cfg.Sync.Interval)
	}
	if cfg.User.Role != "manager" {
		t.Errorf("Expected manager role, got %s", cfg.User.Role)
	}
	if cfg.Scenario.DelayDays != 3 || cfg.Scenario.DemandSpikePct != 25 {
		t.Errorf("Expected scenario 3/25, got %+v", cfg.Scenario)
	}
	if cfg.Display.Currency != "PLN" {
		t.Errorf("Expected default currency, got %s", cfg.Display.Currency)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	v := viper.New()
	setDefaultsOn(v)
	v.Set("user.role", "admin")

	_, err := LoadFrom(v)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Errorf("Expected one ValidationError, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if ConfigDir() != filepath.Join("/tmp/xdg", "procure") {
		t.Errorf("Expected XDG config dir, got %s", ConfigDir())
	}
}
