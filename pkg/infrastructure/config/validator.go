package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sync.interval")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogEncodings returns the list of valid zap encodings
func ValidLogEncodings() []string {
	return []string{"console", "json"}
}

// ValidRoles returns the list of valid user roles
func ValidRoles() []string {
	return []string{"employee", "manager"}
}

// ValidViews returns the list of dashboard views the scheduler can start in
func ValidViews() []string {
	return []string{"analytics", "contracts", "forecast", "inventory", "market", "orders", "scenario"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateSync()...)

	if !slices.Contains(ValidRoles(), c.User.Role) {
		errors = append(errors, ValidationError{
			Field:   "user.role",
			Value:   c.User.Role,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidRoles(), ", ")),
		})
	}

	if c.Orders.DefaultQuantity <= 0 {
		errors = append(errors, ValidationError{
			Field:   "orders.default_quantity",
			Value:   c.Orders.DefaultQuantity,
			Message: "must be positive",
		})
	}

	if c.Display.VATRate < 0 {
		errors = append(errors, ValidationError{
			Field:   "display.vat_rate",
			Value:   c.Display.VATRate,
			Message: "must be non-negative",
		})
	}

	if c.Scenario.DelayDays < 0 {
		errors = append(errors, ValidationError{
			Field:   "scenario.delay_days",
			Value:   c.Scenario.DelayDays,
			Message: "must be non-negative",
		})
	}
	if c.Scenario.DemandSpikePct < 0 {
		errors = append(errors, ValidationError{
			Field:   "scenario.demand_spike_pct",
			Value:   c.Scenario.DemandSpikePct,
			Message: "must be non-negative",
		})
	}

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOffline()...)

	return errors
}

func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	// The remote address is irrelevant when the in-process service is used
	if !c.Offline.Enabled {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "api.base_url",
				Value:   c.API.BaseURL,
				Message: "must be an absolute http or https URL",
			})
		}
	}

	if c.API.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Value:   c.API.Timeout,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateSync() []ValidationError {
	var errors []ValidationError

	if c.Sync.Interval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sync.interval",
			Value:   c.Sync.Interval,
			Message: "must be positive",
		})
	}

	if !slices.Contains(ValidViews(), c.Sync.InitialView) {
		errors = append(errors, ValidationError{
			Field:   "sync.initial_view",
			Value:   c.Sync.InitialView,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidViews(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if !slices.Contains(ValidLogEncodings(), c.Logging.Encoding) {
		errors = append(errors, ValidationError{
			Field:   "logging.encoding",
			Value:   c.Logging.Encoding,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogEncodings(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateOffline() []ValidationError {
	var errors []ValidationError

	if c.Offline.AutoApproveLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "offline.auto_approve_limit",
			Value:   c.Offline.AutoApproveLimit,
			Message: "must be non-negative",
		})
	}
	if c.Offline.DayLength <= 0 {
		errors = append(errors, ValidationError{
			Field:   "offline.day_length",
			Value:   c.Offline.DayLength,
			Message: "must be positive",
		})
	}

	return errors
}
