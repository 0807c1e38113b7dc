package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// A missing Gemini API key is not a validation error: the service starts
// and reports CONFIG_ERROR on analysis calls instead.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateGemini(&cfg.Gemini)...)
	errs = append(errs, ValidateLimits(&cfg.Limits)...)
	errs = append(errs, validateQueue(&cfg.Queue, &cfg.Server)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Scheduler.TickInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "scheduler.tick_interval",
			Message: "tick interval must be positive",
		})
	}
	if cfg.Analysis.CSVPreviewRows < 0 {
		errs = append(errs, FieldError{
			Field:   "analysis.csv_preview_rows",
			Message: "csv preview rows must be non-negative",
		})
	}
	if cfg.Analysis.MaxUploadBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "analysis.max_upload_bytes",
			Message: "max upload bytes must be non-negative",
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	// Validate timeouts are positive
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}
	if cfg.IPRateLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "server.ip_rate_limit",
			Message: "ip rate limit must be non-negative",
		})
	}

	return errs
}

func validateGemini(cfg *GeminiConfig) []FieldError {
	var errs []FieldError

	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "gemini.model",
			Message: "model is required",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "gemini.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "gemini.temperature",
			Message: "temperature must be between 0.0 and 2.0",
		})
	}
	if cfg.MaxOutputTokens < 0 {
		errs = append(errs, FieldError{
			Field:   "gemini.max_output_tokens",
			Message: "max output tokens must be non-negative",
		})
	}

	return errs
}

// ValidateLimits validates the admission limits. It is exported so a hot
// reload can check a new limits section before applying it.
func ValidateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	if cfg.RequestsPerMinute <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.requests_per_minute",
			Message: "requests per minute must be positive",
		})
	}
	if cfg.RequestsPerDay <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.requests_per_day",
			Message: "requests per day must be positive",
		})
	}
	if cfg.RequestsPerDay > 0 && cfg.RequestsPerMinute > cfg.RequestsPerDay {
		errs = append(errs, FieldError{
			Field:   "limits.requests_per_minute",
			Message: "requests per minute cannot exceed requests per day",
		})
	}
	if cfg.MaxTokensPerMinute <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.max_tokens_per_minute",
			Message: "max tokens per minute must be positive",
		})
	}
	if cfg.MaxTrackedUsers <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.max_tracked_users",
			Message: "max tracked users must be positive",
		})
	}
	if cfg.UserRecordTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "limits.user_record_ttl",
			Message: "user record TTL must be positive",
		})
	}

	return errs
}

func validateQueue(cfg *QueueConfig, server *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxDepth < 0 {
		errs = append(errs, FieldError{
			Field:   "queue.max_depth",
			Message: "max depth must be non-negative",
		})
	}
	if cfg.Workers < 1 {
		errs = append(errs, FieldError{
			Field:   "queue.workers",
			Message: "workers must be at least 1",
		})
	}
	if cfg.DrainInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "queue.drain_interval",
			Message: "drain interval must be positive",
		})
	}
	if cfg.MaxWait < 0 {
		errs = append(errs, FieldError{
			Field:   "queue.max_wait",
			Message: "max wait must be positive",
		})
	}
	if server.WriteTimeout > 0 && cfg.MaxWait >= server.WriteTimeout {
		errs = append(errs, FieldError{
			Field:   "queue.max_wait",
			Message: fmt.Sprintf("max wait (%s) must be shorter than server.write_timeout (%s)", cfg.MaxWait, server.WriteTimeout),
		})
	}

	return errs
}

func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "ledger.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "ledger.sqlite.path",
			Message: "sqlite path is required when backend is 'sqlite'",
		})
	}
	if cfg.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.async_buffer",
			Message: "async buffer must be non-negative",
		})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "ledger.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path must start with /",
		})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path must start with /",
		})
	}

	return errs
}
