package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is the dotenv file consulted before environment overrides.
const DotEnvFile = ".env"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention VADAPRO_SECTION_FIELD (e.g., VADAPRO_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults, so the service can
// run from the environment alone.
//
// The loading sequence is:
// 1. Load .env into the process environment (existing variables win)
// 2. Load YAML from file
// 3. Apply default values
// 4. Apply environment variable overrides
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg = &Config{}
		ApplyDefaults(cfg)
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a dotenv file if it exists. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format VADAPRO_SECTION_FIELD. The Gemini key
// is also read from the conventional GEMINI_API_KEY.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("VADAPRO_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("PORT"); val != "" && os.Getenv("VADAPRO_SERVER_LISTEN_ADDRESS") == "" {
		cfg.Server.ListenAddress = ":" + val
	}
	overrideDuration("VADAPRO_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	overrideDuration("VADAPRO_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	overrideInt("VADAPRO_SERVER_IP_RATE_LIMIT", &cfg.Server.IPRateLimit)

	// Gemini overrides
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		cfg.Gemini.APIKey = val
	}
	if val := os.Getenv("VADAPRO_GEMINI_API_KEY"); val != "" {
		cfg.Gemini.APIKey = val
	}
	if val := os.Getenv("VADAPRO_GEMINI_MODEL"); val != "" {
		cfg.Gemini.Model = val
	}
	overrideDuration("VADAPRO_GEMINI_TIMEOUT", &cfg.Gemini.Timeout)

	// Limits overrides
	overrideInt("VADAPRO_LIMITS_REQUESTS_PER_MINUTE", &cfg.Limits.RequestsPerMinute)
	overrideInt("VADAPRO_LIMITS_REQUESTS_PER_DAY", &cfg.Limits.RequestsPerDay)
	if val := os.Getenv("VADAPRO_LIMITS_MAX_TOKENS_PER_MINUTE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Limits.MaxTokensPerMinute = i
		}
	}

	// Queue overrides
	overrideInt("VADAPRO_QUEUE_MAX_DEPTH", &cfg.Queue.MaxDepth)
	overrideInt("VADAPRO_QUEUE_WORKERS", &cfg.Queue.Workers)
	overrideDuration("VADAPRO_QUEUE_DRAIN_INTERVAL", &cfg.Queue.DrainInterval)
	overrideDuration("VADAPRO_QUEUE_MAX_WAIT", &cfg.Queue.MaxWait)

	// Ledger overrides
	if val := os.Getenv("VADAPRO_LEDGER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ledger.Enabled = &b
		}
	}
	if val := os.Getenv("VADAPRO_LEDGER_BACKEND"); val != "" {
		cfg.Ledger.Backend = val
	}
	if val := os.Getenv("VADAPRO_LEDGER_SQLITE_PATH"); val != "" {
		cfg.Ledger.SQLite.Path = val
	}
	overrideInt("VADAPRO_LEDGER_RETENTION_DAYS", &cfg.Ledger.Retention.Days)

	// Telemetry overrides
	if val := os.Getenv("VADAPRO_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("VADAPRO_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("VADAPRO_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
	if val := os.Getenv("VADAPRO_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("VADAPRO_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

func overrideInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func overrideDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
