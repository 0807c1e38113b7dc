// Package config provides configuration management for the VADAPRO analysis
// gateway.
//
// Configuration is loaded from a YAML file, completed with defaults, overridden
// from the environment, and validated before use.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")              // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml") // file + .env + environment
//
// LoadConfigWithEnvOverrides accepts an empty path, in which case the service
// runs on defaults plus environment.
//
// # Environment Variable Overrides
//
// A .env file in the working directory is loaded first; variables already
// present in the process environment win over it. Overrides follow the naming
// convention VADAPRO_SECTION_FIELD:
//
//   - VADAPRO_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - VADAPRO_LIMITS_REQUESTS_PER_MINUTE overrides limits.requests_per_minute
//   - VADAPRO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// The Gemini key is read from GEMINI_API_KEY (or VADAPRO_GEMINI_API_KEY).
//
// # Hot Reload
//
// Watcher reloads the file on change. Only the limits section is applied to a
// running service; other sections take effect on restart.
//
// # Validation
//
// Validation errors carry field paths:
//
//	configuration validation failed with 2 errors:
//	  - limits.requests_per_minute: requests per minute must be positive
//	  - ledger.backend: invalid backend "postgres": must be 'memory' or 'sqlite'
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	gemini:
//	  model: "gemini-2.5-flash"
//
//	limits:
//	  requests_per_minute: 10
//	  requests_per_day: 250
//	  max_tokens_per_minute: 250000
//
//	queue:
//	  drain_interval: 5s
//	  workers: 1
//
//	ledger:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/usage.db"
package config
