package config

import "time"

// Config is the root configuration structure for the VADAPRO analysis gateway.
// It contains all configuration sections for the HTTP server, the Gemini
// provider, admission limits, the request queue, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Gemini contains configuration for the generative-AI provider.
	Gemini GeminiConfig `yaml:"gemini"`

	// Limits contains the admission limits applied to every analysis request.
	// This section is hot-reloadable.
	Limits LimitsConfig `yaml:"limits"`

	// Queue contains configuration for the backlog of soft-limited requests.
	Queue QueueConfig `yaml:"queue"`

	// Scheduler contains configuration for the periodic clock tick that drives
	// counter resets and queue drains.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Analysis contains prompt construction and upload settings.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Ledger contains configuration for the usage ledger.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed queue.max_wait so queued requests can still
	// be answered.
	// Default: 150s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes caps JSON request bodies on /ai/analyze.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// IPRateLimit is a coarse per-IP flood guard applied before admission.
	// Zero disables it.
	// Default: 0
	IPRateLimit int `yaml:"ip_rate_limit"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are added.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// AllowedOrigins is the list of origins allowed to call the API.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the list of allowed request headers.
	// Default: ["Content-Type", "Authorization", "X-Request-ID", "X-User-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the browser.
	// Default: ["X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`

	// MaxAge is how long (in seconds) preflight results can be cached.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// GeminiConfig contains configuration for the Gemini provider.
type GeminiConfig struct {
	// APIKey is the Gemini API key. Usually supplied through GEMINI_API_KEY
	// or a .env file rather than the YAML file.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier used for every analysis call.
	// Default: "gemini-2.5-flash"
	Model string `yaml:"model"`

	// Timeout bounds a single provider call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Temperature is the sampling temperature.
	// Default: 0.4
	Temperature float64 `yaml:"temperature"`

	// MaxOutputTokens caps the response length. Zero leaves it to the model.
	// Default: 2048
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// LimitsConfig contains the admission limits.
type LimitsConfig struct {
	// RequestsPerMinute is the per-user sliding-window limit. Requests over it
	// are queued rather than rejected.
	// Default: 10
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay is the per-user daily limit. Requests over it are rejected.
	// Default: 250
	RequestsPerDay int `yaml:"requests_per_day"`

	// MaxTokensPerMinute is the global token budget per minute. Requests
	// arriving after it is spent are rejected until the minute resets.
	// Default: 250000
	MaxTokensPerMinute int64 `yaml:"max_tokens_per_minute"`

	// MaxTrackedUsers caps the number of per-user records kept in memory.
	// The least recently used record is evicted first.
	// Default: 100000
	MaxTrackedUsers int `yaml:"max_tracked_users"`

	// UserRecordTTL removes per-user records untouched for this long.
	// Default: 24h
	UserRecordTTL time.Duration `yaml:"user_record_ttl"`
}

// QueueConfig contains configuration for the request queue.
type QueueConfig struct {
	// MaxDepth is the maximum number of queued requests.
	// Default: 100
	MaxDepth int `yaml:"max_depth"`

	// MaxWait is how long a caller waits for its queued request before the
	// request is abandoned.
	// Default: 90s
	MaxWait time.Duration `yaml:"max_wait"`

	// DrainInterval is how often the queue is drained.
	// Default: 5s
	DrainInterval time.Duration `yaml:"drain_interval"`

	// DrainOnEnqueue triggers a drain right after a request is queued.
	// Default: true
	DrainOnEnqueue *bool `yaml:"drain_on_enqueue"`

	// Workers bounds how many queued requests execute at once during a drain.
	// 1 executes the queue strictly serially.
	// Default: 1
	Workers int `yaml:"workers"`
}

// SchedulerConfig contains configuration for the periodic tick.
type SchedulerConfig struct {
	// TickInterval is how often usage boundaries are checked.
	// Default: 1s
	TickInterval time.Duration `yaml:"tick_interval"`
}

// AnalysisConfig contains prompt and upload settings.
type AnalysisConfig struct {
	// CSVPreviewRows is how many raw CSV lines are embedded in text prompts.
	// Default: 20
	CSVPreviewRows int `yaml:"csv_preview_rows"`

	// MaxUploadBytes caps files registered with the provider.
	// Default: 20971520 (20MB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// LedgerConfig contains configuration for the usage ledger.
type LedgerConfig struct {
	// Enabled controls whether executed calls are recorded.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Memory contains in-memory backend configuration.
	Memory MemoryLedgerConfig `yaml:"memory"`

	// AsyncBuffer is the size of the recorder's write channel.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single ledger write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention contains ledger pruning configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// MemoryLedgerConfig contains in-memory ledger configuration.
type MemoryLedgerConfig struct {
	// MaxRecords is the number of records kept before the oldest are dropped.
	// Default: 10000
	MaxRecords int `yaml:"max_records"`
}

// RetentionConfig contains ledger pruning configuration.
type RetentionConfig struct {
	// Days is how long records are kept. A negative value keeps records forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a standard cron expression for the pruning job.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic PII redaction in logs.
	// Default: true
	RedactPII *bool `yaml:"redact_pii"`

	// RedactPatterns contains custom PII redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	// Name identifies the pattern in debug output.
	Name string `yaml:"name"`

	// Pattern is a Go regular expression.
	Pattern string `yaml:"pattern"`

	// Replacement replaces every match.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "vadapro"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "vadapro-analyzer"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds exporter calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`
}

// DrainOnEnqueueEnabled reports whether an enqueue triggers an immediate drain.
func (q QueueConfig) DrainOnEnqueueEnabled() bool {
	return q.DrainOnEnqueue == nil || *q.DrainOnEnqueue
}

// IsEnabled reports whether the ledger records calls.
func (l LedgerConfig) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// IsEnabled reports whether metrics are collected.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// RedactionEnabled reports whether log redaction is on.
func (l LoggingConfig) RedactionEnabled() bool {
	return l.RedactPII == nil || *l.RedactPII
}

// IsEnabled reports whether CORS headers are added.
func (c CORSConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
