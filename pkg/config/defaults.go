package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 150 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 10485760 // 10MB

	// CORS defaults
	DefaultCORSMaxAge = 3600 // 1 hour

	// Gemini defaults
	DefaultGeminiModel           = "gemini-2.5-flash"
	DefaultGeminiTimeout         = 60 * time.Second
	DefaultGeminiTemperature     = 0.4
	DefaultGeminiMaxOutputTokens = 2048

	// Limits defaults
	DefaultRequestsPerMinute  = 10
	DefaultRequestsPerDay     = 250
	DefaultMaxTokensPerMinute = int64(250000)
	DefaultMaxTrackedUsers    = 100000
	DefaultUserRecordTTL      = 24 * time.Hour

	// Queue defaults
	DefaultQueueMaxDepth      = 100
	DefaultQueueMaxWait       = 90 * time.Second
	DefaultQueueDrainInterval = 5 * time.Second
	DefaultQueueWorkers       = 1

	// Scheduler defaults
	DefaultSchedulerTickInterval = time.Second

	// Analysis defaults
	DefaultCSVPreviewRows = 20
	DefaultMaxUploadBytes = 20971520 // 20MB

	// Ledger defaults
	DefaultLedgerBackend            = "sqlite"
	DefaultLedgerSQLitePath         = "data/usage.db"
	DefaultLedgerSQLiteMaxOpenConns = 10
	DefaultLedgerSQLiteMaxIdleConns = 5
	DefaultLedgerSQLiteBusyTimeout  = 5 * time.Second
	DefaultLedgerMemoryMaxRecords   = 10000
	DefaultLedgerAsyncBuffer        = 1000
	DefaultLedgerWriteTimeout       = 5 * time.Second
	DefaultLedgerRetentionDays      = 30
	DefaultLedgerPruneSchedule      = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "vadapro"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSampleRatio  = 0.1
	DefaultTracingServiceName  = "vadapro-analyzer"
	DefaultTracingTimeout      = 10 * time.Second
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(cfg)

	// Gemini defaults
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = DefaultGeminiModel
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = DefaultGeminiTimeout
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = DefaultGeminiTemperature
	}
	if cfg.Gemini.MaxOutputTokens == 0 {
		cfg.Gemini.MaxOutputTokens = DefaultGeminiMaxOutputTokens
	}

	applyLimitsDefaults(&cfg.Limits)

	// Queue defaults
	if cfg.Queue.MaxDepth == 0 {
		cfg.Queue.MaxDepth = DefaultQueueMaxDepth
	}
	if cfg.Queue.MaxWait == 0 {
		cfg.Queue.MaxWait = DefaultQueueMaxWait
	}
	if cfg.Queue.DrainInterval == 0 {
		cfg.Queue.DrainInterval = DefaultQueueDrainInterval
	}
	if cfg.Queue.Workers == 0 {
		cfg.Queue.Workers = DefaultQueueWorkers
	}

	if cfg.Scheduler.TickInterval == 0 {
		cfg.Scheduler.TickInterval = DefaultSchedulerTickInterval
	}

	// Analysis defaults
	if cfg.Analysis.CSVPreviewRows == 0 {
		cfg.Analysis.CSVPreviewRows = DefaultCSVPreviewRows
	}
	if cfg.Analysis.MaxUploadBytes == 0 {
		cfg.Analysis.MaxUploadBytes = DefaultMaxUploadBytes
	}

	applyLedgerDefaults(&cfg.Ledger)

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadinessPath
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Server.CORS
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-User-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyLimitsDefaults(l *LimitsConfig) {
	if l.RequestsPerMinute == 0 {
		l.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if l.RequestsPerDay == 0 {
		l.RequestsPerDay = DefaultRequestsPerDay
	}
	if l.MaxTokensPerMinute == 0 {
		l.MaxTokensPerMinute = DefaultMaxTokensPerMinute
	}
	if l.MaxTrackedUsers == 0 {
		l.MaxTrackedUsers = DefaultMaxTrackedUsers
	}
	if l.UserRecordTTL == 0 {
		l.UserRecordTTL = DefaultUserRecordTTL
	}
}

func applyLedgerDefaults(l *LedgerConfig) {
	if l.Backend == "" {
		l.Backend = DefaultLedgerBackend
	}
	if l.SQLite.Path == "" {
		l.SQLite.Path = DefaultLedgerSQLitePath
		l.SQLite.WALMode = true
	}
	if l.SQLite.MaxOpenConns == 0 {
		l.SQLite.MaxOpenConns = DefaultLedgerSQLiteMaxOpenConns
	}
	if l.SQLite.MaxIdleConns == 0 {
		l.SQLite.MaxIdleConns = DefaultLedgerSQLiteMaxIdleConns
	}
	if l.SQLite.BusyTimeout == 0 {
		l.SQLite.BusyTimeout = DefaultLedgerSQLiteBusyTimeout
	}
	if l.Memory.MaxRecords == 0 {
		l.Memory.MaxRecords = DefaultLedgerMemoryMaxRecords
	}
	if l.AsyncBuffer == 0 {
		l.AsyncBuffer = DefaultLedgerAsyncBuffer
	}
	if l.WriteTimeout == 0 {
		l.WriteTimeout = DefaultLedgerWriteTimeout
	}
	if l.Retention.Days == 0 {
		l.Retention.Days = DefaultLedgerRetentionDays
	}
	if l.Retention.PruneSchedule == "" {
		l.Retention.PruneSchedule = DefaultLedgerPruneSchedule
	}
}
