package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "60s"

gemini:
  model: "gemini-2.0-flash"
  timeout: "20s"

limits:
  requests_per_minute: 1
  requests_per_day: 100
  max_tokens_per_minute: 100000

queue:
  workers: 2
  drain_on_enqueue: false

ledger:
  backend: "memory"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("expected model %q, got %q", "gemini-2.0-flash", cfg.Gemini.Model)
	}
	if cfg.Limits.RequestsPerMinute != 1 || cfg.Limits.RequestsPerDay != 100 || cfg.Limits.MaxTokensPerMinute != 100000 {
		t.Errorf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.Queue.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Queue.Workers)
	}
	if cfg.Queue.DrainOnEnqueueEnabled() {
		t.Error("expected drain on enqueue to be disabled")
	}
	if cfg.Ledger.Backend != "memory" {
		t.Errorf("expected memory ledger, got %q", cfg.Ledger.Backend)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
limits:
  requests_per_minute: -3
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
limits:
  requests_per_minute: 5
`)

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("VADAPRO_LIMITS_REQUESTS_PER_MINUTE", "7")
	t.Setenv("VADAPRO_LIMITS_MAX_TOKENS_PER_MINUTE", "5000")
	t.Setenv("VADAPRO_QUEUE_DRAIN_INTERVAL", "2s")
	t.Setenv("VADAPRO_LEDGER_BACKEND", "memory")
	t.Setenv("VADAPRO_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("expected API key from environment, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Limits.RequestsPerMinute != 7 {
		t.Errorf("expected env to override file value, got %d", cfg.Limits.RequestsPerMinute)
	}
	if cfg.Limits.MaxTokensPerMinute != 5000 {
		t.Errorf("expected 5000 tokens per minute, got %d", cfg.Limits.MaxTokensPerMinute)
	}
	if cfg.Queue.DrainInterval != 2*time.Second {
		t.Errorf("expected drain interval 2s, got %v", cfg.Queue.DrainInterval)
	}
	if cfg.Ledger.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Ledger.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected warn level, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("VADAPRO_SERVER_LISTEN_ADDRESS", ":7000")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.ListenAddress != ":7000" {
		t.Errorf("expected listen address %q, got %q", ":7000", cfg.Server.ListenAddress)
	}
	if cfg.Limits.RequestsPerDay != DefaultRequestsPerDay {
		t.Errorf("expected default daily limit, got %d", cfg.Limits.RequestsPerDay)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("VADAPRO_DOTENV_PROBE=from-file\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("VADAPRO_DOTENV_PROBE") })

	if err := loadDotEnv(envPath); err != nil {
		t.Fatalf("failed to load .env: %v", err)
	}
	if got := os.Getenv("VADAPRO_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestSingleton(t *testing.T) {
	globalConfig = nil
	globalPath = ""
	initOnce = sync.Once{}
	t.Cleanup(func() {
		globalConfig = nil
		globalPath = ""
		initOnce = sync.Once{}
	})

	dir := t.TempDir()
	path := writeConfig(t, dir, `
limits:
  requests_per_minute: 4
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if GetConfig().Limits.RequestsPerMinute != 4 {
		t.Errorf("expected 4, got %d", GetConfig().Limits.RequestsPerMinute)
	}
	if Path() != path {
		t.Errorf("expected path %q, got %q", path, Path())
	}

	writeConfig(t, dir, `
limits:
  requests_per_minute: 6
`)
	cfg, err := ReloadConfig()
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if cfg.Limits.RequestsPerMinute != 6 || MustGetConfig().Limits.RequestsPerMinute != 6 {
		t.Errorf("expected reloaded value 6, got %d", cfg.Limits.RequestsPerMinute)
	}

	writeConfig(t, dir, `
limits:
  requests_per_minute: -1
`)
	if _, err := ReloadConfig(); err == nil {
		t.Error("expected invalid reload to fail")
	}
	if GetConfig().Limits.RequestsPerMinute != 6 {
		t.Errorf("expected previous config to remain, got %d", GetConfig().Limits.RequestsPerMinute)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
limits:
  requests_per_minute: 2
`)

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(cfg *Config) error {
			reloaded <- cfg
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, `
limits:
  requests_per_minute: 8
`)

	select {
	case cfg := <-reloaded:
		if cfg.Limits.RequestsPerMinute != 8 {
			t.Errorf("expected reloaded limit 8, got %d", cfg.Limits.RequestsPerMinute)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("expected clean stop, got %v", err)
	}
}
