package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/quartz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/api"
	"vadapro/analyzer/pkg/cli"
	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/ledger/recorder"
	"vadapro/analyzer/pkg/ledger/retention"
	"vadapro/analyzer/pkg/ledger/storage"
	"vadapro/analyzer/pkg/limits"
	limitstorage "vadapro/analyzer/pkg/limits/storage"
	"vadapro/analyzer/pkg/providers/gemini"
	"vadapro/analyzer/pkg/queue"
	"vadapro/analyzer/pkg/scheduler"
	"vadapro/analyzer/pkg/server"
	"vadapro/analyzer/pkg/telemetry/health"
	"vadapro/analyzer/pkg/telemetry/logging"
	"vadapro/analyzer/pkg/telemetry/metrics"
	"vadapro/analyzer/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	noWatch       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the analysis gateway",
	Long: `Start the analysis gateway with the specified configuration.

The gateway serves POST /ai/analyze, GET /ai/usage, GET /ai/model and the
supporting endpoints until it receives SIGINT or SIGTERM. On shutdown it
stops the scheduler, fails requests still waiting in the queue, flushes the
usage ledger and drains in-flight HTTP requests.

The limits section of the configuration file is reloaded when the file
changes.

Examples:
  # Start with config.yaml (or defaults and environment if it is missing)
  vadapro run

  # Start with a custom config
  vadapro run --config /etc/vadapro/config.yaml

  # Override listen address
  vadapro run --listen 0.0.0.0:8080

  # Validate config without starting the server
  vadapro run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.noWatch, "no-watch", false, "do not reload limits when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	if err := config.Initialize(path); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer app.close()

	if path != "" && !runFlags.noWatch {
		go app.watchConfig(ctx, path)
	}

	logger.Info("analysis gateway configured",
		"config", path,
		"model", app.provider.Model(),
		"requests_per_minute", cfg.Limits.RequestsPerMinute,
		"requests_per_day", cfg.Limits.RequestsPerDay,
		"max_tokens_per_minute", cfg.Limits.MaxTokensPerMinute,
		"ledger", ledgerDescription(&cfg.Ledger),
	)

	if err := app.run(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// app holds the wired components of a running gateway.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	tracer    *tracing.Tracer
	provider  *gemini.Client
	limits    *limits.Manager
	store     ledger.Storage
	recorder  *recorder.Recorder
	pruner    *retention.Pruner
	queue     *queue.Queue
	scheduler *scheduler.Scheduler
	server    *server.Server
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	clock := quartz.NewReal()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	a.tracer = tracer

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.IsEnabled() {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	provider, err := gemini.New(ctx, &cfg.Gemini, gemini.WithTracer(tracer), gemini.WithLogger(logger))
	if err != nil {
		a.close()
		return nil, err
	}
	a.provider = provider

	a.limits, err = limits.NewManager(limits.Config{
		Limits: limits.LimitsFromConfig(&cfg.Limits),
		Store: limitstorage.NewMemoryStore(limitstorage.MemoryStoreConfig{
			MaxEntries: cfg.Limits.MaxTrackedUsers,
			TTL:        cfg.Limits.UserRecordTTL,
		}),
		Clock:   clock,
		Metrics: collector,
		Logger:  logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	executorCfg := analysis.ExecutorConfig{
		Provider:    provider,
		Usage:       a.limits,
		Tracer:      tracer,
		Metrics:     collector,
		Clock:       clock,
		Logger:      logger,
		PreviewRows: cfg.Analysis.CSVPreviewRows,
	}
	if cfg.Ledger.IsEnabled() {
		if err := a.openLedger(ctx, clock); err != nil {
			a.close()
			return nil, err
		}
		executorCfg.Ledger = a.recorder
	}

	executor, err := analysis.NewExecutor(executorCfg)
	if err != nil {
		a.close()
		return nil, err
	}

	a.queue, err = queue.New(queue.Config{
		Limiter:  a.limits,
		Runner:   executor,
		MaxDepth: cfg.Queue.MaxDepth,
		Workers:  cfg.Queue.Workers,
		Clock:    clock,
		Metrics:  collector,
		Logger:   logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	a.scheduler, err = scheduler.New(scheduler.Config{
		Usage:         a.limits,
		Queue:         a.queue,
		TickInterval:  cfg.Scheduler.TickInterval,
		DrainInterval: cfg.Queue.DrainInterval,
		Clock:         clock,
		Metrics:       collector,
		Logger:        logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	apiCfg := api.Config{
		Limiter:        a.limits,
		Executor:       executor,
		Queue:          a.queue,
		Uploader:       provider,
		Ledger:         a.store,
		MaxWait:        cfg.Queue.MaxWait,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxUploadBytes: cfg.Analysis.MaxUploadBytes,
		Metrics:        collector,
		Logger:         logger,
	}
	if cfg.Queue.DrainOnEnqueueEnabled() {
		apiCfg.OnEnqueue = func() { a.scheduler.TriggerDrain(ctx) }
	}
	handler, err := api.New(apiCfg)
	if err != nil {
		a.close()
		return nil, err
	}

	a.server, err = server.New(server.Options{
		Server:    &cfg.Server,
		Telemetry: &cfg.Telemetry,
		API:       handler,
		Health:    a.healthChecker(clock),
		Metrics:   collector,
		Version:   health.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
		Logger:    logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openLedger(ctx context.Context, clock quartz.Clock) error {
	store, err := storage.Open(&a.cfg.Ledger)
	if err != nil {
		return fmt.Errorf("failed to open usage ledger: %w", err)
	}
	a.store = store
	a.recorder = recorder.New(store, recorder.ConfigFrom(&a.cfg.Ledger))

	a.pruner = retention.NewPruner(store, a.cfg.Ledger.Retention, clock)
	if err := a.pruner.Start(ctx); err != nil {
		a.logger.Warn("failed to start ledger retention", "error", err)
	}
	return nil
}

func (a *app) healthChecker(clock quartz.Clock) *health.Checker {
	checker := health.New(clock, 0)
	checker.RegisterCheck("gemini", a.provider.Ready)
	if pinger, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		checker.RegisterCheck("ledger", pinger.Ping)
	}
	return checker
}

// run serves until ctx is cancelled or the server fails. Queued requests
// are failed as soon as shutdown begins so their callers are answered
// before the server stops waiting for in-flight requests.
func (a *app) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopQueue := context.AfterFunc(ctx, a.queue.Shutdown)
	defer stopQueue()

	var g errgroup.Group
	g.Go(func() error { return a.scheduler.Run(ctx) })

	err := a.server.Start(ctx)

	cancel()
	a.queue.Shutdown()
	if serr := g.Wait(); serr != nil {
		a.logger.Error("scheduler stopped with error", "error", serr)
	}
	a.scheduler.Wait()
	return err
}

func (a *app) watchConfig(ctx context.Context, path string) {
	w, err := config.NewWatcher(path, 0)
	if err != nil {
		a.logger.Warn("config hot reload disabled", "error", err)
		return
	}

	err = w.Watch(ctx, func(next *config.Config) error {
		if err := a.limits.SetLimits(limits.LimitsFromConfig(&next.Limits)); err != nil {
			return err
		}
		config.SetConfig(next)
		return nil
	})
	if err != nil {
		a.logger.Warn("config watcher stopped", "error", err)
	}
}

// close releases components in reverse dependency order. It tolerates a
// partially built app.
func (a *app) close() {
	if a.pruner != nil {
		a.pruner.Stop()
	}
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.logger.Warn("failed to flush usage ledger", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close usage ledger", "error", err)
		}
	}
	if a.provider != nil {
		_ = a.provider.Close()
	}
	if a.tracer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("failed to flush traces", "error", err)
		}
	}
	a.logger.Info("analysis gateway shut down")
}
