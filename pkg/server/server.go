package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/api"
	"vadapro/analyzer/pkg/api/middleware"
	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/telemetry/health"
	"vadapro/analyzer/pkg/telemetry/metrics"
)

// Options configures a Server.
type Options struct {
	Server    *config.ServerConfig
	Telemetry *config.TelemetryConfig
	API       *api.Handler

	// Optional.
	Health  *health.Checker
	Metrics *metrics.Collector
	Version health.VersionInfo
	Logger  *slog.Logger
}

// Server is the gateway's HTTP server.
type Server struct {
	config       *config.ServerConfig
	telemetry    *config.TelemetryConfig
	api          *api.Handler
	health       *health.Checker
	metrics      *metrics.Collector
	version      health.VersionInfo
	logger       *slog.Logger
	handler      http.Handler
	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Routes are built once here.
func New(opts Options) (*Server, error) {
	switch {
	case opts.Server == nil:
		return nil, errors.New("server config is required")
	case opts.Telemetry == nil:
		return nil, errors.New("telemetry config is required")
	case opts.API == nil:
		return nil, errors.New("api handler is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		config:       opts.Server,
		telemetry:    opts.Telemetry,
		api:          opts.API,
		health:       opts.Health,
		metrics:      opts.Metrics,
		version:      opts.Version,
		logger:       opts.Logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
	s.handler = s.setupRoutes()
	return s, nil
}

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting analysis gateway", "address", listener.Addr().String())

		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		s.markStopped()
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
	}
	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests. It is safe to call more than
// once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)

		s.mu.RLock()
		running, httpServer := s.isRunning, s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.markStopped()
		s.logger.Info("analysis gateway stopped")
	})

	return shutdownErr
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// Addr returns the bound address while running, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures the router and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Identity)
	r.Use(middleware.Logging(s.metrics))
	if s.config.CORS.IsEnabled() {
		r.Use(s.corsHandler())
	}

	r.Group(func(r chi.Router) {
		if s.config.IPRateLimit > 0 {
			r.Use(s.ipRateLimiter())
		}
		s.api.Register(r)
	})

	if s.health != nil {
		r.Get(s.telemetry.Health.LivenessPath, s.health.LivenessHandler())
		r.Get(s.telemetry.Health.ReadinessPath, s.health.ReadinessHandler())
	}
	r.Get("/version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))

	if s.metrics != nil && s.telemetry.Metrics.IsEnabled() {
		r.Handle(s.telemetry.Metrics.Path, s.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, analysis.ErrorTypeValidation, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, analysis.ErrorTypeValidation, "Method not allowed")
	})

	return r
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	c := s.config.CORS
	return cors.Handler(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	})
}

// ipRateLimiter guards /ai against floods from a single address. It runs
// before admission, so requests it rejects never reach the per-user
// counters.
func (s *Server) ipRateLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		s.config.IPRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.metrics.RecordError(string(analysis.ErrorTypeRateLimit))
			writeError(w, http.StatusTooManyRequests, analysis.ErrorTypeRateLimit,
				"Too many requests from this address. Please try again later.")
		}),
	)
}
