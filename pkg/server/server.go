// Package server exposes the Case Workflow component and its supporting
// services (decision intelligence, audit export, health, metrics) over
// the REST surface of spec.md §6.1.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/autocomply/casework/pkg/audit"
	"github.com/autocomply/casework/pkg/config"
	"github.com/autocomply/casework/pkg/intelligence"
	"github.com/autocomply/casework/pkg/recompute"
	"github.com/autocomply/casework/pkg/telemetry/health"
	"github.com/autocomply/casework/pkg/telemetry/metrics"
	"github.com/autocomply/casework/pkg/workflow"
)

// Server is the HTTP front end of the case workflow service.
type Server struct {
	cfg *config.Config

	workflow *workflow.Workflow
	hook     *recompute.Hook
	chain    *intelligence.ChainStore
	exporter *audit.Exporter
	health   *health.Checker
	metrics  *metrics.Collector

	version   string
	commit    string
	buildTime string

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Deps bundles the components a Server routes requests to.
type Deps struct {
	Workflow *workflow.Workflow
	Hook     *recompute.Hook
	Chain    *intelligence.ChainStore
	Exporter *audit.Exporter
	Health   *health.Checker
	Metrics  *metrics.Collector

	// Version, Commit, and BuildTime populate GET /version. Left empty
	// they report "dev"/"unknown"/"unknown".
	Version   string
	Commit    string
	BuildTime string
}

// NewServer constructs a Server. cfg.Server governs listen address,
// timeouts, and CORS; cfg.Intelligence.ThrottleSeconds sets the manual
// recompute throttle, cfg.Telemetry.Metrics decides whether /metrics is
// mounted, and cfg as a whole feeds the /health/details warnings surface.
func NewServer(cfg *config.Config, deps Deps) *Server {
	version, commit, buildTime := deps.Version, deps.Commit, deps.BuildTime
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}

	return &Server{
		cfg:       cfg,
		workflow:  deps.Workflow,
		hook:      deps.Hook,
		chain:     deps.Chain,
		exporter:  deps.Exporter,
		health:    deps.Health,
		metrics:   deps.Metrics,
		version:   version,
		commit:    commit,
		buildTime: buildTime,
	}
}

// Start builds the route table, binds the listen address, and serves
// until ctx is cancelled or Shutdown is called. It blocks.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.cfg.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting case workflow server", "address", s.cfg.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains in-flight requests and stops the server.
// It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("case workflow server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is currently accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully wrapped HTTP handler, for use in tests via
// httptest.Server without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
