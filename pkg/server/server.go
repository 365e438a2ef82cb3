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

	"go.opentelemetry.io/otel/trace"

	"quillpress/wordguard/pkg/config"
	"quillpress/wordguard/pkg/server/handlers"
	"quillpress/wordguard/pkg/server/middleware"
	"quillpress/wordguard/pkg/telemetry/health"
	"quillpress/wordguard/pkg/telemetry/metrics"
	"quillpress/wordguard/pkg/telemetry/tracing"
)

// Dependencies are the services the HTTP API exposes. Violations,
// Recorder, Metrics and Tracer may be nil; the related routes or
// instrumentation are then left out.
type Dependencies struct {
	Moderator  handlers.Moderator
	Terms      handlers.TermManager
	Comments   handlers.CommentService
	Violations handlers.ViolationQuerier
	Recorder   handlers.Recorder
	Health     *health.Checker
	Metrics    *metrics.Collector
	Tracer     trace.Tracer
	Version    health.VersionInfo
	Logger     *slog.Logger
}

// Server is the wordguard HTTP server.
type Server struct {
	config    *config.ServerConfig
	telemetry *config.TelemetryConfig
	deps      Dependencies
	logger    *slog.Logger

	httpServer   *http.Server
	listener     net.Listener
	ready        chan struct{}
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. Nothing listens until Start is called.
func NewServer(cfg *config.ServerConfig, telemetry *config.TelemetryConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		telemetry:    telemetry,
		deps:         deps,
		logger:       logger.With("component", "server"),
		ready:        make(chan struct{}),
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and blocks until ctx is
// cancelled, SIGINT or SIGTERM arrives, Stop is called or serving fails.
// A graceful shutdown is performed before it returns.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	close(s.ready)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
	return s.Shutdown(context.Background())
}

// Stop asks a running Start to shut down. It is safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("http server stopped")
	})

	return shutdownErr
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	mws := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.UserID,
		middleware.Logging(s.deps.Logger),
		middleware.CORS(&s.config.CORS),
		middleware.MaxBody(s.config.MaxBodyBytes),
	}
	if s.deps.Tracer != nil {
		mws = append(mws, tracing.HTTPMiddleware(s.deps.Tracer))
	}
	// Metrics must stay innermost to see the matched pattern.
	if s.deps.Metrics != nil {
		mws = append(mws, middleware.Metrics(s.deps.Metrics))
	}

	return middleware.Chain(mux, mws...)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	logger := s.deps.Logger

	moderation := handlers.NewModerationHandler(s.deps.Moderator, s.deps.Recorder, logger)
	mux.HandleFunc("POST /api/v1/moderation/check", moderation.Check)

	terms := handlers.NewTermsHandler(s.deps.Terms, s.deps.Moderator, logger)
	mux.HandleFunc("GET /api/v1/terms", terms.List)
	mux.HandleFunc("POST /api/v1/terms", terms.Add)
	mux.HandleFunc("POST /api/v1/terms/refresh", terms.Refresh)
	mux.HandleFunc("DELETE /api/v1/terms/{id}", terms.Remove)

	comments := handlers.NewCommentsHandler(s.deps.Comments, logger)
	mux.HandleFunc("GET /api/v1/articles/{articleID}/comments", comments.List)
	mux.HandleFunc("POST /api/v1/articles/{articleID}/comments", comments.Post)
	mux.HandleFunc("DELETE /api/v1/comments/{id}", comments.Delete)

	if s.deps.Violations != nil {
		violations := handlers.NewViolationsHandler(s.deps.Violations, logger)
		mux.HandleFunc("GET /api/v1/violations", violations.List)
	}

	if s.deps.Health != nil {
		mux.Handle("GET "+s.telemetry.Health.LivenessPath, s.deps.Health.LivenessHandler())
		mux.Handle("GET "+s.telemetry.Health.ReadinessPath, s.deps.Health.ReadinessHandler())
	}
	mux.Handle("GET /version", health.VersionHandler(s.deps.Version))

	if s.deps.Metrics != nil && s.telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}
}
