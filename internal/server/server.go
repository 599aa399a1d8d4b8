package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/skillexchange/modpanel/internal/handler"
	"github.com/skillexchange/modpanel/internal/metrics"
	"github.com/skillexchange/modpanel/internal/moderation"
	"github.com/skillexchange/modpanel/internal/openapi"
	"github.com/skillexchange/modpanel/internal/poller"
	"github.com/skillexchange/modpanel/internal/server/middleware"
	"github.com/skillexchange/modpanel/internal/session"
)

const (
	adminPrefix = "/admin"
	loginPath   = "/admin/login"
	sessionPath = "/admin/api/session"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RefreshInterval time.Duration
	LoginRateLimit  int // attempts per minute per IP
	SecureCookies   bool
	Version         string
}

// DefaultConfig returns a Config with sensible defaults for a local
// dashboard.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8090,
		ShutdownTimeout: 15 * time.Second,
		CORSOrigins:     []string{"*"},
		RefreshInterval: time.Minute,
		LoginRateLimit:  10,
		Version:         "dev",
	}
}

// Server is the dashboard HTTP server. It owns the Chi router, the admin
// session and the moderation cache, and keeps the cache fresh with a poller.
type Server struct {
	cfg        Config
	router     chi.Router
	manager    *session.Manager
	cache      *moderation.Cache
	poller     *poller.Poller
	metrics    *metrics.Metrics
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. pruner drops expired cookies from the state store on
// every poll and may be nil.
func New(cfg Config, manager *session.Manager, cache *moderation.Cache, pruner poller.Pruner, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		manager: manager,
		cache:   cache,
		poller:  poller.New(cfg.RefreshInterval, cache, pruner, logger),
		metrics: metrics.New(),
		logger:  logger,
	}
	cache.SetObserver(s.metrics)
	s.metrics.TrackOpenReports(func() int { return cache.DashboardSummary().OpenReportsCount })
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(s.metrics.Instrument)
	r.Use(middleware.Logger(s.logger, session.CookieName))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	r.Use(middleware.SessionGuard(middleware.GuardConfig{
		CookieName: session.CookieName,
		Prefix:     adminPrefix,
		LoginPath:  loginPath,
		Public:     []string{http.MethodPost + " " + sessionPath},
	}))

	// --- Probes, metrics and API description (outside the guarded prefix) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/openapi.json", s.handleOpenAPI)
	r.Handle("/metrics", s.metrics.Handler())

	r.Get(loginPath, s.handleLoginPage)

	// --- Dashboard API ---
	r.Route("/admin/api", func(r chi.Router) {
		sessionHandler := handler.NewSessionHandler(s.manager, s.cache)
		sessionHandler.SetSecureCookies(s.cfg.SecureCookies)
		modHandler := handler.NewModerationHandler(s.cache)

		login := r.With()
		if s.cfg.LoginRateLimit > 0 {
			login = r.With(middleware.RateLimit(s.cfg.LoginRateLimit))
		}
		login.Post("/session", sessionHandler.Login)
		r.Delete("/session", sessionHandler.Logout)
		r.Get("/session", sessionHandler.Current)

		r.Post("/load", modHandler.Load)
		r.Get("/dashboard", modHandler.Dashboard)
		r.Get("/actions", modHandler.Actions)
		r.Get("/audit-logs", modHandler.AuditLogs)

		r.Get("/reports", modHandler.ListReports)
		r.Post("/reports", modHandler.FileReport)
		r.Get("/reports/{id}", modHandler.GetReport)
		r.Post("/reports/{id}/resolve", modHandler.ResolveReport)
		r.Post("/reports/{id}/reject", modHandler.RejectReport)
		r.Delete("/reports/{id}", modHandler.DeleteReport)

		r.Get("/users/{id}", modHandler.GetUser)
		r.Post("/users/{id}/status", modHandler.SetUserStatus)

		r.Get("/chats", modHandler.Chats)
		r.Get("/chats/{id}/messages", modHandler.ChatMessages)
		r.Post("/messages/{id}/moderation", modHandler.SetMessageModeration)
		r.Delete("/messages/{id}", modHandler.DeleteMessage)
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. It reports 503 until an admin session
// exists, since every dashboard call needs one.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"session": "ok",
		"data":    "ok",
	}
	status := "ok"
	httpStatus := http.StatusOK

	if !s.manager.IsAuthed() {
		checks["session"] = "not logged in"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	if !s.cache.DataLoaded() {
		checks["data"] = "not loaded"
	}
	if msg := s.cache.Error(); msg != "" {
		checks["data"] = "error: " + msg
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	doc := openapi.Generate(fmt.Sprintf("%s://%s", scheme, r.Host), s.cfg.Version)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.logger.Error("encode openapi document", "error", err)
	}
}

// handleLoginPage tells browsers redirected by the session guard how to log
// in. There is no bundled UI.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Log in by sending POST " + sessionPath + " with {email, password, rememberMe}.",
		"authed":  s.manager.IsAuthed(),
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then stops the poller and drains in-flight requests.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.poller.Start()
	defer s.poller.Shutdown()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
