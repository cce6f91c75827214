// Package web provides the HTTP job service that triggers PIP loads.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/cusip/internal/config"
	"github.com/JonMunkholm/cusip/internal/core"
	"github.com/JonMunkholm/cusip/internal/web/middleware"
)

// Version is reported by /health.
const Version = "0.1.0"

// Loader runs loads against a discovered file set. *core.Loader satisfies it.
type Loader interface {
	LoadOne(ctx context.Context, kind core.FileKind, files core.FileSet, src core.FileSource) core.LoadResult
	LoadAll(ctx context.Context, files core.FileSet, src core.FileSource) []core.LoadResult
}

// Pinger checks database reachability. *core.PgStore satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server drives.
type Deps struct {
	Loader Loader
	Source core.FileSource
	DB     Pinger
	Gate   *core.Gate

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP job service.
type Server struct {
	deps   Deps
	cfg    *config.Config
	router *chi.Mux
	server *http.Server

	// now supplies the default business date.
	now func() time.Time
}

// NewServer creates a new Server instance.
func NewServer(deps Deps, cfg *config.Config) *Server {
	if deps.Gate == nil {
		deps.Gate = core.NewGate(cfg.Load.LockWait)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		deps:   deps,
		cfg:    cfg,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(middleware.ParseProxies(s.cfg.Server.TrustedProxies)))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Probes
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/live", s.handleLive)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	// Jobs
	s.router.Route("/jobs", func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute).Middleware)
		}

		r.Post("/load-issuer", s.handleLoadKind(core.KindIssuer))
		r.Post("/load-issue", s.handleLoadKind(core.KindIssue))
		r.Post("/load-issue-attr", s.handleLoadKind(core.KindIssueAttribute))
		r.Post("/load-all", s.handleLoadAll)
		r.Get("/active", s.handleActive)
	})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
