// Package server wires the REST API, health, metrics and MCP endpoints into
// one chi router
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nutridash/dashboard/internal/infrastructure/config"
	"github.com/nutridash/dashboard/internal/infrastructure/http/handlers"
	"github.com/nutridash/dashboard/internal/infrastructure/http/middleware"
	"github.com/nutridash/dashboard/internal/infrastructure/monitoring"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"github.com/nutridash/dashboard/pkg/healthcheck"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Dependencies are the pieces the router mounts. Metrics, Tracing, MCP and
// the limiters are optional.
type Dependencies struct {
	Auth     *handlers.AuthAPIHandlers
	Catalog  *handlers.CatalogAPIHandlers
	Planner  *handlers.PlannerAPIHandlers
	Chat     *handlers.ChatAPIHandlers
	Feedback *handlers.FeedbackAPIHandlers

	Tokens  middleware.TokenValidator
	Health  *healthcheck.HealthCheck
	Metrics *monitoring.MetricsCollector
	Tracing *monitoring.TracingProvider
	MCP     http.Handler

	Limiter     *middleware.RateLimiter
	ChatLimiter *middleware.RateLimiter
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, deps Dependencies, logger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("http-server"),
		deps:   deps,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// Router exposes the handler tree, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	healthPath := s.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	metricsPath := s.config.Monitoring.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, healthPath, metricsPath))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.deps.Tracing != nil {
		r.Use(s.deps.Tracing.HTTPMiddleware)
	}
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.HTTPMiddleware)
	}
	if s.config.Server.EnableCompression {
		r.Use(newCompressor().Handler)
	}

	if s.deps.Health != nil {
		r.Get(healthPath, s.deps.Health.Handler())
		r.Get(healthPath+"/live", s.deps.Health.LivenessHandler())
		r.Get(healthPath+"/ready", s.deps.Health.ReadinessHandler())
	}
	if s.deps.Metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle(metricsPath, s.deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.requestTimeout()))
		r.Use(middleware.OptionalAuth(s.deps.Tokens))
		if s.deps.Limiter != nil {
			r.Use(s.deps.Limiter.Handler)
		}

		r.Route("/api/v1", s.setupAPIRoutes)
		if s.deps.MCP != nil {
			r.Post("/mcp", s.deps.MCP.ServeHTTP)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		appErr := apperrors.NewAppError(apperrors.CodeNotFound, "Route not found", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
	})

	return r
}

func (s *Server) setupAPIRoutes(r chi.Router) {
	d := s.deps

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me/metrics", d.Auth.GetMetrics)
		r.Put("/me/metrics", d.Auth.UpdateMetrics)
		r.Get("/feedback", d.Feedback.ListRecent)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/categories", d.Catalog.Categories)
		r.Get("/foods", d.Catalog.Foods)
		r.Get("/top", d.Catalog.Top)
	})

	r.Post("/feedback", d.Feedback.Submit)

	r.Post("/sessions", d.Planner.CreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", d.Planner.GetSession)
		r.Delete("/", d.Planner.DeleteSession)
		r.Get("/preferences", d.Planner.GetSession)
		r.Put("/preferences", d.Planner.UpdatePreferences)
		r.Get("/foods", d.Planner.BrowseFoods)

		r.Route("/plan", func(r chi.Router) {
			r.Get("/", d.Planner.ListEntries)
			r.Post("/", d.Planner.AddEntry)
			r.Delete("/", d.Planner.ClearPlan)
			r.Get("/summary", d.Planner.Summary)
			r.Get("/swaps", d.Planner.Swaps)
			r.Patch("/{index}", d.Planner.UpdateEntry)
			r.Delete("/{index}", d.Planner.RemoveEntry)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", d.Chat.History)
			r.Delete("/", d.Chat.Clear)
			if d.ChatLimiter != nil {
				r.With(d.ChatLimiter.Handler).Post("/", d.Chat.Send)
			} else {
				r.Post("/", d.Chat.Send)
			}
		})
	})
}

// requestTimeout leaves room for a slow chat provider
func (s *Server) requestTimeout() time.Duration {
	timeout := s.config.AI.Timeout + 5*time.Second
	if timeout < 30*time.Second {
		timeout = 30 * time.Second
	}
	return timeout
}

func newCompressor() *chimiddleware.Compressor {
	c := chimiddleware.NewCompressor(5, "application/json", "text/plain")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if s.config.Server.EnableHTTP2 {
		if err := http2.ConfigureServer(s.server, nil); err != nil {
			s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
		}
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
