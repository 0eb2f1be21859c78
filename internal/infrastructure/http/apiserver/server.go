// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/reelchef/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/reelchef/internal/infrastructure/http/ws"
	"github.com/alchemorsel/reelchef/internal/infrastructure/monitoring"
	"github.com/alchemorsel/reelchef/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Server is the API HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux

	videos   *handlers.VideoHandlers
	health   *healthcheck.HealthCheck
	hub      *ws.Hub
	metrics  *monitoring.HTTPMetrics
	gatherer prometheus.Gatherer
}

// NewServer creates a new API server instance. metrics and gatherer may be nil
// when monitoring is disabled.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	videos *handlers.VideoHandlers,
	health *healthcheck.HealthCheck,
	hub *ws.Hub,
	metrics *monitoring.HTTPMetrics,
	gatherer prometheus.Gatherer,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   log.Named("apiserver"),
		videos:   videos,
		health:   health,
		hub:      hub,
		metrics:  metrics,
		gatherer: gatherer,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:           cfg.ServerAddr(),
		Handler:        otelhttp.NewHandler(s.router, "reelchef-api"),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/health", s.health.Handler())
	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())

	if s.config.Monitoring.EnableMetrics && s.gatherer != nil {
		r.Handle(s.config.Monitoring.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Websocket connections outlive the request timeout
	r.Get("/ws/videos", s.hub.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Security())
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
		if s.config.Server.EnableCompression {
			r.Use(middleware.Compress(5))
		}

		r.Route("/videos", func(r chi.Router) {
			r.Get("/{id}", s.videos.GetVideo)

			// Analysis calls the model and is throttled per client
			r.Group(func(r chi.Router) {
				if s.config.Server.RateLimitPerMin > 0 {
					limiter := middleware.NewRateLimiter(s.config.Server.RateLimitPerMin, s.config.Server.RateLimitBurst, s.logger)
					r.Use(limiter.Handler)
				}
				r.Post("/analyze", s.videos.Analyze)
				r.Post("/prescreen", s.videos.PreScreen)
			})
		})
	})

	return r
}

// Handler returns the routed handler without the server wrapper
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server and blocks until it stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if s.config.Server.EnableHTTP2 {
		if err := http2.ConfigureServer(s.server, nil); err != nil {
			s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
		}
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
