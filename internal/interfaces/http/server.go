// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/app"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/routes"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	app        *app.App
	gin        *gin.Engine
	httpServer *http.Server
	logger     logrus.FieldLogger
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with its routes in place
func NewServer(a *app.App) (*Server, error) {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("failed to register validators: %w", err)
		}
	}

	s := &Server{
		app:       a,
		gin:       gin.New(),
		logger:    a.Logger.WithField("component", "http"),
		startedAt: time.Now(),
	}
	if err := s.gin.SetTrustedProxies(a.Config.Security.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + a.Config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
	return s, nil
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":    s.app.Config.Server.Port,
		"api":     "/api/v1",
		"health":  "/health",
		"metrics": s.app.Config.Metrics.Path,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	cfg := s.app.Config

	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.app.Logger))
	if cfg.Metrics.Enabled {
		s.gin.Use(middleware.Metrics(s.app.HTTP))
	}
	s.gin.Use(middleware.CORS(cfg))
	s.gin.Use(middleware.SecurityHeaders(cfg.App.Name))
	s.gin.Use(middleware.RateLimit(cfg, s.app.Redis.GetClient(), s.logger))
	s.gin.Use(middleware.RequestSizeLimit(cfg.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(cfg.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	cfg := s.app.Config

	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	if cfg.Metrics.Enabled {
		s.gin.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.app.Registry, promhttp.HandlerOpts{})))
	}
	s.gin.Static("/assets", cfg.App.AssetsPath)

	apiV1 := s.gin.Group("/api/v1")
	apiV1.Use(middleware.Session(cfg))
	apiV1.Use(middleware.OptionalAuth(s.app.Identity, s.app.Identity.Watcher()))

	routes.SetupRoutes(apiV1, s.app)
}

// healthCheck pings every backing store
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for name, err := range s.app.Health(ctx) {
		if err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.app.Config.App.Version,
		"environment": s.app.Config.App.Environment,
	})
}

// readinessCheck reports that routes are installed
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
