// Package server exposes the project operations over HTTP. It is a thin
// request/response façade: handlers translate JSON payloads to service
// calls and typed service errors to status codes, with no logic of their
// own.
package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sealmit/asig/internal/project"
	"github.com/sealmit/asig/pkg/types"
)

// Config holds the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8083".
	Addr string

	// UIDir is the directory holding the built frontend. Empty or missing
	// directory disables static serving.
	UIDir string
}

// Server wires the gin engine, routes, and the project service together.
type Server struct {
	cfg     Config
	svc     *project.Service
	logger  *slog.Logger
	engine  *gin.Engine
	metrics *httpMetrics
}

// New builds a server with all routes registered.
func New(cfg Config, svc *project.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, svc: svc, logger: logger, metrics: newHTTPMetrics()}

	registerProjectNameValidator()

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLog(), s.metrics.middleware())
	s.engine = engine
	s.registerRoutes()
	return s
}

// Engine returns the underlying gin engine, used by tests to drive
// requests through httptest.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("listening", "addr", s.cfg.Addr)
	return s.engine.Run(s.cfg.Addr)
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	projects := api.Group("/projects")
	{
		projects.GET("", s.listProjects)
		projects.POST("", s.createProject)
		projects.GET("/:name", s.getProject)
		projects.GET("/:name/history", s.getHistory)
		projects.POST("/:name/checkout", s.checkout)
		projects.POST("/:name/commit", s.commit)
		projects.GET("/:name/settings", s.getSettings)
		projects.PUT("/:name/settings", s.putSettings)
		projects.PUT("/:name/levels", s.putLevels)

		projects.POST("/:name/artifacts", s.createArtifact)
		projects.PUT("/:name/artifacts/:id", s.updateArtifact)
		projects.DELETE("/:name/artifacts/:id", s.deleteArtifact)
		projects.POST("/:name/traces", s.createTrace)
	}

	api.POST("/ai/chat", s.aiChat)

	s.registerMetricsRoute()
	s.registerStaticRoutes()
}

// requestLog emits one structured log line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// registerProjectNameValidator adds the "projectname" rule to gin's
// binding validator. Safe to call more than once.
func registerProjectNameValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("projectname", func(fl validator.FieldLevel) bool {
		return types.ValidateProjectName(fl.Field().String()) == nil
	})
}
