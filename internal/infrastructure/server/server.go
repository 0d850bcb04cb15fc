package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/craftshop/core/docs"
	httpHandlers "github.com/craftshop/core/internal/adapters/http"
	"github.com/craftshop/core/internal/adapters/uploads"
	"github.com/craftshop/core/internal/infrastructure/config"
	"github.com/craftshop/core/internal/infrastructure/database"
	"github.com/craftshop/core/internal/infrastructure/logger"
	"github.com/craftshop/core/internal/infrastructure/metrics"
	"github.com/craftshop/core/internal/ports"
	"github.com/craftshop/core/web"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	service ports.CraftService
	metrics *metrics.Metrics
	db      *database.DB
}

// Dependencies are the collaborators the server routes requests to
type Dependencies struct {
	Service ports.CraftService
	// Metrics is nil when metrics are disabled
	Metrics *metrics.Metrics
	// DB is nil for file and memory stores
	DB *database.DB
}

// New creates a new server instance
func New(cfg *config.Config, deps Dependencies, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("http"),
		service: deps.Service,
		db:      deps.DB,
	}
	if cfg.Metrics.Enabled {
		server.metrics = deps.Metrics
	}

	server.setupMiddleware()

	craftHandler := httpHandlers.NewCraftHandler(deps.Service, appLogger, cfg.Uploads.MaxSizeBytes)
	if err := server.setupRoutes(craftHandler); err != nil {
		return nil, err
	}

	return server, nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(craftHandler *httpHandlers.CraftHandler) error {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	crafts := s.echo.Group("/crafts")
	crafts.GET("", craftHandler.ListCrafts)
	crafts.POST("", craftHandler.CreateCraft)
	crafts.DELETE("/:id", craftHandler.DeleteCraft)

	// Locally stored images are served back under their stored path
	if s.config.Uploads.Driver == "local" {
		s.echo.Static("/"+uploads.PublicPrefix, s.config.Uploads.Dir)
	}

	index, err := web.Index()
	if err != nil {
		return err
	}
	assets, err := web.Assets()
	if err != nil {
		return err
	}
	s.echo.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, index)
	})
	s.echo.StaticFS("/assets", assets)

	return nil
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.service.Ping(ctx); err != nil {
		status = "error"
		checks["store"] = s.failedCheck(err, "driver", s.config.Store.Driver)
	} else {
		checks["store"] = map[string]interface{}{
			"status": "ok",
			"driver": s.config.Store.Driver,
		}
	}

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			status = "error"
			checks["database"] = s.failedCheck(err)
		} else {
			checks["database"] = map[string]interface{}{"status": "ok", "stats": s.db.DB.Stats()}
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

// failedCheck describes a failing health check. Error text can carry file
// paths and DSNs, so it is only exposed outside production.
func (s *Server) failedCheck(err error, fields ...string) map[string]interface{} {
	check := map[string]interface{}{"status": "error"}
	for i := 0; i+1 < len(fields); i += 2 {
		check[fields[i]] = fields[i+1]
	}
	if !s.config.App.IsProduction() {
		check["error"] = err.Error()
	}
	return check
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.service.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "store_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}
