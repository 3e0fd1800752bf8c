// Package server wires the admin HTTP surface: router, middleware, and
// graceful shutdown.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/TraceForge/internal/api/http"
	"github.com/GriffinCanCode/TraceForge/internal/api/middleware"
	"github.com/GriffinCanCode/TraceForge/internal/config"
	"github.com/GriffinCanCode/TraceForge/internal/logging"
)

// Server hosts the admin API.
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *logging.Logger
}

// New builds the admin server around the given handlers.
func New(cfg config.ServerConfig, handlers *apihttp.Handlers, logger *logging.Logger, development bool) *Server {
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/health", handlers.Health)
	router.GET("/status", handlers.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/symbols", handlers.Symbols)
	router.GET("/traces/recent", handlers.RecentTraces)
	router.GET("/ws/traces", handlers.StreamTraces)
	router.POST("/ingest", handlers.Ingest)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.Host + ":" + cfg.Port,
			Handler: router,
		},
		logger: logger,
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("admin server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
