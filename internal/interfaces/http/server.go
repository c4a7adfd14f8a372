// Package http provides the HTTP adapter for the application layer. It is a
// thin translation layer: requests become service calls, service errors
// become status codes, and the actor identity arrives as trusted headers from
// the identity provider in front of this service.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crestline/roofops-commissions/internal/application/service"
	"github.com/crestline/roofops-commissions/internal/statement"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	commissionService service.CommissionService,
	approvalService service.ApprovalService,
	drawService service.DrawService,
	overrideService service.OverrideService,
	statementService *statement.Service,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config: config,
		router: gin.New(),
		handlers: NewHandlers(commissionService, approvalService, drawService,
			overrideService, statementService, logger),
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/commissions", s.handlers.CreateCommission)
		api.GET("/commissions", s.handlers.ListCommissions)
		api.GET("/commissions/:id", s.handlers.GetCommission)
		api.GET("/commissions/:id/history", s.handlers.GetHistory)
		api.POST("/commissions/:id/approve", s.handlers.ManagerApprove)
		api.POST("/commissions/:id/finalize", s.handlers.FinalApprove)
		api.POST("/commissions/:id/pay", s.handlers.MarkPaid)
		api.POST("/commissions/:id/revise", s.handlers.RequestRevision)
		api.POST("/commissions/:id/deny", s.handlers.Deny)
		api.POST("/commissions/:id/resubmit", s.handlers.Resubmit)
		api.POST("/commissions/:id/statement", s.handlers.GenerateStatement)

		api.POST("/draws", s.handlers.RequestDraw)
		api.GET("/draws/:id", s.handlers.GetDraw)
		api.POST("/draws/:id/approve", s.handlers.ApproveDraw)
		api.POST("/draws/:id/deny", s.handlers.DenyDraw)

		api.GET("/reps/:rep_id/draws", s.handlers.ListDraws)
		api.GET("/reps/:rep_id/draw-balance", s.handlers.DrawBalance)
		api.POST("/reps/:rep_id/paybacks", s.handlers.RecordPayback)
		api.GET("/reps/:rep_id/override-phase", s.handlers.OverridePhase)
		api.GET("/reps/:rep_id/override-credits", s.handlers.OverrideCredits)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
