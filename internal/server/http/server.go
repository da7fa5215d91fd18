// Package http provides the HTTP front end of the dispatch engine.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vyrodovalexey/avembed/internal/bridge"
	"github.com/vyrodovalexey/avembed/internal/config"
	"github.com/vyrodovalexey/avembed/internal/observability"
	"github.com/vyrodovalexey/avembed/internal/router"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions
var ginModeOnce sync.Once

// Server accepts HTTP requests and dispatches them through the route
// table. Matched handlers run on the execution bridge when one is
// configured, otherwise inline on the serving goroutine.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	table      *router.Table
	exec       bridge.Executor
	logger     observability.Logger
	metrics    *observability.Metrics
	config     *config.ServerConfig
	mu         sync.RWMutex
	running    bool
}

// NewServer creates an HTTP server dispatching into the given route
// table. exec may be nil, in which case handlers run inline.
func NewServer(
	cfg *config.ServerConfig,
	table *router.Table,
	exec bridge.Executor,
	logger observability.Logger,
	metrics *observability.Metrics,
) *Server {
	if cfg == nil {
		defaults := config.DefaultConfig().Server
		cfg = &defaults
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	s := &Server{
		engine:  gin.New(),
		table:   table,
		exec:    exec,
		logger:  logger,
		metrics: metrics,
		config:  cfg,
	}

	s.engine.Use(s.recoveryMiddleware())
	s.engine.Use(s.requestIDMiddleware())
	if cfg.MaxBodyBytes > 0 {
		s.engine.Use(s.maxBodyBytesMiddleware())
	}

	s.setupRoutes()

	return s
}

// setupRoutes registers the health endpoints and routes every other
// request into the dispatcher. Application routes live in the route
// table, not the gin tree, so the dispatcher hangs off NoRoute.
func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/readyz", s.handleReady)

	s.engine.NoRoute(func(c *gin.Context) {
		s.dispatch(c)
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.table == nil || s.table.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"message": "no routes registered",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// requestIDMiddleware assigns each request an identifier, honoring one
// supplied by the client.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header("X-Request-ID", requestID)
		ctx := observability.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// recoveryMiddleware converts panics escaping the dispatch path into a
// 500 response instead of tearing down the connection.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic recovered",
					observability.String("path", c.Request.URL.Path),
					observability.String("method", c.Request.Method),
					observability.Any("panic", r),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal Server Error",
					"message": "The server encountered an unexpected condition",
				})
			}
		}()
		c.Next()
	}
}

// maxBodyBytesMiddleware enforces the request body size limit.
func (s *Server) maxBodyBytesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxBodyBytes)
		c.Next()
	}
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving and blocks until the listener stops. It returns
// nil after a graceful Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout.Duration(),
		WriteTimeout: s.config.WriteTimeout.Duration(),
		IdleTimeout:  s.config.IdleTimeout.Duration(),
	}

	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", addr),
		observability.Int("routes", s.table.Len()),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
