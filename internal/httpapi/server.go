// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"

	"github.com/linkloom/linkloom/internal/auth"
	"github.com/linkloom/linkloom/internal/links"
	"github.com/linkloom/linkloom/internal/observability"
)

// ServerConfig carries the dependencies for the API server.
type ServerConfig struct {
	Addr        string
	TokenType   string
	CORSOrigins []string // empty disables CORS
	Auth        *auth.Service
	Links       *links.Service
	Metrics     *observability.Metrics // optional
	Logger      *slog.Logger           // defaults to slog.Default()
}

// Server serves the link-registry HTTP API.
type Server struct {
	addr       string
	tokenType  string
	auth       *auth.Service
	links      *links.Service
	metrics    *observability.Metrics
	logger     *slog.Logger
	echo       *echo.Echo
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the API server and registers its routes.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		return nil, oops.Code("API_CONFIG_INVALID").Errorf("listen address is required")
	}
	if cfg.Auth == nil {
		return nil, oops.Code("API_CONFIG_INVALID").Errorf("auth service is required")
	}
	if cfg.Links == nil {
		return nil, oops.Code("API_CONFIG_INVALID").Errorf("links service is required")
	}
	if cfg.TokenType == "" {
		cfg.TokenType = auth.DefaultTokenType
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		addr:      cfg.Addr,
		tokenType: cfg.TokenType,
		auth:      cfg.Auth,
		links:     cfg.Links,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	}

	s.echo = e
	s.routes()

	return s, nil
}

// routes registers the API endpoints.
func (s *Server) routes() {
	api := s.echo.Group("/api")

	user := api.Group("/user")
	user.POST("/token", s.handleToken)
	user.POST("", s.handleCreateUser, s.requireUser, s.requireAdmin)
	user.POST("/", s.handleCreateUser, s.requireUser, s.requireAdmin)
	user.GET("/me", s.handleMe, s.requireUser)
	user.PUT("/update-password", s.handleUpdatePassword, s.requireUser)

	linksGroup := api.Group("/links", s.requireUser)
	linksGroup.GET("", s.handleListLinks)
	linksGroup.GET("/", s.handleListLinks)
	linksGroup.GET("/exists", s.handleLinkExists)
	linksGroup.GET("/:id", s.handleGetLink)
	linksGroup.POST("", s.handleCreateLink)
	linksGroup.POST("/", s.handleCreateLink)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// requestLogger logs each request and records the request metric.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.InfoContext(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			if s.metrics != nil {
				s.metrics.RecordRequest(v.Method, v.Status)
			}
			return nil
		},
	})
}

// Start begins serving the API. It returns an error channel that will
// receive any error from the HTTP server after it starts; the channel
// is closed when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
