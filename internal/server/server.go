// Package server exposes the catalog over HTTP with echo.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/goliatone/go-inventory-cache/catalogcache"
)

// HeaderCorrelationID carries the request id. A value sent by the client is
// kept, otherwise one is generated. Either way it is echoed on the response.
const HeaderCorrelationID = "X-Correlation-ID"

// Server owns the echo instance and the routes.
type Server struct {
	echo   *echo.Echo
	api    *APIService
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a server serving queries and commands.
func New(queries *catalogcache.Queries, commands *catalogcache.Commands, opts ...Option) *Server {
	s := &Server{
		echo:   echo.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: HeaderCorrelationID,
	}))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("correlation_id", c.Response().Header().Get(HeaderCorrelationID)),
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, slog.Any("error", v.Error))...)
				return nil
			}
			s.logger.Debug("request", attrs...)
			return nil
		},
	}))

	s.api = NewAPIService(queries, commands, s.logger)
	s.api.Register(s.echo)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", slog.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
