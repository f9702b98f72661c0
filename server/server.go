// Package server assembles the HTTP surface of the content service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/smartclass/smartclassd/internal/profile"
	smw "github.com/smartclass/smartclassd/server/middleware"
	apiv1 "github.com/smartclass/smartclassd/server/router/api/v1"
	"github.com/smartclass/smartclassd/server/service/content"
)

// Server owns the echo instance and its lifecycle.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	logger     *slog.Logger
}

// NewServer creates the HTTP server and mounts the v1 API.
func NewServer(prof *profile.Profile, contentService *content.Service, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(smw.NewRateLimiter(prof.RateLimitEvery, prof.RateLimitBurst).Middleware())

	apiService := apiv1.NewAPIV1Service(prof, contentService, logger)
	apiService.Register(e)

	return &Server{
		Profile:    prof,
		echoServer: e,
		logger:     logger,
	}
}

// Start runs the listener until it fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server listening", slog.String("address", address))

	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start echo server")
	}
	<-ctx.Done()
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shut down server gracefully", slog.String("error", err.Error()))
	}
	s.logger.Info("server stopped")
}
