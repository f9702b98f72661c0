package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Healthz handles GET /healthz: process liveness only, no upstream probes.
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SystemStatus handles GET /api/v1/status: the combined upstream health
// view plus cache counters.
func (s *APIV1Service) SystemStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Content.Status(c.Request().Context()))
}
