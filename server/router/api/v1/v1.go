// Package v1 exposes the content pipeline over a JSON HTTP API.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/internal/profile"
	"github.com/smartclass/smartclassd/server/service/content"
	"github.com/smartclass/smartclassd/server/service/lesson"
)

// APIV1Service wires the orchestrator and lesson sessions to HTTP routes.
type APIV1Service struct {
	Profile *profile.Profile
	Content *content.Service
	Lessons *lesson.Manager
	Logger  *slog.Logger
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(profile *profile.Profile, contentService *content.Service, logger *slog.Logger) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		Content: contentService,
		Lessons: lesson.NewManager(),
		Logger:  logger,
	}
}

// Register mounts all v1 routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/healthz", s.Healthz)

	g := e.Group("/api/v1")
	g.POST("/topics", s.GenerateTopics)
	g.POST("/content", s.GenerateContent)
	g.POST("/quiz", s.GenerateQuiz)
	g.GET("/status", s.SystemStatus)
	g.DELETE("/cache", s.ClearCache)
	g.DELETE("/cache/topics/:topicId", s.InvalidateTopic)

	g.POST("/lessons", s.StartLesson)
	g.GET("/lessons/:id", s.GetLesson)
	g.POST("/lessons/:id/advance", s.AdvanceLesson)
	g.POST("/lessons/:id/answer", s.AnswerQuestion)
	g.DELETE("/lessons/:id", s.EndLesson)
}

// errorJSON maps the typed error taxonomy to HTTP status codes. Upstream
// failure codes never reach here for content routes: the orchestrator
// demotes them to a lower tier instead.
func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch errors.GetCodeFromError(err, "") {
	case errors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case errors.ErrCodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
