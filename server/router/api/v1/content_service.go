package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/plugin/ai"
)

// GenerateTopicsRequest is the body for POST /api/v1/topics.
type GenerateTopicsRequest struct {
	SubjectID string `json:"subject_id"`
	GradeID   string `json:"grade_id"`
	NumTopics int    `json:"num_topics"`
}

// GenerateContentRequest is the body for POST /api/v1/content.
type GenerateContentRequest struct {
	SubjectID  string `json:"subject_id"`
	GradeID    string `json:"grade_id"`
	TopicID    string `json:"topic_id"`
	SubtopicID string `json:"subtopic_id"`
	NumCards   int    `json:"num_cards"`
}

// GenerateQuizRequest is the body for POST /api/v1/quiz.
type GenerateQuizRequest struct {
	SubjectID  string `json:"subject_id"`
	GradeID    string `json:"grade_id"`
	TopicID    string `json:"topic_id"`
	SubtopicID string `json:"subtopic_id"`
	Variant    string `json:"variant"`
}

// GenerateTopics handles POST /api/v1/topics.
func (s *APIV1Service) GenerateTopics(c echo.Context) error {
	var req GenerateTopicsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}
	list, err := s.Content.Topics(c.Request().Context(), ai.TopicsRequest{
		SubjectID: req.SubjectID,
		GradeID:   req.GradeID,
		NumTopics: req.NumTopics,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GenerateContent handles POST /api/v1/content.
func (s *APIV1Service) GenerateContent(c echo.Context) error {
	var req GenerateContentRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}
	bundle, err := s.Content.Content(c.Request().Context(), ai.ContentRequest{
		SubjectID:  req.SubjectID,
		GradeID:    req.GradeID,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
		NumCards:   req.NumCards,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, bundle)
}

// GenerateQuiz handles POST /api/v1/quiz.
func (s *APIV1Service) GenerateQuiz(c echo.Context) error {
	var req GenerateQuizRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}
	bundle, err := s.Content.Quiz(c.Request().Context(), ai.QuizRequest{
		SubjectID:  req.SubjectID,
		GradeID:    req.GradeID,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
		Variant:    ai.QuizVariant(req.Variant),
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, bundle)
}

// InvalidateTopic handles DELETE /api/v1/cache/topics/:topicId.
func (s *APIV1Service) InvalidateTopic(c echo.Context) error {
	topicID := c.Param("topicId")
	if topicID == "" {
		return errorJSON(c, errors.InvalidArgument("topic id is required"))
	}
	removed := s.Content.InvalidateTopic(c.Request().Context(), topicID)
	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}

// ClearCache handles DELETE /api/v1/cache.
func (s *APIV1Service) ClearCache(c echo.Context) error {
	s.Content.ClearCache(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
