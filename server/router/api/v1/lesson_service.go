package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/plugin/ai"
	"github.com/smartclass/smartclassd/server/service/lesson"
)

// StartLessonRequest is the body for POST /api/v1/lessons.
type StartLessonRequest struct {
	SubjectID  string `json:"subject_id"`
	GradeID    string `json:"grade_id"`
	TopicID    string `json:"topic_id"`
	SubtopicID string `json:"subtopic_id"`
}

// StartLessonResponse carries the new session ID and its initial view.
type StartLessonResponse struct {
	SessionID string      `json:"session_id"`
	View      lesson.View `json:"view"`
}

// AnswerRequest is the body for POST /api/v1/lessons/:id/answer.
type AnswerRequest struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// StartLesson assembles the content and both quiz bundles for a subtopic
// and opens a session over them. Degraded bundles start a lesson like any
// other; a learner never sees a blocking error here.
func (s *APIV1Service) StartLesson(c echo.Context) error {
	var req StartLessonRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}
	ctx := c.Request().Context()

	bundle, err := s.Content.Content(ctx, ai.ContentRequest{
		SubjectID:  req.SubjectID,
		GradeID:    req.GradeID,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	quizReq := ai.QuizRequest{
		SubjectID:  req.SubjectID,
		GradeID:    req.GradeID,
		TopicID:    req.TopicID,
		SubtopicID: req.SubtopicID,
		Variant:    ai.QuizMid,
	}
	mainQuiz, err := s.Content.Quiz(ctx, quizReq)
	if err != nil {
		return errorJSON(c, err)
	}
	quizReq.Variant = ai.QuizFinal
	examQuiz, err := s.Content.Quiz(ctx, quizReq)
	if err != nil {
		return errorJSON(c, err)
	}

	id, session := s.Lessons.Create(bundle.Cards, mainQuiz.Questions, examQuiz.Questions)
	s.Content.Metrics().RecordLessonStarted()
	return c.JSON(http.StatusOK, StartLessonResponse{SessionID: id, View: session.Snapshot()})
}

// GetLesson handles GET /api/v1/lessons/:id.
func (s *APIV1Service) GetLesson(c echo.Context) error {
	session, err := s.Lessons.Get(c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, session.Snapshot())
}

// AdvanceLesson handles POST /api/v1/lessons/:id/advance.
func (s *APIV1Service) AdvanceLesson(c echo.Context) error {
	session, err := s.Lessons.Get(c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	before := session.Phase()
	phase := session.Advance()
	if phase == lesson.PhaseCompletion && before != lesson.PhaseCompletion {
		s.Content.Metrics().RecordLessonCompleted()
	}
	return c.JSON(http.StatusOK, session.Snapshot())
}

// AnswerQuestion handles POST /api/v1/lessons/:id/answer.
func (s *APIV1Service) AnswerQuestion(c echo.Context) error {
	session, err := s.Lessons.Get(c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}
	if err := session.SelectAnswer(req.Index, req.Answer); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, session.Snapshot())
}

// EndLesson handles DELETE /api/v1/lessons/:id.
func (s *APIV1Service) EndLesson(c echo.Context) error {
	s.Lessons.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
