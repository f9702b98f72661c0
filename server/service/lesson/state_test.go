package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/plugin/ai"
)

func lessonCards() []ai.ContentCard {
	return []ai.ContentCard{
		{Title: "Welcome", CardType: ai.CardTypeIntro},
		{Title: "Lesson 1", CardType: ai.CardTypeContent},
		{Title: "Lesson 2", CardType: ai.CardTypeContent},
		{Title: "Well Done", CardType: ai.CardTypeThankYou},
	}
}

func mcQuestion(prompt, correct string) ai.QuizQuestion {
	return ai.QuizQuestion{
		Question:      prompt,
		QuestionType:  ai.QuestionMultipleChoice,
		Options:       []string{correct, "Wrong"},
		CorrectAnswer: correct,
	}
}

func fourQuestionQuiz() []ai.QuizQuestion {
	return []ai.QuizQuestion{
		mcQuestion("Q1?", "A1"),
		mcQuestion("Q2?", "A2"),
		mcQuestion("Q3?", "A3"),
		mcQuestion("Q4?", "A4"),
	}
}

func TestSession_IntroAdvancesToContent(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	require.Equal(t, PhaseIntro, s.Phase())

	phase := s.Advance()
	assert.Equal(t, PhaseContent, phase)
	assert.Equal(t, 0, s.Cursor())
}

func TestSession_CursorMovesWithinPhase(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	s.Advance() // intro -> content

	phase := s.Advance()
	assert.Equal(t, PhaseContent, phase)
	assert.Equal(t, 1, s.Cursor())

	phase = s.Advance()
	assert.Equal(t, PhaseThankYou, phase)
	assert.Equal(t, 0, s.Cursor())
}

func TestSession_FullWalkReachesCompletion(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())

	// 1 intro + 2 content + 1 thankYou + 4 mainQuiz + 4 review +
	// 4 examPractice + 4 examReview cards/questions: 20 advances total.
	for i := 0; i < 20; i++ {
		s.Advance()
	}
	assert.Equal(t, PhaseCompletion, s.Phase())

	// Completion is terminal.
	assert.Equal(t, PhaseCompletion, s.Advance())
	assert.Equal(t, 0, s.Cursor())
}

func advanceTo(t *testing.T, s *Session, target Phase) {
	t.Helper()
	for i := 0; i < 64; i++ {
		if s.Phase() == target {
			return
		}
		s.Advance()
	}
	t.Fatalf("never reached phase %s", target)
}

func TestSession_ScoringOnQuizExit(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)

	require.NoError(t, s.SelectAnswer(0, "A1"))
	require.NoError(t, s.SelectAnswer(1, "A2"))
	require.NoError(t, s.SelectAnswer(2, "A3"))
	require.NoError(t, s.SelectAnswer(3, "Wrong"))

	advanceTo(t, s, PhaseMainQuizReview)
	outcome := s.MainQuizOutcome()
	require.NotNil(t, outcome)
	assert.Equal(t, 75, outcome.Score)
	assert.Equal(t, 75, outcome.XP)
	require.Len(t, outcome.Results, 4)
	assert.True(t, outcome.Results[0].Correct)
	assert.False(t, outcome.Results[3].Correct)
}

func TestSession_AnswerOverwrite(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)

	require.NoError(t, s.SelectAnswer(0, "Wrong"))
	require.NoError(t, s.SelectAnswer(0, "A1"))

	advanceTo(t, s, PhaseMainQuizReview)
	outcome := s.MainQuizOutcome()
	require.NotNil(t, outcome)
	assert.True(t, outcome.Results[0].Correct, "later selection is what gets scored")
}

func TestSession_AnswerIllegalOutsideQuiz(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())

	err := s.SelectAnswer(0, "A1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	advanceTo(t, s, PhaseMainQuizReview)
	err = s.SelectAnswer(0, "A1")
	require.Error(t, err, "review selections are read-only")
}

func TestSession_AnswerIndexOutOfRange(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)

	require.Error(t, s.SelectAnswer(4, "A1"))
	require.Error(t, s.SelectAnswer(-1, "A1"))
}

func TestSession_EnteringExamClearsAnswers(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)
	require.NoError(t, s.SelectAnswer(0, "A1"))

	advanceTo(t, s, PhaseExamPractice)
	assert.Empty(t, s.Answers(), "exam attempt starts fresh")
}

func TestSession_ResultsRetainedNotRecomputed(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)
	require.NoError(t, s.SelectAnswer(0, "A1"))

	advanceTo(t, s, PhaseMainQuizReview)
	first := s.MainQuizOutcome()

	advanceTo(t, s, PhaseExamPractice)
	require.NoError(t, s.SelectAnswer(0, "A1"))
	advanceTo(t, s, PhaseCompletion)

	assert.Same(t, first, s.MainQuizOutcome(), "main quiz outcome survives later phases")
}

func TestSession_XPScalesWithScore(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)
	for i, a := range []string{"A1", "A2", "A3", "A4"} {
		require.NoError(t, s.SelectAnswer(i, a))
	}
	advanceTo(t, s, PhaseExamPractice)
	require.NoError(t, s.SelectAnswer(0, "A1"))
	require.NoError(t, s.SelectAnswer(1, "A2"))
	advanceTo(t, s, PhaseCompletion)

	main := s.MainQuizOutcome()
	exam := s.ExamOutcome()
	require.NotNil(t, main)
	require.NotNil(t, exam)
	assert.Equal(t, 100, main.Score)
	assert.Equal(t, 100, main.XP)
	assert.Equal(t, 50, exam.Score)
	assert.Equal(t, 100, exam.XP, "exam XP uses a higher factor")
	assert.Equal(t, 200, s.TotalXP())
}

func TestSession_CaseInsensitiveAnswerMatch(t *testing.T) {
	s := NewSession(lessonCards(), []ai.QuizQuestion{mcQuestion("Q?", "True")}, fourQuestionQuiz())
	advanceTo(t, s, PhaseMainQuiz)
	require.NoError(t, s.SelectAnswer(0, " true "))

	advanceTo(t, s, PhaseMainQuizReview)
	assert.Equal(t, 100, s.MainQuizOutcome().Score)
}

func TestSession_Snapshot(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())

	view := s.Snapshot()
	assert.Equal(t, PhaseIntro, view.Phase)
	require.NotNil(t, view.Card)
	assert.Equal(t, "Welcome", view.Card.Title)
	assert.Nil(t, view.Question)

	advanceTo(t, s, PhaseMainQuiz)
	view = s.Snapshot()
	require.NotNil(t, view.Question)
	assert.Nil(t, view.Card)
	assert.Equal(t, 4, view.Total)
}

func TestSession_CompletionNavigation(t *testing.T) {
	s := NewSession(lessonCards(), fourQuestionQuiz(), fourQuestionQuiz())

	_, err := s.NextTopic()
	require.Error(t, err)

	advanceTo(t, s, PhaseCompletion)
	view, err := s.NextTopic()
	require.NoError(t, err)
	assert.Equal(t, PhaseCompletion, view.Phase)

	_, err = s.ReturnHome()
	require.NoError(t, err)
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager()
	id, session := m.Create(lessonCards(), fourQuestionQuiz(), nil)
	require.NotEmpty(t, id)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1, m.Count())

	_, err = m.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	m.Delete(id)
	assert.Equal(t, 0, m.Count())
	m.Delete(id)
}
