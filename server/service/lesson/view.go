package lesson

import "github.com/smartclass/smartclassd/plugin/ai"

// View is a render-ready snapshot of a session: the current phase, the
// item under the cursor, and any retained quiz outcome. Selections in
// review phases are exposed read-only through the outcome.
type View struct {
	Phase    Phase            `json:"phase"`
	Cursor   int              `json:"cursor"`
	Total    int              `json:"total"`
	Card     *ai.ContentCard  `json:"card,omitempty"`
	Question *ai.QuizQuestion `json:"question,omitempty"`
	Outcome  *QuizOutcome     `json:"outcome,omitempty"`
	TotalXP  int              `json:"total_xp"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		Phase:  s.phase,
		Cursor: s.cursor,
		Total:  s.seqLen(s.phase),
	}
	if s.mainOutcome != nil {
		view.TotalXP += s.mainOutcome.XP
	}
	if s.examOutcome != nil {
		view.TotalXP += s.examOutcome.XP
	}

	switch s.phase {
	case PhaseIntro:
		view.Card = cardAt(s.introCards, s.cursor)
	case PhaseContent:
		view.Card = cardAt(s.contentCards, s.cursor)
	case PhaseThankYou:
		view.Card = cardAt(s.thankYouCards, s.cursor)
	case PhaseMainQuiz:
		view.Question = questionAt(s.mainQuiz, s.cursor)
	case PhaseMainQuizReview:
		view.Question = questionAt(s.mainQuiz, s.cursor)
		view.Outcome = s.mainOutcome
	case PhaseExamPractice:
		view.Question = questionAt(s.examQuiz, s.cursor)
	case PhaseExamReview:
		view.Question = questionAt(s.examQuiz, s.cursor)
		view.Outcome = s.examOutcome
	case PhaseCompletion:
		view.Outcome = s.examOutcome
	}
	return view
}

func cardAt(cards []ai.ContentCard, i int) *ai.ContentCard {
	if i < 0 || i >= len(cards) {
		return nil
	}
	card := cards[i]
	return &card
}

func questionAt(questions []ai.QuizQuestion, i int) *ai.QuizQuestion {
	if i < 0 || i >= len(questions) {
		return nil
	}
	question := questions[i]
	return &question
}
