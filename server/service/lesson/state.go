// Package lesson implements the lesson progression state machine: a
// fixed-order sequencer that walks a learner through the cards and quizzes
// of one subtopic. The machine holds cursors into bundles it was handed;
// it never owns or mutates content.
package lesson

import (
	"strings"
	"sync"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/plugin/ai"
)

// Phase is a state of the lesson sequence.
type Phase string

// Phases in fixed forward order. There are no cycles and no skipping;
// completion is terminal.
const (
	PhaseIntro          Phase = "intro"
	PhaseContent        Phase = "content"
	PhaseThankYou       Phase = "thankYou"
	PhaseMainQuiz       Phase = "mainQuiz"
	PhaseMainQuizReview Phase = "mainQuizReview"
	PhaseExamPractice   Phase = "examPractice"
	PhaseExamReview     Phase = "examReview"
	PhaseCompletion     Phase = "completion"
)

var phaseOrder = []Phase{
	PhaseIntro,
	PhaseContent,
	PhaseThankYou,
	PhaseMainQuiz,
	PhaseMainQuizReview,
	PhaseExamPractice,
	PhaseExamReview,
	PhaseCompletion,
}

// QuestionResult is the scored outcome for one answered question. Results
// are computed once when a quiz phase is left and retained for review.
type QuestionResult struct {
	Index    int    `json:"index"`
	Selected string `json:"selected"`
	Correct  bool   `json:"correct"`
}

// QuizOutcome holds the retained score for one quiz attempt.
type QuizOutcome struct {
	Results []QuestionResult `json:"results"`
	Score   int              `json:"score"`
	XP      int              `json:"xp"`
}

// XP multipliers. Rewards scale linearly with score and stay integral.
const (
	mainQuizXPFactor = 1
	examXPFactor     = 2
)

// Session is one learner's walk through one subtopic. Safe for concurrent
// use; every exported method takes the session lock.
type Session struct {
	mu sync.Mutex

	phase  Phase
	cursor int

	introCards    []ai.ContentCard
	contentCards  []ai.ContentCard
	thankYouCards []ai.ContentCard
	mainQuiz      []ai.QuizQuestion
	examQuiz      []ai.QuizQuestion

	answers map[int]string

	mainOutcome *QuizOutcome
	examOutcome *QuizOutcome
}

// NewSession builds a session from orchestrator output. Cards are routed
// to phases by card type; cards with an unknown type count as content.
func NewSession(cards []ai.ContentCard, mainQuiz, examQuiz []ai.QuizQuestion) *Session {
	s := &Session{
		phase:    PhaseIntro,
		mainQuiz: mainQuiz,
		examQuiz: examQuiz,
		answers:  make(map[int]string),
	}
	for _, card := range cards {
		switch card.CardType {
		case ai.CardTypeIntro:
			s.introCards = append(s.introCards, card)
		case ai.CardTypeThankYou:
			s.thankYouCards = append(s.thankYouCards, card)
		default:
			s.contentCards = append(s.contentCards, card)
		}
	}
	return s
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Cursor returns the position within the current phase's sequence.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Advance moves the cursor forward, or transitions to the next phase when
// the current sequence is exhausted. At completion it is a no-op.
func (s *Session) Advance() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseCompletion {
		return s.phase
	}
	if s.cursor+1 < s.seqLen(s.phase) {
		s.cursor++
		return s.phase
	}
	s.transition()
	return s.phase
}

// transition enters the next phase and runs its entry actions. Caller
// holds the lock.
func (s *Session) transition() {
	next := phaseOrder[s.phaseIndex()+1]

	// Leaving a quiz phase scores the attempt before the review renders.
	switch s.phase {
	case PhaseMainQuiz:
		s.mainOutcome = scoreQuiz(s.mainQuiz, s.answers, mainQuizXPFactor)
	case PhaseExamPractice:
		s.examOutcome = scoreQuiz(s.examQuiz, s.answers, examXPFactor)
	}

	s.phase = next
	s.cursor = 0

	// Entering a quiz phase starts a fresh attempt.
	if next == PhaseMainQuiz || next == PhaseExamPractice {
		s.answers = make(map[int]string)
	}
}

// SelectAnswer records the answer for a question index in the current quiz
// phase, overwriting any prior selection. Illegal outside quiz phases.
func (s *Session) SelectAnswer(index int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var quiz []ai.QuizQuestion
	switch s.phase {
	case PhaseMainQuiz:
		quiz = s.mainQuiz
	case PhaseExamPractice:
		quiz = s.examQuiz
	default:
		return errors.InvalidArgument("answers can only be selected during a quiz phase")
	}
	if index < 0 || index >= len(quiz) {
		return errors.InvalidArgument("question index out of range")
	}
	s.answers[index] = answer
	return nil
}

// NextTopic acknowledges the "advance to next topic" action. It is a
// navigation signal for the caller; the session itself only reports its
// final state. Illegal before completion.
func (s *Session) NextTopic() (View, error) {
	if s.Phase() != PhaseCompletion {
		return View{}, errors.InvalidArgument("lesson is not complete")
	}
	return s.Snapshot(), nil
}

// ReturnHome acknowledges the "return home" action at completion. Like
// NextTopic it only reports the final state.
func (s *Session) ReturnHome() (View, error) {
	if s.Phase() != PhaseCompletion {
		return View{}, errors.InvalidArgument("lesson is not complete")
	}
	return s.Snapshot(), nil
}

// Answers returns a copy of the current attempt's recorded answers.
func (s *Session) Answers() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// MainQuizOutcome returns the retained main quiz score, or nil before the
// main quiz has been left.
func (s *Session) MainQuizOutcome() *QuizOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mainOutcome
}

// ExamOutcome returns the retained exam practice score, or nil before the
// exam has been left.
func (s *Session) ExamOutcome() *QuizOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.examOutcome
}

// TotalXP sums the XP earned across both quiz attempts so far.
func (s *Session) TotalXP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	if s.mainOutcome != nil {
		total += s.mainOutcome.XP
	}
	if s.examOutcome != nil {
		total += s.examOutcome.XP
	}
	return total
}

func (s *Session) phaseIndex() int {
	for i, p := range phaseOrder {
		if p == s.phase {
			return i
		}
	}
	return 0
}

// seqLen returns the length of the sequence the phase cursors over.
// Review phases cursor over the same questions as their paired quiz.
func (s *Session) seqLen(phase Phase) int {
	switch phase {
	case PhaseIntro:
		return len(s.introCards)
	case PhaseContent:
		return len(s.contentCards)
	case PhaseThankYou:
		return len(s.thankYouCards)
	case PhaseMainQuiz, PhaseMainQuizReview:
		return len(s.mainQuiz)
	case PhaseExamPractice, PhaseExamReview:
		return len(s.examQuiz)
	}
	return 0
}

// scoreQuiz compares every recorded answer with its question's correct
// answer. Unanswered questions count as incorrect. The score is
// round(correct/total*100); XP scales linearly with score.
func scoreQuiz(quiz []ai.QuizQuestion, answers map[int]string, xpFactor int) *QuizOutcome {
	outcome := &QuizOutcome{}
	if len(quiz) == 0 {
		return outcome
	}

	correct := 0
	for i, q := range quiz {
		selected, answered := answers[i]
		ok := answered && answersMatch(selected, q.CorrectAnswer)
		if ok {
			correct++
		}
		outcome.Results = append(outcome.Results, QuestionResult{Index: i, Selected: selected, Correct: ok})
	}

	outcome.Score = int(float64(correct)/float64(len(quiz))*100 + 0.5)
	outcome.XP = outcome.Score * xpFactor
	return outcome
}

func answersMatch(selected, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(correct))
}
