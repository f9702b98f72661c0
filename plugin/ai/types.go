// Package ai implements the generation gateway: a typed request/response
// boundary to the external model service. Failures are converted into the
// typed taxonomy and never propagate untyped past this package. The gateway
// does not retry; retry and fallback policy belong to the orchestrator.
package ai

// CardType identifies the presentation role of a content card.
const (
	CardTypeIntro    = "intro"
	CardTypeContent  = "content"
	CardTypeThankYou = "thank_you"
)

// ContentCard is a single lesson card. Ordering within a bundle is
// presentation order; the first card is the introduction.
type ContentCard struct {
	Title      string      `json:"title"`
	Body       string      `json:"body"`
	CardType   string      `json:"card_type"`
	ImageURL   string      `json:"image_url,omitempty"`
	Validation *Validation `json:"validation,omitempty"`
}

// Validation is the curriculum-alignment verdict attached to a card by the
// retrieval gateway. Absence of validation is valid.
type Validation struct {
	IsValid             bool     `json:"is_valid"`
	Confidence          float64  `json:"confidence"`
	CurriculumAlignment float64  `json:"curriculum_alignment"`
	Suggestions         []string `json:"suggestions,omitempty"`
}

// QuestionType is the closed set of quiz question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionTrueFalse      QuestionType = "true_false"
)

// QuizQuestion is a single quiz question. Multiple-choice questions carry
// at least two options and the correct answer is always one of them.
type QuizQuestion struct {
	Question      string       `json:"question"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
}

// QuizVariant distinguishes the mid-topic quiz from the final exam quiz.
type QuizVariant string

const (
	QuizMid   QuizVariant = "mid"
	QuizFinal QuizVariant = "final"
)

// TopicDescriptor describes one topic offered for a subject and grade.
// Level is a positive integer used only for grouping and sorting.
type TopicDescriptor struct {
	TopicID     string `json:"topic_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       int    `json:"level"`
}

// HealthStatus is the generation service health probe result.
type HealthStatus struct {
	Available bool   `json:"available"`
	Ready     bool   `json:"ready"`
	Message   string `json:"message,omitempty"`
}

// Default item counts applied when a request leaves the count unset.
// Callers that cache on the request must normalize with these before
// building the key, so an omitted count and an explicit default count
// address the same entry.
const (
	DefaultTopicCount = 5
	DefaultCardCount  = 5
)

// TopicsRequest asks for a topic list for one subject and grade.
type TopicsRequest struct {
	SubjectID string
	GradeID   string
	NumTopics int
	// Guidance holds retrieved curriculum passages prepended to the prompt.
	Guidance []string
}

// ContentRequest asks for lesson content cards for one subtopic.
type ContentRequest struct {
	TopicID    string
	SubtopicID string
	SubjectID  string
	GradeID    string
	NumCards   int
	Guidance   []string
}

// QuizRequest asks for a quiz question set for one subtopic.
type QuizRequest struct {
	TopicID    string
	SubtopicID string
	SubjectID  string
	GradeID    string
	Variant    QuizVariant
	Guidance   []string
}
