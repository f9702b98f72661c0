package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartclass/smartclassd/internal/errors"
)

func TestParseContentCards_CleanArray(t *testing.T) {
	text := `Here is your content:
[{"title":"Photosynthesis","body":"<p>Plants make food from light.</p>","card_type":"content"},
 {"title":"Chlorophyll","body":"<p>The green pigment.</p>","card_type":"content"}]`

	cards, err := parseContentCards(text, ContentRequest{SubtopicID: "photosynthesis"})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Photosynthesis", cards[0].Title)
	assert.Equal(t, CardTypeContent, cards[1].CardType)
}

func TestParseContentCards_EmbeddedObjects(t *testing.T) {
	text := `The model rambles first. {"title":"One","body":"<p>a</p>"} and then {"title":"Two","body":"<p>b</p>"} done.`

	cards, err := parseContentCards(text, ContentRequest{SubtopicID: "fractions"})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, CardTypeContent, cards[0].CardType, "missing card_type defaults")
}

func TestParseContentCards_PlainTextRecovery(t *testing.T) {
	text := "Title: Adding Fractions\nFractions with the same denominator add directly.\nAlways simplify the result."

	cards, err := parseContentCards(text, ContentRequest{SubtopicID: "adding-fractions"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Adding Fractions", cards[0].Title)
	assert.Contains(t, cards[0].Body, "<p>")
}

func TestParseContentCards_BlankOutput(t *testing.T) {
	_, err := parseContentCards("   \n  ", ContentRequest{SubtopicID: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedResponse))
}

func TestParseQuizQuestions_Normalization(t *testing.T) {
	text := `[
		{"question":"What is 2+2?","question_type":"multiple_choice","options":["3","4"],"correct_answer":"4","explanation":"Basic addition"},
		{"question":"Pick one","question_type":"multiple_choice"},
		{"question":"The sky is blue","question_type":"true_false","correct_answer":"maybe"},
		{"question":"2+2=__","question_type":"fill_blank","correct_answer":"4","options":["junk"]}
	]`

	questions, err := parseQuizQuestions(text, QuizRequest{Variant: QuizMid})
	require.NoError(t, err)
	require.Len(t, questions, 4)

	// Well-formed question passes through untouched.
	assert.Equal(t, []string{"3", "4"}, questions[0].Options)

	// Multiple choice without options gets defaults and a member answer.
	assert.GreaterOrEqual(t, len(questions[1].Options), 2)
	assert.Contains(t, questions[1].Options, questions[1].CorrectAnswer)

	// True/false always gets the canonical pair.
	assert.Equal(t, []string{"True", "False"}, questions[2].Options)
	assert.Equal(t, "True", questions[2].CorrectAnswer)

	// Fill-blank never carries options.
	assert.Nil(t, questions[3].Options)
}

func TestParseQuizQuestions_AnswerOutsideOptions(t *testing.T) {
	text := `[{"question":"Capital of France?","question_type":"multiple_choice","options":["London","Berlin"],"correct_answer":"Paris","explanation":"Geography"}]`

	questions, err := parseQuizQuestions(text, QuizRequest{Variant: QuizFinal})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0].Options, "Paris")
}

func TestParseTopics_LevelDefaulting(t *testing.T) {
	text := `[
		{"topic_id":"numbers","title":"Numbers","description":"Counting and operations","level":1},
		{"title":"Geometry","description":"Shapes"},
		{"topic_id":"measure","title":"Measurement","description":"Length and time","level":2}
	]`

	topics, err := parseTopics(text, TopicsRequest{NumTopics: 5})
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, "topic-2", topics[1].TopicID)
	assert.Equal(t, 2, topics[1].Level, "missing level defaults to 1-based position")
}

func TestParseTopics_RespectsRequestedCount(t *testing.T) {
	text := `[{"title":"A","description":"a"},{"title":"B","description":"b"},{"title":"C","description":"c"}]`

	topics, err := parseTopics(text, TopicsRequest{NumTopics: 2})
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestParseTopics_GarbageOutput(t *testing.T) {
	_, err := parseTopics("no json here at all", TopicsRequest{NumTopics: 3})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedResponse))
}
