package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/smartclass/smartclassd/internal/errors"
)

// Small models frequently wrap JSON in prose or emit partially broken
// arrays. Extraction is layered: whole-array slice first, then a scan for
// individual objects, then (for content only) recovery from plain text.

var jsonObjectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

// extractArray tries to decode the first JSON array found in the text.
func extractArray(text string) ([]json.RawMessage, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, false
	}
	return items, true
}

// extractObjects scans for standalone JSON objects and returns the ones
// that decode cleanly.
func extractObjects(text string) []json.RawMessage {
	var items []json.RawMessage
	for _, match := range jsonObjectPattern.FindAllString(text, -1) {
		var probe map[string]any
		if err := json.Unmarshal([]byte(match), &probe); err == nil {
			items = append(items, json.RawMessage(match))
		}
	}
	return items
}

func rawItems(text string) []json.RawMessage {
	if items, ok := extractArray(text); ok {
		return items
	}
	return extractObjects(text)
}

// parseContentCards decodes content cards from raw model output, filling
// defaults per card. When no JSON can be recovered the raw text itself
// becomes a single card; only blank output is a malformed response.
func parseContentCards(text string, req ContentRequest) ([]ContentCard, error) {
	var cards []ContentCard
	for _, item := range rawItems(text) {
		var card ContentCard
		if err := json.Unmarshal(item, &card); err != nil {
			continue
		}
		if card.Title == "" && card.Body == "" {
			continue
		}
		if card.Title == "" {
			card.Title = fmt.Sprintf("Content Card %d", len(cards)+1)
		}
		if card.Body == "" {
			card.Body = "<p>Content will be available soon.</p>"
		}
		if card.CardType == "" {
			card.CardType = CardTypeContent
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		cards = cardsFromPlainText(text, req)
	}
	if len(cards) == 0 {
		return nil, errors.MalformedResponse("no content cards in model output", nil)
	}
	return cards, nil
}

// cardsFromPlainText salvages a card from non-JSON model output.
func cardsFromPlainText(text string, req ContentRequest) []ContentCard {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	title := fmt.Sprintf("%s Content", titleCase(humanize(req.SubtopicID)))

	var lines []string
	for _, line := range strings.Split(trimmed, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) >= 2 {
		if candidate := strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(lines[0], `"`, ""), "Title:")); candidate != "" {
			title = candidate
		}
		lines = lines[1:]
	}
	body := "<p>" + strings.Join(lines, "</p><p>") + "</p>"
	return []ContentCard{{Title: title, Body: body, CardType: CardTypeContent}}
}

// parseQuizQuestions decodes quiz questions, normalizing each so the quiz
// invariants hold: multiple-choice always has at least two options and the
// correct answer is one of them.
func parseQuizQuestions(text string, req QuizRequest) ([]QuizQuestion, error) {
	var questions []QuizQuestion
	for _, item := range rawItems(text) {
		var q QuizQuestion
		if err := json.Unmarshal(item, &q); err != nil {
			continue
		}
		if q.Question == "" {
			continue
		}
		normalizeQuestion(&q)
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, errors.MalformedResponse("no quiz questions in model output", nil)
	}
	return questions, nil
}

func normalizeQuestion(q *QuizQuestion) {
	switch q.QuestionType {
	case QuestionMultipleChoice, QuestionFillBlank, QuestionTrueFalse:
	default:
		q.QuestionType = QuestionMultipleChoice
	}
	if q.Explanation == "" {
		q.Explanation = "This is the correct answer."
	}

	switch q.QuestionType {
	case QuestionTrueFalse:
		q.Options = []string{"True", "False"}
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			q.CorrectAnswer = "True"
		}
	case QuestionMultipleChoice:
		if len(q.Options) < 2 {
			q.Options = []string{"Option A", "Option B", "Option C", "Option D"}
		}
		if q.CorrectAnswer == "" {
			q.CorrectAnswer = q.Options[0]
		} else if !contains(q.Options, q.CorrectAnswer) {
			q.Options = append(q.Options, q.CorrectAnswer)
		}
	case QuestionFillBlank:
		q.Options = nil
		if q.CorrectAnswer == "" {
			q.CorrectAnswer = "answer"
		}
	}
}

// parseTopics decodes topic descriptors, assigning 1-based levels when the
// model omits them.
func parseTopics(text string, req TopicsRequest) ([]TopicDescriptor, error) {
	var topics []TopicDescriptor
	for _, item := range rawItems(text) {
		var topic TopicDescriptor
		if err := json.Unmarshal(item, &topic); err != nil {
			continue
		}
		if topic.Title == "" && topic.Description == "" {
			continue
		}
		i := len(topics)
		if topic.TopicID == "" {
			topic.TopicID = fmt.Sprintf("topic-%d", i+1)
		}
		if topic.Title == "" {
			topic.Title = fmt.Sprintf("Topic %d", i+1)
		}
		if topic.Description == "" {
			topic.Description = fmt.Sprintf("Learning content for %s", topic.Title)
		}
		if topic.Level <= 0 {
			topic.Level = i + 1
		}
		topics = append(topics, topic)
		if req.NumTopics > 0 && len(topics) >= req.NumTopics {
			break
		}
	}
	if len(topics) == 0 {
		return nil, errors.MalformedResponse("no topics in model output", nil)
	}
	return topics, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
