package ai

import (
	"fmt"
	"strings"
)

// maxGuidanceChars caps how much retrieved curriculum text is embedded in
// a prompt. Content prompts get more room than quiz prompts.
const (
	maxContentGuidanceChars = 1500
	maxQuizGuidanceChars    = 800
)

func buildTopicsPrompt(req TopicsRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d learning topics for %s Grade %s.\n", req.NumTopics, req.SubjectID, req.GradeID)
	writeGuidance(&b, req.Guidance, maxContentGuidanceChars, fmt.Sprintf("Based on this curriculum content, list the topics students should study in %s.", req.SubjectID))
	b.WriteString("\nReturn ONLY a valid JSON array:\n")
	b.WriteString(`[{"topic_id":"topic-slug","title":"Topic Title","description":"What students will learn","level":1}]`)
	b.WriteString("\n\nJSON:")
	return b.String()
}

func buildContentPrompt(req ContentRequest) string {
	subtopic := humanize(req.SubtopicID)
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d educational content cards for %s Grade %s.\n\n", req.NumCards, req.SubjectID, req.GradeID)
	fmt.Fprintf(&b, "Topic: %s\nSubtopic: %s\n", req.TopicID, req.SubtopicID)
	writeGuidance(&b, req.Guidance, maxContentGuidanceChars, fmt.Sprintf("Based on this curriculum content, create educational content for %s.", subtopic))
	fmt.Fprintf(&b, "\nCreate comprehensive educational content that teaches students about %s. Include clear explanations, examples, and engaging information.\n", subtopic)
	b.WriteString("\nReturn ONLY a valid JSON array:\n")
	fmt.Fprintf(&b, `[{"title":"Lesson Title","body":"<p>Detailed educational content about %s</p>","card_type":"content"}]`, subtopic)
	b.WriteString("\n\nJSON:")
	return b.String()
}

func buildQuizPrompt(req QuizRequest) string {
	var b strings.Builder
	if req.Variant == QuizMid {
		fmt.Fprintf(&b, "Create a mid-topic quiz for %s Grade %s.\n\n", req.SubjectID, req.GradeID)
	} else {
		fmt.Fprintf(&b, "Create a final quiz for %s Grade %s.\n\n", req.SubjectID, req.GradeID)
	}
	fmt.Fprintf(&b, "Topic: %s\nSubtopic: %s\n", req.TopicID, req.SubtopicID)
	writeGuidance(&b, req.Guidance, maxQuizGuidanceChars, fmt.Sprintf("Based on this curriculum content, create quiz questions for %s.", humanize(req.SubtopicID)))

	if req.Variant == QuizMid {
		fmt.Fprintf(&b, "\nGenerate 3 multiple-choice questions using simple language for Grade %s.\n", req.GradeID)
		b.WriteString("\nReturn ONLY valid JSON:\n")
		b.WriteString(`[{"question":"...","question_type":"multiple_choice","options":["A","B","C","D"],"correct_answer":"A","explanation":"This is correct"}]`)
	} else {
		b.WriteString("\nGenerate 3 questions: 2 multiple-choice, 1 true/false.\n")
		b.WriteString("\nReturn ONLY valid JSON:\n")
		b.WriteString(`[{"question":"...","question_type":"multiple_choice","options":["A","B","C","D"],"correct_answer":"A","explanation":"Correct"},` +
			`{"question":"True or False: ...","question_type":"true_false","options":["True","False"],"correct_answer":"True","explanation":"True because..."}]`)
	}
	b.WriteString("\n\nJSON:")
	return b.String()
}

// writeGuidance embeds retrieved curriculum passages, deduplicated and
// capped, followed by an instruction line.
func writeGuidance(b *strings.Builder, guidance []string, maxChars int, instruction string) {
	if len(guidance) == 0 {
		return
	}
	seen := make(map[string]bool, len(guidance))
	var parts []string
	for _, g := range guidance {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		parts = append(parts, g)
	}
	if len(parts) == 0 {
		return
	}
	joined := strings.Join(parts, "\n")
	if len(joined) > maxChars {
		joined = joined[:maxChars] + "..."
	}
	b.WriteString("\nCURRICULUM CONTENT FROM SYLLABUS:\n")
	b.WriteString(joined)
	b.WriteString("\n\n")
	b.WriteString(instruction)
	b.WriteString("\n")
}

// humanize turns a slug like "adding-fractions" into "adding fractions".
func humanize(slug string) string {
	return strings.ReplaceAll(strings.TrimSpace(slug), "-", " ")
}
