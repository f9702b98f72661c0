package content

import (
	"fmt"
	"strings"

	"github.com/smartclass/smartclassd/plugin/ai"
)

// Static fallback content: deterministic, subject-aware and pedagogically
// generic. This tier is pure and local; it must produce a non-empty bundle
// for every request, so an unknown subject falls back to a generic
// template rather than failing.

var fallbackTopics = map[string][]ai.TopicDescriptor{
	"mathematics": {
		{TopicID: "numbers", Title: "Numbers and Operations", Description: "Learn counting, addition, subtraction and number relationships", Level: 1},
		{TopicID: "geometry", Title: "Shapes and Space", Description: "Explore shapes, patterns and spatial relationships", Level: 2},
		{TopicID: "measurement", Title: "Measurement", Description: "Understand length, time, weight and capacity", Level: 3},
	},
	"english": {
		{TopicID: "reading", Title: "Reading Skills", Description: "Build phonics, fluency and comprehension abilities", Level: 1},
		{TopicID: "writing", Title: "Writing Skills", Description: "Express ideas clearly through written communication", Level: 2},
		{TopicID: "speaking", Title: "Speaking and Listening", Description: "Develop oral communication and listening skills", Level: 3},
	},
	"science": {
		{TopicID: "living-things", Title: "Living Things", Description: "Study plants, animals and their environments", Level: 1},
		{TopicID: "materials", Title: "Materials and Matter", Description: "Explore properties and changes in materials", Level: 2},
		{TopicID: "forces", Title: "Forces and Motion", Description: "Understand how things move and forces around us", Level: 3},
	},
}

func fallbackTopicList(req ai.TopicsRequest) []ai.TopicDescriptor {
	topics, ok := fallbackTopics[strings.ToLower(req.SubjectID)]
	if !ok {
		subject := titleCase(humanize(req.SubjectID))
		topics = []ai.TopicDescriptor{
			{TopicID: "topic-1", Title: subject + " Basics", Description: fmt.Sprintf("Fundamental concepts in %s", humanize(req.SubjectID)), Level: 1},
			{TopicID: "topic-2", Title: subject + " Skills", Description: fmt.Sprintf("Building skills in %s", humanize(req.SubjectID)), Level: 2},
		}
	}
	if req.NumTopics > 0 && len(topics) > req.NumTopics {
		topics = topics[:req.NumTopics]
	}
	return topics
}

func fallbackContentCards(req ai.ContentRequest) []ai.ContentCard {
	subtopic := humanize(req.SubtopicID)
	title := titleCase(subtopic)
	return []ai.ContentCard{
		{
			Title:    "Welcome to " + title,
			Body:     fmt.Sprintf("<p>In this lesson you will learn about %s. Take your time with each card and think about how it connects to what you already know.</p>", subtopic),
			CardType: ai.CardTypeIntro,
		},
		{
			Title:    title,
			Body:     fmt.Sprintf("<p>%s is an important part of %s for Grade %s. Read carefully, look for examples around you, and ask questions about anything that seems new.</p>", title, humanize(req.SubjectID), req.GradeID),
			CardType: ai.CardTypeContent,
		},
		{
			Title:    "Practice What You Learned",
			Body:     fmt.Sprintf("<p>Try explaining %s in your own words. Teaching an idea to someone else is one of the best ways to understand it.</p>", subtopic),
			CardType: ai.CardTypeContent,
		},
	}
}

func fallbackQuizQuestions(req ai.QuizRequest) []ai.QuizQuestion {
	subtopic := humanize(req.SubtopicID)
	if req.Variant == ai.QuizMid {
		return []ai.QuizQuestion{
			{
				Question:      fmt.Sprintf("What is the main concept in %s?", subtopic),
				QuestionType:  ai.QuestionMultipleChoice,
				Options:       []string{"Basic understanding", "Advanced concepts", "Practical skills", "All of the above"},
				CorrectAnswer: "All of the above",
				Explanation:   fmt.Sprintf("This subtopic covers multiple important aspects of %s.", subtopic),
			},
		}
	}
	return []ai.QuizQuestion{
		{
			Question:      fmt.Sprintf("What did you learn about %s?", subtopic),
			QuestionType:  ai.QuestionMultipleChoice,
			Options:       []string{"Key concepts", "Important skills", "Practical applications", "All of the above"},
			CorrectAnswer: "All of the above",
			Explanation:   fmt.Sprintf("This topic covers comprehensive learning about %s.", subtopic),
		},
		{
			Question:      fmt.Sprintf("True or False: %s is important for Grade %s students.", subtopic, req.GradeID),
			QuestionType:  ai.QuestionTrueFalse,
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
			Explanation:   fmt.Sprintf("%s is indeed important for students at this grade level.", subtopic),
		},
	}
}

func humanize(slug string) string {
	return strings.ReplaceAll(strings.TrimSpace(slug), "-", " ")
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
