package cache

import (
	"fmt"
	"strings"
)

// Kind identifies the request kind a cache entry belongs to.
type Kind string

const (
	KindTopics  Kind = "topics"
	KindContent Kind = "content"
	KindQuiz    Kind = "quiz"
)

// Key is the composite cache key for a content request. Two semantically
// equal requests must produce the identical canonical string.
type Key struct {
	Kind       Kind
	SubjectID  string
	GradeID    string
	TopicID    string
	SubtopicID string
	// Variant is the quiz variant ("mid" or "final"); empty for other kinds.
	Variant string
	// Count is the requested item count; zero means the kind's default.
	Count int
}

// String returns the canonical key form. All seven segments are always
// present so that prefix matching stays positional.
func (k Key) String() string {
	return strings.Join([]string{
		norm(string(k.Kind)),
		norm(k.SubjectID),
		norm(k.GradeID),
		norm(k.TopicID),
		norm(k.SubtopicID),
		norm(k.Variant),
		fmt.Sprintf("%d", k.Count),
	}, "|")
}

// MatchesTopic reports whether the canonical key string references the
// given topic ID.
func MatchesTopic(key, topicID string) bool {
	parts := strings.Split(key, "|")
	if len(parts) != 7 {
		return false
	}
	return parts[3] == norm(topicID)
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
