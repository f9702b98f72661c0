package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePreloadTargets(t *testing.T) {
	targets := ParsePreloadTargets("mathematics:3, science:5")
	assert.Equal(t, []PreloadTarget{
		{SubjectID: "mathematics", GradeID: "3"},
		{SubjectID: "science", GradeID: "5"},
	}, targets)
}

func TestParsePreloadTargets_SkipsMalformedPairs(t *testing.T) {
	targets := ParsePreloadTargets("mathematics:3,nonsense,:5,english:")
	assert.Equal(t, []PreloadTarget{{SubjectID: "mathematics", GradeID: "3"}}, targets)
}

func TestParsePreloadTargets_Empty(t *testing.T) {
	assert.Empty(t, ParsePreloadTargets(""))
	assert.Empty(t, ParsePreloadTargets(" , "))
}
