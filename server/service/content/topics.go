package content

import (
	"sort"

	"github.com/smartclass/smartclassd/plugin/ai"
)

// buildTopicList groups topics by level, ascending, preserving encounter
// order within each level. The recommended topic is the first topic of the
// lowest level: the natural entry point for a learner with no history.
func buildTopicList(topics []ai.TopicDescriptor, source Source) *TopicList {
	list := &TopicList{Topics: topics, Source: source}
	if len(topics) == 0 {
		return list
	}

	byLevel := make(map[int][]ai.TopicDescriptor)
	var levels []int
	for _, topic := range topics {
		level := topic.Level
		if level < 1 {
			level = 1
		}
		if _, ok := byLevel[level]; !ok {
			levels = append(levels, level)
		}
		byLevel[level] = append(byLevel[level], topic)
	}
	sort.Ints(levels)

	for _, level := range levels {
		list.Groups = append(list.Groups, TopicGroup{Level: level, Topics: byLevel[level]})
	}

	recommended := list.Groups[0].Topics[0]
	list.Recommended = &recommended
	return list
}
