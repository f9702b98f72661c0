package content

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/smartclass/smartclassd/plugin/ai"
)

// preloadConcurrency bounds parallel generation during warm-up so the
// model service is not saturated by the preloader itself.
const preloadConcurrency = 2

// PreloadTarget names one subject/grade pair to warm.
type PreloadTarget struct {
	SubjectID string
	GradeID   string
}

// ParsePreloadTargets parses a comma-separated list of subject:grade
// pairs, e.g. "mathematics:3,science:5". Malformed pairs are skipped so a
// typo in configuration degrades the warm-up instead of aborting startup.
func ParsePreloadTargets(s string) []PreloadTarget {
	var targets []PreloadTarget
	for _, pair := range strings.Split(s, ",") {
		subject, grade, ok := strings.Cut(strings.TrimSpace(pair), ":")
		subject = strings.TrimSpace(subject)
		grade = strings.TrimSpace(grade)
		if !ok || subject == "" || grade == "" {
			continue
		}
		targets = append(targets, PreloadTarget{SubjectID: subject, GradeID: grade})
	}
	return targets
}

// Preload warms the cache for the given subject/grade pairs: the topic
// list plus the content bundle for each recommended topic's first visit.
// Already-cached entries cost a cache hit only. Errors are logged per
// target and do not stop the rest of the warm-up.
func (s *Service) Preload(ctx context.Context, targets []PreloadTarget) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadConcurrency)

	for _, target := range targets {
		target := target
		g.Go(func() error {
			list, err := s.Topics(ctx, ai.TopicsRequest{SubjectID: target.SubjectID, GradeID: target.GradeID})
			if err != nil {
				s.logger.Warn("preload topics failed",
					slog.String("subject_id", target.SubjectID),
					slog.String("grade_id", target.GradeID),
					slog.String("error", err.Error()))
				return nil
			}
			if list.Recommended == nil {
				return nil
			}
			_, err = s.Content(ctx, ai.ContentRequest{
				SubjectID:  target.SubjectID,
				GradeID:    target.GradeID,
				TopicID:    list.Recommended.TopicID,
				SubtopicID: list.Recommended.TopicID,
			})
			if err != nil {
				s.logger.Warn("preload content failed",
					slog.String("subject_id", target.SubjectID),
					slog.String("topic_id", list.Recommended.TopicID),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("cache preload finished", slog.Int("targets", len(targets)))
}
