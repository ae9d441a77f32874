package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lecture-feedback-backend/internal/data/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type Services struct {
	Lectures   services.LectureService
	Feedback   services.FeedbackService
	Resolution services.ResolutionService
	Query      services.QueryService
}

type ServiceDeps struct {
	Generator  services.SuggestionGenerator
	Emitter    services.SSEEmitter
	Metrics    *observability.Metrics
	Generation services.GenerationConfig
}

// WireServices builds the aggregates and services over db. Emitter may be
// nil, in which case nothing is published.
func WireServices(db *gorm.DB, log *logger.Logger, set repos.Set, deps ServiceDeps) Services {
	log.Info("Wiring services...")
	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewMetricsHooks(deps.Metrics),
	}
	lectureAgg := aggregates.NewLectureAggregate(aggregates.LectureAggregateDeps{
		Base:     base,
		Lectures: set.Lecture,
		Sections: set.Section,
		Heads:    set.LectureHead,
	})
	feedbackAgg := aggregates.NewFeedbackAggregate(aggregates.FeedbackAggregateDeps{
		Base:        base,
		Lectures:    set.Lecture,
		Reactions:   set.Reaction,
		Suggestions: set.Suggestion,
	})
	resolutionAgg := aggregates.NewResolutionAggregate(aggregates.ResolutionAggregateDeps{
		Base:        base,
		Lectures:    set.Lecture,
		Sections:    set.Section,
		Heads:       set.LectureHead,
		Reactions:   set.Reaction,
		Suggestions: set.Suggestion,
	})

	var notify services.LectureNotifier
	if deps.Emitter != nil {
		notify = services.NewLectureNotifier(deps.Emitter)
	}

	return Services{
		Lectures: services.NewLectureService(log, set.Lecture, lectureAgg, notify),
		Feedback: services.NewFeedbackService(log, set.Lecture, set.Reaction, set.Suggestion, set.Enrollment, feedbackAgg, notify),
		Resolution: services.NewResolutionService(services.ResolutionServiceDeps{
			Log:         log,
			Lectures:    set.Lecture,
			Reactions:   set.Reaction,
			Suggestions: set.Suggestion,
			Runs:        set.GenerationRun,
			Resolution:  resolutionAgg,
			Feedback:    feedbackAgg,
			Generator:   deps.Generator,
			Notify:      notify,
			Config:      deps.Generation,
		}),
		Query: services.NewQueryService(log, set.Lecture, set.Reaction, set.Suggestion, set.Enrollment),
	}
}
