package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/lecture-feedback-backend/internal/data/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	repotest "github.com/yungbote/lecture-feedback-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events(channel string) []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []realtime.SSEEvent
	for _, m := range e.msgs {
		if m.Channel == channel {
			out = append(out, m.Event)
		}
	}
	return out
}

// stubGenerator fails for sections whose text contains "boom" and records
// the highest number of calls seen in flight.
type stubGenerator struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(ctx context.Context, req services.GenerationRequest) (string, error) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if strings.Contains(req.SectionText, "boom") {
		return "", errors.New("model unavailable")
	}
	return strings.ToUpper(req.SectionText), nil
}

type fixture struct {
	repos      repos.Set
	emitter    *recordingEmitter
	lectures   services.LectureService
	feedback   services.FeedbackService
	resolution services.ResolutionService
	query      services.QueryService
}

func newFixture(t *testing.T, gen services.SuggestionGenerator, cfg services.GenerationConfig) *fixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	base := aggregates.BaseDeps{DB: db, Log: log}

	lectureAgg := aggregates.NewLectureAggregate(aggregates.LectureAggregateDeps{
		Base: base, Lectures: set.Lecture, Sections: set.Section, Heads: set.LectureHead,
	})
	feedbackAgg := aggregates.NewFeedbackAggregate(aggregates.FeedbackAggregateDeps{
		Base: base, Lectures: set.Lecture, Reactions: set.Reaction, Suggestions: set.Suggestion,
	})
	resolutionAgg := aggregates.NewResolutionAggregate(aggregates.ResolutionAggregateDeps{
		Base: base, Lectures: set.Lecture, Sections: set.Section, Heads: set.LectureHead,
		Reactions: set.Reaction, Suggestions: set.Suggestion,
	})

	emitter := &recordingEmitter{}
	notify := services.NewLectureNotifier(emitter)
	return &fixture{
		repos:    set,
		emitter:  emitter,
		lectures: services.NewLectureService(log, set.Lecture, lectureAgg, notify),
		feedback: services.NewFeedbackService(log, set.Lecture, set.Reaction, set.Suggestion, set.Enrollment, feedbackAgg, notify),
		resolution: services.NewResolutionService(services.ResolutionServiceDeps{
			Log:         log,
			Lectures:    set.Lecture,
			Reactions:   set.Reaction,
			Suggestions: set.Suggestion,
			Runs:        set.GenerationRun,
			Resolution:  resolutionAgg,
			Feedback:    feedbackAgg,
			Generator:   gen,
			Notify:      notify,
			Config:      cfg,
		}),
		query: services.NewQueryService(log, set.Lecture, set.Reaction, set.Suggestion, set.Enrollment),
	}
}

func (f *fixture) create(t *testing.T, teacherID string, texts ...string) *types.Lecture {
	t.Helper()
	lec, err := f.lectures.CreateInitialLecture(context.Background(), domainagg.CreateLectureInput{
		Title:     "Intro to Algorithms",
		TeacherID: teacherID,
		CourseID:  "course-1",
		Sections:  texts,
	})
	if err != nil {
		t.Fatalf("CreateInitialLecture: %v", err)
	}
	return lec
}

func (f *fixture) react(t *testing.T, lec *types.Lecture, section int, userID string) *types.Reaction {
	t.Helper()
	r, err := f.feedback.AddReaction(context.Background(), domainagg.AddReactionInput{
		LectureID: lec.ID,
		SectionID: lec.Sections[section].ID,
		UserID:    userID,
		Type:      string(types.ReactionConfused),
	})
	if err != nil {
		t.Fatalf("AddReaction: %v", err)
	}
	return r
}
