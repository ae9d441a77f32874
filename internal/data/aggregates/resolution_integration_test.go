package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lecture-feedback-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/lecture-feedback-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	repotest "github.com/yungbote/lecture-feedback-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

type fixture struct {
	db         *gorm.DB
	repos      repos.Set
	hooks      *aggtest.HooksRecorder
	lectures   domainagg.LectureAggregate
	feedback   domainagg.FeedbackAggregate
	resolution domainagg.ResolutionAggregate
}

func newFixture(t *testing.T, runner aggregates.TxRunner) *fixture {
	t.Helper()
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))
	hooks := &aggtest.HooksRecorder{}
	base := aggregates.BaseDeps{DB: db, Log: repotest.Logger(t), Runner: runner, Hooks: hooks}
	return &fixture{
		db:    db,
		repos: set,
		hooks: hooks,
		lectures: aggregates.NewLectureAggregate(aggregates.LectureAggregateDeps{
			Base: base, Lectures: set.Lecture, Sections: set.Section, Heads: set.LectureHead,
		}),
		feedback: aggregates.NewFeedbackAggregate(aggregates.FeedbackAggregateDeps{
			Base: base, Lectures: set.Lecture, Reactions: set.Reaction, Suggestions: set.Suggestion,
		}),
		resolution: aggregates.NewResolutionAggregate(aggregates.ResolutionAggregateDeps{
			Base: base, Lectures: set.Lecture, Sections: set.Section, Heads: set.LectureHead,
			Reactions: set.Reaction, Suggestions: set.Suggestion,
		}),
	}
}

func (f *fixture) create(t *testing.T, texts ...string) *types.Lecture {
	t.Helper()
	lec, err := f.lectures.CreateInitial(context.Background(), domainagg.CreateLectureInput{
		Title:     "Intro to Algorithms",
		TeacherID: "teacher-1",
		CourseID:  "course-1",
		Sections:  texts,
	})
	if err != nil {
		t.Fatalf("CreateInitial: %v", err)
	}
	return lec
}

func (f *fixture) suggest(t *testing.T, lectureID, sectionID uuid.UUID, text string) *types.Suggestion {
	t.Helper()
	res, err := f.feedback.AddSuggestions(context.Background(), domainagg.AddSuggestionsInput{
		LectureID: lectureID,
		Entries:   []domainagg.SuggestionEntry{{SectionID: sectionID, SuggestedText: text}},
	})
	if err != nil {
		t.Fatalf("AddSuggestions: %v", err)
	}
	if len(res.Suggestions) != 1 {
		t.Fatalf("AddSuggestions: want=1 got=%d", len(res.Suggestions))
	}
	return res.Suggestions[0]
}

func (f *fixture) assertSingleCurrent(t *testing.T, baseID uuid.UUID) *types.Lecture {
	t.Helper()
	dbc := dbctx.Context{Ctx: context.Background()}
	versions, err := f.repos.Lecture.ListByBase(dbc, baseID)
	if err != nil {
		t.Fatalf("ListByBase: %v", err)
	}
	var current *types.Lecture
	for i, v := range versions {
		if v.Version != i+1 {
			t.Fatalf("versions not contiguous: index %d has version %d", i, v.Version)
		}
		if v.IsCurrent {
			if current != nil {
				t.Fatalf("two current versions: %d and %d", current.Version, v.Version)
			}
			current = v
		}
	}
	if current == nil || current.Version != len(versions) {
		t.Fatalf("current must be the highest version (have %d versions)", len(versions))
	}
	head, err := f.repos.LectureHead.GetByID(dbc, baseID)
	if err != nil || head == nil || head.LectureID != current.ID || head.Version != current.Version {
		t.Fatalf("lecture_head out of sync: err=%v head=%+v current=%s", err, head, current.ID)
	}
	return current
}

func sectionTexts(l *types.Lecture) []string {
	out := make([]string, 0, len(l.Sections))
	for _, s := range l.Sections {
		out = append(out, s.Text)
	}
	return out
}

func TestApprove_ForksAndResolvesFeedback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	if v1.Version != 1 || !v1.IsCurrent || v1.BaseLectureID != v1.ID {
		t.Fatalf("initial lecture: %+v", v1)
	}
	intro, body := v1.Sections[0], v1.Sections[1]
	if intro.Order != 1 || body.Order != 2 {
		t.Fatalf("section order: intro=%d body=%d", intro.Order, body.Order)
	}

	onBody, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{
		LectureID: v1.ID, SectionID: body.ID, UserID: "student-1", Type: "confused", Comment: "lost here",
	})
	if err != nil {
		t.Fatalf("AddReaction body: %v", err)
	}
	if onBody.Addressed {
		t.Fatalf("new reaction must start unaddressed")
	}
	onIntro, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{
		LectureID: v1.ID, SectionID: intro.ID, UserID: "student-1", Type: "typo",
	})
	if err != nil {
		t.Fatalf("AddReaction intro: %v", err)
	}

	s := f.suggest(t, v1.ID, body.ID, "body-v2")
	if s.Status != types.SuggestionPending || s.OriginalText != "body" {
		t.Fatalf("suggestion: %+v", s)
	}

	res, err := f.resolution.Approve(ctx, s.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	nl := res.NewLecture
	if nl.Version != 2 || !nl.IsCurrent || nl.BaseLectureID != v1.BaseLectureID {
		t.Fatalf("new lecture: %+v", nl)
	}
	if got := sectionTexts(nl); len(got) != 2 || got[0] != "intro" || got[1] != "body-v2" {
		t.Fatalf("new sections: %v", got)
	}
	for i := range nl.Sections {
		if nl.Sections[i].ID != v1.Sections[i].ID || nl.Sections[i].Order != v1.Sections[i].Order {
			t.Fatalf("section %d identity changed: %+v vs %+v", i, nl.Sections[i], v1.Sections[i])
		}
	}
	if res.Suggestion.Status != types.SuggestionAccepted || res.Suggestion.ResultLectureID == nil || *res.Suggestion.ResultLectureID != nl.ID {
		t.Fatalf("accepted suggestion: %+v", res.Suggestion)
	}
	if res.ReactionsResolved != 1 {
		t.Fatalf("ReactionsResolved: want=1 got=%d", res.ReactionsResolved)
	}

	dbc := dbctx.Context{Ctx: ctx}
	old, _ := f.repos.Lecture.GetByID(dbc, v1.ID)
	if old.IsCurrent {
		t.Fatalf("parent must no longer be current")
	}
	if got := sectionTexts(old); got[1] != "body" {
		t.Fatalf("parent content must be unchanged, got %v", got)
	}
	f.assertSingleCurrent(t, v1.BaseLectureID)

	r1, _ := f.repos.Reaction.GetByID(dbc, onBody.ID)
	r2, _ := f.repos.Reaction.GetByID(dbc, onIntro.ID)
	if !r1.Addressed {
		t.Fatalf("reaction on approved section must be addressed")
	}
	if r2.Addressed {
		t.Fatalf("reaction on other section must be untouched")
	}
	if st := f.hooks.StatusesFor("Resolution.Approve"); len(st) != 1 || st[0] != "success" {
		t.Fatalf("approve hook statuses: %v", st)
	}
}

func TestApprove_OtherPendingSuggestionSurvivesFork(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	sIntro := f.suggest(t, v1.ID, v1.Sections[0].ID, "intro-v2")
	sBody := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-v2")

	first, err := f.resolution.Approve(ctx, sIntro.ID)
	if err != nil {
		t.Fatalf("Approve intro: %v", err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	still, _ := f.repos.Suggestion.GetByID(dbc, sBody.ID)
	if still.Status != types.SuggestionPending || still.SectionID != sBody.SectionID || still.LectureID != v1.ID {
		t.Fatalf("untouched suggestion changed: %+v", still)
	}

	second, err := f.resolution.Approve(ctx, sBody.ID)
	if err != nil {
		t.Fatalf("Approve body after fork: %v", err)
	}
	if second.ParentLectureID != first.NewLecture.ID {
		t.Fatalf("second approval must fork from the current version: parent=%s want=%s", second.ParentLectureID, first.NewLecture.ID)
	}
	if second.NewLecture.Version != 3 {
		t.Fatalf("version: want=3 got=%d", second.NewLecture.Version)
	}
	if got := sectionTexts(second.NewLecture); got[0] != "intro-v2" || got[1] != "body-v2" {
		t.Fatalf("sections: %v", got)
	}
	f.assertSingleCurrent(t, v1.BaseLectureID)
}

func TestReject_ThenApproveIsInvalidTransition(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	reaction, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{
		LectureID: v1.ID, SectionID: v1.Sections[1].ID, UserID: "student-1", Type: "calculation_error",
	})
	if err != nil {
		t.Fatalf("AddReaction: %v", err)
	}
	s := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-v2")

	res, err := f.resolution.Reject(ctx, s.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if res.Suggestion.Status != types.SuggestionRejected || res.Suggestion.ResolvedAt == nil {
		t.Fatalf("rejected suggestion: %+v", res.Suggestion)
	}

	dbc := dbctx.Context{Ctx: ctx}
	versions, _ := f.repos.Lecture.ListByBase(dbc, v1.BaseLectureID)
	if len(versions) != 1 || !versions[0].IsCurrent {
		t.Fatalf("reject must not create or alter versions: %d versions", len(versions))
	}
	r, _ := f.repos.Reaction.GetByID(dbc, reaction.ID)
	if !r.Addressed {
		t.Fatalf("reject must address the section's reactions")
	}

	_, err = f.resolution.Approve(ctx, s.ID)
	if !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("approve after reject: want invalid_transition got %v", err)
	}
	_, err = f.resolution.Reject(ctx, s.ID)
	if !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("reject twice: want invalid_transition got %v", err)
	}
	_, err = f.resolution.Approve(ctx, uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("approve unknown: want not_found got %v", err)
	}
}

func TestApprove_StaleSectionTextConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	a := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-a")
	b := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-b")

	if _, err := f.resolution.Approve(ctx, a.ID); err != nil {
		t.Fatalf("Approve a: %v", err)
	}
	_, err := f.resolution.Approve(ctx, b.ID)
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("approve over rewritten section: want conflict got %v", err)
	}
	if f.hooks.ConflictCount() != 1 {
		t.Fatalf("conflict hook count: want=1 got=%d", f.hooks.ConflictCount())
	}
	still, _ := f.repos.Suggestion.GetByID(dbctx.Context{Ctx: ctx}, b.ID)
	if still.Status != types.SuggestionPending {
		t.Fatalf("failed approval must leave suggestion pending, got %s", still.Status)
	}
	f.assertSingleCurrent(t, v1.BaseLectureID)
}

func TestFork_StaleParentConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	v2, err := f.lectures.Fork(ctx, domainagg.ForkLectureInput{ParentLectureID: v1.ID, SectionID: v1.Sections[0].ID, NewText: "intro-v2"})
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if v2.Version != 2 {
		t.Fatalf("fork version: want=2 got=%d", v2.Version)
	}
	_, err = f.lectures.Fork(ctx, domainagg.ForkLectureInput{ParentLectureID: v1.ID, SectionID: v1.Sections[1].ID, NewText: "body-v2"})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("fork from stale parent: want conflict got %v", err)
	}
	_, err = f.lectures.Fork(ctx, domainagg.ForkLectureInput{ParentLectureID: v2.ID, SectionID: uuid.New(), NewText: "x"})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("fork unknown section: want not_found got %v", err)
	}
	f.assertSingleCurrent(t, v1.BaseLectureID)
}

func TestFork_ConcurrentForksFromSameParent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	v1 := f.create(t, "intro", "body")

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lectures.Fork(ctx, domainagg.ForkLectureInput{
				ParentLectureID: v1.ID,
				SectionID:       v1.Sections[i%2].ID,
				NewText:         "concurrent",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domainagg.IsCode(err, domainagg.CodeConflict):
		default:
			t.Fatalf("unexpected fork error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("exactly one fork from the same parent may succeed, got %d", ok)
	}
	cur := f.assertSingleCurrent(t, v1.BaseLectureID)
	if cur.Version != 2 {
		t.Fatalf("current version: want=2 got=%d", cur.Version)
	}
}

func TestApproveMany(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "a", "b", "c")
	s1 := f.suggest(t, v1.ID, v1.Sections[0].ID, "a2")
	s3 := f.suggest(t, v1.ID, v1.Sections[2].ID, "c2")

	res, err := f.resolution.ApproveMany(ctx, []uuid.UUID{s1.ID, s3.ID})
	if err != nil {
		t.Fatalf("ApproveMany: %v", err)
	}
	if len(res.Versions) != 2 || res.NewLecture.Version != 3 {
		t.Fatalf("versions: %d, last=%d", len(res.Versions), res.NewLecture.Version)
	}
	if got := sectionTexts(res.NewLecture); got[0] != "a2" || got[1] != "b" || got[2] != "c2" {
		t.Fatalf("sections: %v", got)
	}
	f.assertSingleCurrent(t, v1.BaseLectureID)

	other := f.create(t, "x")
	sx := f.suggest(t, other.ID, other.Sections[0].ID, "x2")
	sb := f.suggest(t, res.NewLecture.ID, res.NewLecture.Sections[1].ID, "b2")
	_, err = f.resolution.ApproveMany(ctx, []uuid.UUID{sb.ID, sx.ID})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("mixed bases: want validation got %v", err)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if got, _ := f.repos.Suggestion.GetByID(dbc, sb.ID); got.Status != types.SuggestionPending {
		t.Fatalf("failed batch must roll back, suggestion status=%s", got.Status)
	}
	if cur := f.assertSingleCurrent(t, v1.BaseLectureID); cur.Version != 3 {
		t.Fatalf("failed batch must roll back, current version=%d", cur.Version)
	}

	if _, err := f.resolution.ApproveMany(ctx, []uuid.UUID{sb.ID, sb.ID}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("duplicate ids: want validation got %v", err)
	}
}

func TestApprove_CommitFailureRollsBackEverything(t *testing.T) {
	runner := &aggtest.InjectedTxRunner{}
	f := newFixture(t, runner)
	runner.DB = f.db
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	reaction, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{
		LectureID: v1.ID, SectionID: v1.Sections[1].ID, UserID: "student-1", Type: "typo",
	})
	if err != nil {
		t.Fatalf("AddReaction: %v", err)
	}
	s := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-v2")

	runner.FailCommit = errors.New("commit lost")
	if _, err := f.resolution.Approve(ctx, s.ID); err == nil {
		t.Fatalf("expected approve to fail")
	}
	if runner.RollbackCalls != 1 {
		t.Fatalf("rollback calls: want=1 got=%d", runner.RollbackCalls)
	}

	dbc := dbctx.Context{Ctx: ctx}
	versions, _ := f.repos.Lecture.ListByBase(dbc, v1.BaseLectureID)
	if len(versions) != 1 || !versions[0].IsCurrent {
		t.Fatalf("no version may survive a failed approve, got %d", len(versions))
	}
	if got, _ := f.repos.Suggestion.GetByID(dbc, s.ID); got.Status != types.SuggestionPending {
		t.Fatalf("suggestion must stay pending, got %s", got.Status)
	}
	if got, _ := f.repos.Reaction.GetByID(dbc, reaction.ID); got.Addressed {
		t.Fatalf("reaction must stay unaddressed")
	}

	runner.FailCommit = nil
	if _, err := f.resolution.Approve(ctx, s.ID); err != nil {
		t.Fatalf("Approve after recovery: %v", err)
	}
	f.assertSingleCurrent(t, v1.BaseLectureID)
}
