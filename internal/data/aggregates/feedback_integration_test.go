package aggregates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

func TestAddReaction_Targets(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v1 := f.create(t, "intro", "body")
	v2, err := f.lectures.Fork(ctx, domainagg.ForkLectureInput{ParentLectureID: v1.ID, SectionID: v1.Sections[0].ID, NewText: "intro-v2"})
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}

	cases := []struct {
		name string
		in   domainagg.AddReactionInput
		want domainagg.ErrorCode
	}{
		{"unknown lecture", domainagg.AddReactionInput{LectureID: uuid.New(), SectionID: v2.Sections[0].ID, UserID: "s", Type: "typo"}, domainagg.CodeInvalidTarget},
		{"old version", domainagg.AddReactionInput{LectureID: v1.ID, SectionID: v1.Sections[0].ID, UserID: "s", Type: "typo"}, domainagg.CodeInvalidTarget},
		{"unknown section", domainagg.AddReactionInput{LectureID: v2.ID, SectionID: uuid.New(), UserID: "s", Type: "typo"}, domainagg.CodeInvalidTarget},
		{"bad type", domainagg.AddReactionInput{LectureID: v2.ID, SectionID: v2.Sections[0].ID, UserID: "s", Type: "angry"}, domainagg.CodeValidation},
		{"blank user", domainagg.AddReactionInput{LectureID: v2.ID, SectionID: v2.Sections[0].ID, UserID: "  ", Type: "typo"}, domainagg.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.feedback.AddReaction(ctx, tc.in)
			if !domainagg.IsCode(err, tc.want) {
				t.Fatalf("want %s got %v", tc.want, err)
			}
		})
	}

	r, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{LectureID: v2.ID, SectionID: v2.Sections[1].ID, UserID: "s", Type: "typo"})
	if err != nil || r.Type != types.ReactionTypo || r.CreatedAt.IsZero() {
		t.Fatalf("AddReaction current: err=%v r=%+v", err, r)
	}
}

func TestAddSuggestions_SnapshotsAndTargets(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	v1 := f.create(t, "intro", "body")

	res, err := f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{
		LectureID: v1.ID,
		Entries: []domainagg.SuggestionEntry{
			{SectionID: v1.Sections[0].ID, SuggestedText: "intro-v2"},
			{SectionID: v1.Sections[1].ID, SuggestedText: "body-v2"},
		},
	})
	if err != nil {
		t.Fatalf("AddSuggestions: %v", err)
	}
	if len(res.Suggestions) != 2 || res.Suggestions[0].OriginalText != "intro" || res.Suggestions[1].OriginalText != "body" {
		t.Fatalf("snapshots: %+v", res.Suggestions)
	}
	if len(res.Duplicates) != 0 {
		t.Fatalf("no duplicates expected, got %v", res.Duplicates)
	}

	_, err = f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{
		LectureID: v1.ID,
		Entries: []domainagg.SuggestionEntry{
			{SectionID: v1.Sections[0].ID, SuggestedText: "ok"},
			{SectionID: uuid.New(), SuggestedText: "nope"},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeInvalidTarget) {
		t.Fatalf("unknown section: want invalid_target got %v", err)
	}
	all, _ := f.repos.Suggestion.List(dbctx.Context{Ctx: ctx}, repos.SuggestionFilter{LectureID: &v1.ID})
	if len(all) != 2 {
		t.Fatalf("failed batch must not persist anything, have %d", len(all))
	}

	_, err = f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{LectureID: uuid.New(), Entries: []domainagg.SuggestionEntry{{SectionID: v1.Sections[0].ID}}})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown lecture: want not_found got %v", err)
	}
	_, err = f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{LectureID: v1.ID, DuplicatePolicy: "merge"})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("unknown policy: want validation got %v", err)
	}
}

func TestAddSuggestions_DuplicatePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("allow reports duplicates", func(t *testing.T) {
		f := newFixture(t, nil)
		v1 := f.create(t, "intro", "body")
		first := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-a")
		res, err := f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{
			LectureID: v1.ID,
			Entries:   []domainagg.SuggestionEntry{{SectionID: v1.Sections[1].ID, SuggestedText: "body-b"}},
		})
		if err != nil {
			t.Fatalf("AddSuggestions: %v", err)
		}
		if len(res.Suggestions) != 1 || len(res.Duplicates) != 1 || res.Duplicates[0] != v1.Sections[1].ID {
			t.Fatalf("allow: %+v", res)
		}
		old, _ := f.repos.Suggestion.GetByID(dbctx.Context{Ctx: ctx}, first.ID)
		if old.Status != types.SuggestionPending {
			t.Fatalf("allow must leave the earlier suggestion pending")
		}
	})

	t.Run("skip leaves section alone", func(t *testing.T) {
		f := newFixture(t, nil)
		v1 := f.create(t, "intro", "body")
		f.suggest(t, v1.ID, v1.Sections[1].ID, "body-a")
		res, err := f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{
			LectureID:       v1.ID,
			DuplicatePolicy: domainagg.DuplicateSkip,
			Entries: []domainagg.SuggestionEntry{
				{SectionID: v1.Sections[0].ID, SuggestedText: "intro-b"},
				{SectionID: v1.Sections[1].ID, SuggestedText: "body-b"},
			},
		})
		if err != nil {
			t.Fatalf("AddSuggestions: %v", err)
		}
		if len(res.Suggestions) != 1 || res.Suggestions[0].SectionID != v1.Sections[0].ID {
			t.Fatalf("skip created: %+v", res.Suggestions)
		}
		if len(res.Skipped) != 1 || res.Skipped[0] != v1.Sections[1].ID {
			t.Fatalf("skip skipped: %v", res.Skipped)
		}
	})

	t.Run("supersede rejects stale pending", func(t *testing.T) {
		f := newFixture(t, nil)
		v1 := f.create(t, "intro", "body")
		reaction, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{LectureID: v1.ID, SectionID: v1.Sections[1].ID, UserID: "s", Type: "typo"})
		if err != nil {
			t.Fatalf("AddReaction: %v", err)
		}
		first := f.suggest(t, v1.ID, v1.Sections[1].ID, "body-a")
		res, err := f.feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{
			LectureID:       v1.ID,
			DuplicatePolicy: domainagg.DuplicateSupersede,
			Entries:         []domainagg.SuggestionEntry{{SectionID: v1.Sections[1].ID, SuggestedText: "body-b"}},
		})
		if err != nil {
			t.Fatalf("AddSuggestions: %v", err)
		}
		if len(res.Superseded) != 1 || res.Superseded[0] != first.ID {
			t.Fatalf("superseded: %v", res.Superseded)
		}
		dbc := dbctx.Context{Ctx: ctx}
		old, _ := f.repos.Suggestion.GetByID(dbc, first.ID)
		if old.Status != types.SuggestionRejected || old.SupersededByID == nil || *old.SupersededByID != res.Suggestions[0].ID {
			t.Fatalf("superseded suggestion: %+v", old)
		}
		r, _ := f.repos.Reaction.GetByID(dbc, reaction.ID)
		if r.Addressed {
			t.Fatalf("supersession is not a teacher decision; reaction must stay open")
		}
	})
}

func TestSetSuggestionStatusAndMarkAddressed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	v1 := f.create(t, "intro", "body")
	s := f.suggest(t, v1.ID, v1.Sections[0].ID, "intro-v2")

	if _, err := f.feedback.SetSuggestionStatus(ctx, s.ID, types.SuggestionPending); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("pending target: want validation got %v", err)
	}
	got, err := f.feedback.SetSuggestionStatus(ctx, s.ID, types.SuggestionRejected)
	if err != nil || got.Status != types.SuggestionRejected {
		t.Fatalf("SetSuggestionStatus: err=%v got=%+v", err, got)
	}
	if _, err := f.feedback.SetSuggestionStatus(ctx, s.ID, types.SuggestionAccepted); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("terminal: want invalid_transition got %v", err)
	}
	if _, err := f.feedback.SetSuggestionStatus(ctx, uuid.New(), types.SuggestionAccepted); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown: want not_found got %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{LectureID: v1.ID, SectionID: v1.Sections[0].ID, UserID: "s", Type: "typo"}); err != nil {
			t.Fatalf("AddReaction: %v", err)
		}
	}
	other, err := f.feedback.AddReaction(ctx, domainagg.AddReactionInput{LectureID: v1.ID, SectionID: v1.Sections[1].ID, UserID: "s", Type: "typo"})
	if err != nil {
		t.Fatalf("AddReaction other: %v", err)
	}

	n, err := f.feedback.MarkReactionsAddressed(ctx, v1.ID, v1.Sections[0].ID)
	if err != nil || n != 2 {
		t.Fatalf("MarkReactionsAddressed: want=2 got=%d err=%v", n, err)
	}
	n, err = f.feedback.MarkReactionsAddressed(ctx, v1.ID, v1.Sections[0].ID)
	if err != nil || n != 0 {
		t.Fatalf("MarkReactionsAddressed again: want=0 got=%d err=%v", n, err)
	}
	open := false
	left, _ := f.repos.Reaction.List(dbctx.Context{Ctx: ctx}, repos.ReactionFilter{LectureID: &v1.ID, Addressed: &open})
	if len(left) != 1 || left[0].ID != other.ID {
		t.Fatalf("only the other section's reaction should stay open: %+v", left)
	}
}

func TestCreateInitial_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cases := []domainagg.CreateLectureInput{
		{Title: " ", TeacherID: "t", CourseID: "c", Sections: []string{"a"}},
		{Title: "x", TeacherID: "t", CourseID: "c"},
		{Title: "x", CourseID: "c", Sections: []string{"a"}},
	}
	for i, in := range cases {
		if _, err := f.lectures.CreateInitial(ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("case %d: want validation got %v", i, err)
		}
	}
}
