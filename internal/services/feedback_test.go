package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

func TestFeedbackService_ListsAndLookups(t *testing.T) {
	f := newFixture(t, nil, services.GenerationConfig{})
	ctx := context.Background()
	lec := f.create(t, "teacher-1", "a", "b")
	f.react(t, lec, 0, "student-1")
	f.react(t, lec, 1, "student-2")

	got, err := f.feedback.ListReactions(ctx, services.ReactionQuery{LectureID: &lec.ID, UserID: "student-2"})
	if err != nil || len(got) != 1 || got[0].UserID != "student-2" {
		t.Fatalf("ListReactions: err=%v got=%+v", err, got)
	}

	if _, err := f.resolution.GenerateSuggestions(ctx, lec.ID); err != nil {
		t.Fatalf("GenerateSuggestions: %v", err)
	}
	pending, err := f.feedback.ListSuggestions(ctx, services.SuggestionQuery{LectureID: &lec.ID, Status: types.SuggestionPending})
	if err != nil || len(pending) != 2 {
		t.Fatalf("ListSuggestions: err=%v n=%d", err, len(pending))
	}
	one, err := f.feedback.GetSuggestion(ctx, pending[0].ID)
	if err != nil || one.ID != pending[0].ID {
		t.Fatalf("GetSuggestion: err=%v", err)
	}
	if _, err := f.feedback.GetSuggestion(ctx, uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown suggestion: want not_found got %v", err)
	}
	if _, err := f.feedback.ListSuggestions(ctx, services.SuggestionQuery{Status: "archived"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad status: want validation got %v", err)
	}
}

func TestFeedbackService_Enroll(t *testing.T) {
	f := newFixture(t, nil, services.GenerationConfig{})
	ctx := context.Background()

	if _, err := f.feedback.Enroll(ctx, "", "course-1"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank user: want validation got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.feedback.Enroll(ctx, "student-1", "course-1"); err != nil {
			t.Fatalf("Enroll #%d: %v", i, err)
		}
	}
}

func TestLectureService_Reads(t *testing.T) {
	f := newFixture(t, nil, services.GenerationConfig{})
	ctx := context.Background()
	lec := f.create(t, "teacher-1", "a")

	if _, err := f.lectures.GetVersion(ctx, uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("GetVersion unknown: want not_found got %v", err)
	}
	if _, err := f.lectures.ListVersions(ctx, uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("ListVersions unknown: want not_found got %v", err)
	}
	v2, err := f.lectures.ForkVersion(ctx, domainagg.ForkLectureInput{ParentLectureID: lec.ID, SectionID: lec.Sections[0].ID, NewText: "a2"})
	if err != nil {
		t.Fatalf("ForkVersion: %v", err)
	}
	versions, err := f.lectures.ListVersions(ctx, lec.BaseLectureID)
	if err != nil || len(versions) != 2 || versions[1].ID != v2.ID {
		t.Fatalf("ListVersions: err=%v versions=%+v", err, versions)
	}
	old, err := f.lectures.GetVersion(ctx, lec.ID)
	if err != nil || old.IsCurrent || old.Sections[0].Text != "a" {
		t.Fatalf("old version must be immutable and not current: err=%v lec=%+v", err, old)
	}
}
