package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
)

// SeedLecture inserts version 1 of a new base lecture plus its head row.
func SeedLecture(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID string, texts ...string) *types.Lecture {
	tb.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	lec := &types.Lecture{
		ID:            id,
		BaseLectureID: id,
		Version:       1,
		IsCurrent:     true,
		Title:         "Lecture",
		TeacherID:     teacherID,
		CourseID:      "course-1",
		CreatedAt:     now,
	}
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(lec).Error; err != nil {
		tb.Fatalf("seed lecture: %v", err)
	}
	for i, text := range texts {
		lec.Sections = append(lec.Sections, types.Section{
			LectureID: id,
			ID:        uuid.New(),
			Order:     i + 1,
			Text:      text,
		})
	}
	if len(lec.Sections) > 0 {
		if err := tx.WithContext(ctx).Create(&lec.Sections).Error; err != nil {
			tb.Fatalf("seed sections: %v", err)
		}
	}
	head := &types.LectureHead{ID: id, Version: 1, LectureID: id, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(head).Error; err != nil {
		tb.Fatalf("seed lecture head: %v", err)
	}
	return lec
}

func SeedReaction(tb testing.TB, ctx context.Context, tx *gorm.DB, lectureID, sectionID uuid.UUID, userID string) *types.Reaction {
	tb.Helper()
	r := &types.Reaction{
		ID:        uuid.New(),
		LectureID: lectureID,
		SectionID: sectionID,
		UserID:    userID,
		Type:      types.ReactionConfused,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed reaction: %v", err)
	}
	return r
}

func SeedSuggestion(tb testing.TB, ctx context.Context, tx *gorm.DB, lectureID, sectionID uuid.UUID, original, suggested string) *types.Suggestion {
	tb.Helper()
	s := &types.Suggestion{
		ID:            uuid.New(),
		LectureID:     lectureID,
		SectionID:     sectionID,
		OriginalText:  original,
		SuggestedText: suggested,
		Status:        types.SuggestionPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed suggestion: %v", err)
	}
	return s
}
