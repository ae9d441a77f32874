package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/domain/feedback"
)

var FeedbackAggregateContract = Contract{
	Name:   "Feedback.FeedbackAggregate",
	Writes: []string{"reaction", "suggestion"},
	Notes:  "Owns reaction and suggestion creation against current lecture sections, and reaction resolution.",
}

// FeedbackAggregate owns reaction/suggestion write invariants.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvalidTarget, CodeInvalidTransition, CodeInternal.
type FeedbackAggregate interface {
	Aggregate

	// AddReaction files student feedback against a section of a current lecture.
	AddReaction(ctx context.Context, in AddReactionInput) (*feedback.Reaction, error)

	// AddSuggestions records pending suggestions, snapshotting each section's text.
	// The whole batch fails if any entry targets an unknown section.
	AddSuggestions(ctx context.Context, in AddSuggestionsInput) (AddSuggestionsResult, error)

	// SetSuggestionStatus moves a pending suggestion to accepted or rejected.
	SetSuggestionStatus(ctx context.Context, id uuid.UUID, status feedback.SuggestionStatus) (*feedback.Suggestion, error)

	// MarkReactionsAddressed resolves every open reaction on (lecture, section).
	// Idempotent; returns the number of rows changed.
	MarkReactionsAddressed(ctx context.Context, lectureID, sectionID uuid.UUID) (int64, error)
}

type AddReactionInput struct {
	LectureID uuid.UUID
	SectionID uuid.UUID
	UserID    string `validate:"notblank"`
	Type      string `validate:"required,oneof=typo confused calculation_error"`
	Comment   string
}

type SuggestionEntry struct {
	SectionID     uuid.UUID
	SuggestedText string
}

type AddSuggestionsInput struct {
	LectureID uuid.UUID
	Entries   []SuggestionEntry
	// Optional; links created rows to the generation run that produced them.
	GenerationRunID *uuid.UUID
	// allow (default), skip or supersede.
	DuplicatePolicy string
}

type AddSuggestionsResult struct {
	Suggestions []*feedback.Suggestion
	// Sections that already had a pending suggestion on this version.
	Duplicates []uuid.UUID
	// Sections left alone under the skip policy.
	Skipped []uuid.UUID
	// Pending suggestions rejected under the supersede policy.
	Superseded []uuid.UUID
}

// DuplicatePolicy values for AddSuggestionsInput.
const (
	DuplicateAllow     = "allow"
	DuplicateSkip      = "skip"
	DuplicateSupersede = "supersede"
)

func ValidDuplicatePolicy(p string) bool {
	switch p {
	case "", DuplicateAllow, DuplicateSkip, DuplicateSupersede:
		return true
	}
	return false
}
