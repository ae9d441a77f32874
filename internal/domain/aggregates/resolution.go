package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/domain/feedback"
	"github.com/yungbote/lecture-feedback-backend/internal/domain/lectures"
)

var ResolutionAggregateContract = Contract{
	Name:   "Resolution.ResolutionAggregate",
	Writes: []string{"lecture", "lecture_section", "lecture_head", "suggestion", "reaction"},
	Notes:  "Owns suggestion approval/rejection: fork, status transition and reaction resolution commit together.",
}

// ResolutionAggregate owns the suggestion lifecycle.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvalidTransition, CodeConflict, CodeInternal.
type ResolutionAggregate interface {
	Aggregate

	// Approve forks the chain's current version with the suggested text,
	// accepts the suggestion and marks the originating reactions addressed.
	Approve(ctx context.Context, suggestionID uuid.UUID) (ApproveResult, error)

	// ApproveMany approves several suggestions of one base lecture in order,
	// one fork each, all or nothing.
	ApproveMany(ctx context.Context, suggestionIDs []uuid.UUID) (ApproveManyResult, error)

	// Reject rejects the suggestion and marks the originating reactions
	// addressed. No lecture version is created.
	Reject(ctx context.Context, suggestionID uuid.UUID) (RejectResult, error)
}

type ApproveResult struct {
	Suggestion        *feedback.Suggestion
	NewLecture        *lectures.Lecture
	ParentLectureID   uuid.UUID
	ReactionsResolved int64
}

type ApproveManyResult struct {
	Suggestions []*feedback.Suggestion
	// The last version produced; current after commit.
	NewLecture *lectures.Lecture
	// Every version produced, in approval order.
	Versions []*lectures.Lecture
	// The version that was current before the first approval.
	ParentLectureID   uuid.UUID
	ReactionsResolved int64
}

type RejectResult struct {
	Suggestion        *feedback.Suggestion
	ReactionsResolved int64
}
