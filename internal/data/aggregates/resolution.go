package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

type ResolutionAggregateDeps struct {
	Base BaseDeps

	Lectures    repos.LectureRepo
	Sections    repos.SectionRepo
	Heads       repos.LectureHeadRepo
	Reactions   repos.ReactionRepo
	Suggestions repos.SuggestionRepo
}

type resolutionAggregate struct {
	deps        ResolutionAggregateDeps
	forker      versionForker
	transitions suggestionTransitions
}

func NewResolutionAggregate(deps ResolutionAggregateDeps) domainagg.ResolutionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &resolutionAggregate{
		deps: deps,
		forker: versionForker{
			lectures: deps.Lectures,
			sections: deps.Sections,
			heads:    deps.Heads,
			cas:      deps.Base.CASGuard,
		},
		transitions: suggestionTransitions{
			suggestions: deps.Suggestions,
			reactions:   deps.Reactions,
			cas:         deps.Base.CASGuard,
		},
	}
}

func (a *resolutionAggregate) Contract() domainagg.Contract {
	return domainagg.ResolutionAggregateContract
}

func (a *resolutionAggregate) configured() bool {
	d := a.deps
	return d.Lectures != nil && d.Sections != nil && d.Heads != nil && d.Reactions != nil && d.Suggestions != nil
}

func (a *resolutionAggregate) Approve(ctx context.Context, suggestionID uuid.UUID) (domainagg.ApproveResult, error) {
	const op = "Resolution.Approve"
	var out domainagg.ApproveResult
	if suggestionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing suggestion id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "resolution aggregate repos not configured", nil)
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		res, _, err := a.approveTx(dbc, op, suggestionID)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

func (a *resolutionAggregate) ApproveMany(ctx context.Context, suggestionIDs []uuid.UUID) (domainagg.ApproveManyResult, error) {
	const op = "Resolution.ApproveMany"
	var out domainagg.ApproveManyResult
	if len(suggestionIDs) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "no suggestion ids", nil)
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range suggestionIDs {
		if id == uuid.Nil {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "missing suggestion id", nil)
		}
		if seen[id] {
			return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("suggestion %s listed twice", id), nil)
		}
		seen[id] = true
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "resolution aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		res := domainagg.ApproveManyResult{}
		base := uuid.Nil
		for _, id := range suggestionIDs {
			one, baseID, err := a.approveTx(dbc, op, id)
			if err != nil {
				return err
			}
			if base == uuid.Nil {
				base = baseID
				res.ParentLectureID = one.ParentLectureID
			} else if baseID != base {
				return domainagg.NewError(domainagg.CodeValidation, op, "suggestions belong to different lectures", nil)
			}
			res.Suggestions = append(res.Suggestions, one.Suggestion)
			res.Versions = append(res.Versions, one.NewLecture)
			res.NewLecture = one.NewLecture
			res.ReactionsResolved += one.ReactionsResolved
		}
		out = res
		return nil
	})
	return out, err
}

// approveTx rebases the suggestion onto the chain's current version. The
// fork is refused when the target section no longer holds the text the
// suggestion was generated from.
func (a *resolutionAggregate) approveTx(dbc dbctx.Context, op string, suggestionID uuid.UUID) (domainagg.ApproveResult, uuid.UUID, error) {
	var out domainagg.ApproveResult
	s, err := a.transitions.lockPending(dbc, op, suggestionID)
	if err != nil {
		return out, uuid.Nil, err
	}

	origin, err := a.deps.Lectures.GetByID(dbc, s.LectureID)
	if err != nil {
		return out, uuid.Nil, err
	}
	if origin == nil {
		return out, uuid.Nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("lecture not found: %s", s.LectureID), nil)
	}

	current := origin
	if !origin.IsCurrent {
		current, err = a.deps.Lectures.GetCurrentByBase(dbc, origin.BaseLectureID)
		if err != nil {
			return out, uuid.Nil, err
		}
		if current == nil {
			return out, uuid.Nil, InvariantError(fmt.Sprintf("no current version for base %s", origin.BaseLectureID))
		}
	}
	sec := current.SectionByID(s.SectionID)
	if sec == nil {
		return out, uuid.Nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("section %s not in current lecture %s", s.SectionID, current.ID), nil)
	}
	if sec.Text != s.OriginalText {
		return out, uuid.Nil, ConflictError(fmt.Sprintf("section %s changed since suggestion %s was generated", s.SectionID, s.ID))
	}

	newLecture, err := a.forker.fork(dbc, op, current, s.SectionID, s.SuggestedText)
	if err != nil {
		return out, uuid.Nil, err
	}
	if err := a.transitions.resolve(dbc, op, s, types.SuggestionAccepted, &newLecture.ID); err != nil {
		return out, uuid.Nil, err
	}
	n, err := a.transitions.markAddressed(dbc, s)
	if err != nil {
		return out, uuid.Nil, err
	}

	out = domainagg.ApproveResult{
		Suggestion:        s,
		NewLecture:        newLecture,
		ParentLectureID:   current.ID,
		ReactionsResolved: n,
	}
	return out, origin.BaseLectureID, nil
}

func (a *resolutionAggregate) Reject(ctx context.Context, suggestionID uuid.UUID) (domainagg.RejectResult, error) {
	const op = "Resolution.Reject"
	var out domainagg.RejectResult
	if suggestionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing suggestion id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "resolution aggregate repos not configured", nil)
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.transitions.lockPending(dbc, op, suggestionID)
		if err != nil {
			return err
		}
		if err := a.transitions.resolve(dbc, op, s, types.SuggestionRejected, nil); err != nil {
			return err
		}
		n, err := a.transitions.markAddressed(dbc, s)
		if err != nil {
			return err
		}
		out = domainagg.RejectResult{Suggestion: s, ReactionsResolved: n}
		return nil
	})
	return out, err
}
