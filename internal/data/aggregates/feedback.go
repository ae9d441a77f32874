package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

type FeedbackAggregateDeps struct {
	Base BaseDeps

	Lectures    repos.LectureRepo
	Reactions   repos.ReactionRepo
	Suggestions repos.SuggestionRepo
}

type feedbackAggregate struct {
	deps        FeedbackAggregateDeps
	transitions suggestionTransitions
}

func NewFeedbackAggregate(deps FeedbackAggregateDeps) domainagg.FeedbackAggregate {
	deps.Base = deps.Base.withDefaults()
	return &feedbackAggregate{
		deps: deps,
		transitions: suggestionTransitions{
			suggestions: deps.Suggestions,
			reactions:   deps.Reactions,
			cas:         deps.Base.CASGuard,
		},
	}
}

func (a *feedbackAggregate) Contract() domainagg.Contract {
	return domainagg.FeedbackAggregateContract
}

func (a *feedbackAggregate) configured() bool {
	return a.deps.Lectures != nil && a.deps.Reactions != nil && a.deps.Suggestions != nil
}

func (a *feedbackAggregate) AddReaction(ctx context.Context, in domainagg.AddReactionInput) (*types.Reaction, error) {
	const op = "Feedback.AddReaction"
	in.Type = strings.TrimSpace(in.Type)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	if !a.configured() {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "feedback aggregate repos not configured", nil)
	}

	var out *types.Reaction
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		lec, err := a.deps.Lectures.GetByID(dbc, in.LectureID)
		if err != nil {
			return err
		}
		if lec == nil {
			return domainagg.NewError(domainagg.CodeInvalidTarget, op, fmt.Sprintf("lecture %s does not exist", in.LectureID), nil)
		}
		if !lec.IsCurrent {
			return domainagg.NewError(domainagg.CodeInvalidTarget, op, fmt.Sprintf("lecture %s is not the current version", in.LectureID), nil)
		}
		if lec.SectionByID(in.SectionID) == nil {
			return domainagg.NewError(domainagg.CodeInvalidTarget, op, fmt.Sprintf("section %s not in lecture %s", in.SectionID, in.LectureID), nil)
		}
		r := &types.Reaction{
			ID:        uuid.New(),
			LectureID: in.LectureID,
			SectionID: in.SectionID,
			UserID:    strings.TrimSpace(in.UserID),
			Type:      types.ReactionType(in.Type),
			Comment:   in.Comment,
		}
		if err := a.deps.Reactions.Create(dbc, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

func (a *feedbackAggregate) AddSuggestions(ctx context.Context, in domainagg.AddSuggestionsInput) (domainagg.AddSuggestionsResult, error) {
	const op = "Feedback.AddSuggestions"
	out := domainagg.AddSuggestionsResult{Suggestions: []*types.Suggestion{}}
	if in.LectureID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing lecture id", nil)
	}
	if !domainagg.ValidDuplicatePolicy(in.DuplicatePolicy) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown duplicate policy %q", in.DuplicatePolicy), nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "feedback aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		lec, err := a.deps.Lectures.GetByID(dbc, in.LectureID)
		if err != nil {
			return err
		}
		if lec == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("lecture not found: %s", in.LectureID), nil)
		}
		res, err := addSuggestionsTx(dbc, op, a.deps.Suggestions, a.deps.Base.CASGuard, lec, in)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// addSuggestionsTx snapshots originalText from lec and applies the
// duplicate policy against suggestions already pending on the same sections.
func addSuggestionsTx(dbc dbctx.Context, op string, suggestions repos.SuggestionRepo, cas CASGuard, lec *types.Lecture, in domainagg.AddSuggestionsInput) (domainagg.AddSuggestionsResult, error) {
	out := domainagg.AddSuggestionsResult{Suggestions: []*types.Suggestion{}}
	if !lec.IsCurrent {
		return out, domainagg.NewError(domainagg.CodeInvalidTarget, op, fmt.Sprintf("lecture %s is not the current version", lec.ID), nil)
	}
	if len(in.Entries) == 0 {
		return out, nil
	}

	sectionIDs := make([]uuid.UUID, 0, len(in.Entries))
	for _, e := range in.Entries {
		if lec.SectionByID(e.SectionID) == nil {
			return out, domainagg.NewError(domainagg.CodeInvalidTarget, op, fmt.Sprintf("section %s not in lecture %s", e.SectionID, lec.ID), nil)
		}
		sectionIDs = append(sectionIDs, e.SectionID)
	}

	existing, err := suggestions.List(dbc, repos.SuggestionFilter{
		LectureID:  &lec.ID,
		SectionIDs: sectionIDs,
		Status:     types.SuggestionPending,
	})
	if err != nil {
		return out, err
	}
	pendingBySection := map[uuid.UUID][]*types.Suggestion{}
	for _, s := range existing {
		pendingBySection[s.SectionID] = append(pendingBySection[s.SectionID], s)
	}

	policy := in.DuplicatePolicy
	if policy == "" {
		policy = domainagg.DuplicateAllow
	}

	seen := map[uuid.UUID]bool{}
	rows := make([]*types.Suggestion, 0, len(in.Entries))
	for _, e := range in.Entries {
		inBatch := seen[e.SectionID]
		dup := inBatch || len(pendingBySection[e.SectionID]) > 0
		if dup {
			out.Duplicates = appendUnique(out.Duplicates, e.SectionID)
		}
		if (policy == domainagg.DuplicateSkip && dup) || (policy == domainagg.DuplicateSupersede && inBatch) {
			out.Skipped = appendUnique(out.Skipped, e.SectionID)
			continue
		}
		seen[e.SectionID] = true
		rows = append(rows, &types.Suggestion{
			ID:              uuid.New(),
			LectureID:       lec.ID,
			SectionID:       e.SectionID,
			OriginalText:    lec.SectionByID(e.SectionID).Text,
			SuggestedText:   e.SuggestedText,
			Status:          types.SuggestionPending,
			GenerationRunID: in.GenerationRunID,
		})
	}

	created, err := suggestions.Create(dbc, rows)
	if err != nil {
		return out, err
	}
	out.Suggestions = created

	if policy == domainagg.DuplicateSupersede {
		now := time.Now().UTC()
		for _, s := range created {
			for _, old := range pendingBySection[s.SectionID] {
				ok, err := cas.UpdateByStatus(dbc, types.Suggestion{}.TableName(), old.ID, []string{string(types.SuggestionPending)}, map[string]any{
					"status":           string(types.SuggestionRejected),
					"superseded_by_id": s.ID,
					"resolved_at":      now,
				})
				if err != nil {
					return out, err
				}
				if !ok {
					return out, ConflictError(fmt.Sprintf("suggestion %s resolved during regeneration", old.ID))
				}
				out.Superseded = append(out.Superseded, old.ID)
			}
		}
	}
	return out, nil
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

func (a *feedbackAggregate) SetSuggestionStatus(ctx context.Context, id uuid.UUID, status types.SuggestionStatus) (*types.Suggestion, error) {
	const op = "Feedback.SetSuggestionStatus"
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing suggestion id", nil)
	}
	if !status.Terminal() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("target status must be accepted or rejected, got %q", status), nil)
	}
	if !a.configured() {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "feedback aggregate repos not configured", nil)
	}

	var out *types.Suggestion
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.transitions.lockPending(dbc, op, id)
		if err != nil {
			return err
		}
		if err := a.transitions.resolve(dbc, op, s, status, nil); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

func (a *feedbackAggregate) MarkReactionsAddressed(ctx context.Context, lectureID, sectionID uuid.UUID) (int64, error) {
	const op = "Feedback.MarkReactionsAddressed"
	if lectureID == uuid.Nil || sectionID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing lecture or section id", nil)
	}
	if !a.configured() {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "feedback aggregate repos not configured", nil)
	}
	var n int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var err error
		n, err = a.deps.Reactions.MarkAddressed(dbc, lectureID, sectionID)
		return err
	})
	return n, err
}

// suggestionTransitions holds the tx-scoped suggestion state changes shared
// by the feedback and resolution aggregates.
type suggestionTransitions struct {
	suggestions repos.SuggestionRepo
	reactions   repos.ReactionRepo
	cas         CASGuard
}

func (t suggestionTransitions) lockPending(dbc dbctx.Context, op string, id uuid.UUID) (*types.Suggestion, error) {
	s, err := t.suggestions.LockByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("suggestion not found: %s", id), nil)
	}
	if err := RequireStatusAllowed(op, string(s.Status), string(types.SuggestionPending)); err != nil {
		return nil, err
	}
	return s, nil
}

// resolve moves s from pending to status with a status-guarded update and
// mirrors the change onto s.
func (t suggestionTransitions) resolve(dbc dbctx.Context, op string, s *types.Suggestion, status types.SuggestionStatus, resultLectureID *uuid.UUID) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":      string(status),
		"resolved_at": now,
	}
	if resultLectureID != nil {
		updates["result_lecture_id"] = *resultLectureID
	}
	ok, err := t.cas.UpdateByStatus(dbc, types.Suggestion{}.TableName(), s.ID, []string{string(types.SuggestionPending)}, updates)
	if err != nil {
		return err
	}
	if !ok {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("suggestion %s is no longer pending", s.ID), nil)
	}
	s.Status = status
	s.ResolvedAt = &now
	s.ResultLectureID = resultLectureID
	return nil
}

func (t suggestionTransitions) markAddressed(dbc dbctx.Context, s *types.Suggestion) (int64, error) {
	return t.reactions.MarkAddressed(dbc, s.LectureID, s.SectionID)
}
