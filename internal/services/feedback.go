package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

// ReactionQuery filters ListReactions. Nil / empty fields do not filter.
type ReactionQuery struct {
	LectureID *uuid.UUID
	UserID    string
	Addressed *bool
}

// SuggestionQuery filters ListSuggestions.
type SuggestionQuery struct {
	LectureID *uuid.UUID
	Status    types.SuggestionStatus
}

// FeedbackService is the Feedback Store.
type FeedbackService interface {
	AddReaction(ctx context.Context, in domainagg.AddReactionInput) (*types.Reaction, error)
	AddSuggestions(ctx context.Context, in domainagg.AddSuggestionsInput) (domainagg.AddSuggestionsResult, error)
	GetSuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, error)
	SetSuggestionStatus(ctx context.Context, id uuid.UUID, status types.SuggestionStatus) (*types.Suggestion, error)
	MarkReactionsAddressed(ctx context.Context, lectureID, sectionID uuid.UUID) (int64, error)
	ListReactions(ctx context.Context, q ReactionQuery) ([]*types.Reaction, error)
	ListSuggestions(ctx context.Context, q SuggestionQuery) ([]*types.Suggestion, error)
	Enroll(ctx context.Context, userID, courseID string) (*types.Enrollment, error)
}

type feedbackService struct {
	log         *logger.Logger
	lectures    repos.LectureRepo
	reactions   repos.ReactionRepo
	suggestions repos.SuggestionRepo
	enrollments repos.EnrollmentRepo
	aggregate   domainagg.FeedbackAggregate
	notify      LectureNotifier
}

func NewFeedbackService(
	baseLog *logger.Logger,
	lectureRepo repos.LectureRepo,
	reactionRepo repos.ReactionRepo,
	suggestionRepo repos.SuggestionRepo,
	enrollmentRepo repos.EnrollmentRepo,
	aggregate domainagg.FeedbackAggregate,
	notify LectureNotifier,
) FeedbackService {
	return &feedbackService{
		log:         baseLog.With("service", "FeedbackService"),
		lectures:    lectureRepo,
		reactions:   reactionRepo,
		suggestions: suggestionRepo,
		enrollments: enrollmentRepo,
		aggregate:   aggregate,
		notify:      notify,
	}
}

func (s *feedbackService) AddReaction(ctx context.Context, in domainagg.AddReactionInput) (*types.Reaction, error) {
	r, err := s.aggregate.AddReaction(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Debug("reaction added", "reaction_id", r.ID, "lecture_id", r.LectureID, "section_id", r.SectionID, "user_id", r.UserID)
	if s.notify != nil {
		if lec, lerr := s.lectures.GetByID(dbctx.Context{Ctx: ctx}, r.LectureID); lerr == nil {
			s.notify.ReactionCreated(lec, r)
		}
	}
	return r, nil
}

func (s *feedbackService) AddSuggestions(ctx context.Context, in domainagg.AddSuggestionsInput) (domainagg.AddSuggestionsResult, error) {
	return s.aggregate.AddSuggestions(ctx, in)
}

func (s *feedbackService) GetSuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	const op = "Feedback.GetSuggestion"
	sug, err := s.suggestions.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if sug == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "suggestion not found: %s", id)
	}
	return sug, nil
}

func (s *feedbackService) SetSuggestionStatus(ctx context.Context, id uuid.UUID, status types.SuggestionStatus) (*types.Suggestion, error) {
	return s.aggregate.SetSuggestionStatus(ctx, id, status)
}

func (s *feedbackService) MarkReactionsAddressed(ctx context.Context, lectureID, sectionID uuid.UUID) (int64, error) {
	return s.aggregate.MarkReactionsAddressed(ctx, lectureID, sectionID)
}

func (s *feedbackService) ListReactions(ctx context.Context, q ReactionQuery) ([]*types.Reaction, error) {
	const op = "Feedback.ListReactions"
	out, err := s.reactions.List(dbctx.Context{Ctx: ctx}, repos.ReactionFilter{
		LectureID: q.LectureID,
		UserID:    strings.TrimSpace(q.UserID),
		Addressed: q.Addressed,
	})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}

func (s *feedbackService) ListSuggestions(ctx context.Context, q SuggestionQuery) ([]*types.Suggestion, error) {
	const op = "Feedback.ListSuggestions"
	if q.Status != "" && !q.Status.Valid() {
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "unknown suggestion status %q", q.Status)
	}
	out, err := s.suggestions.List(dbctx.Context{Ctx: ctx}, repos.SuggestionFilter{
		LectureID: q.LectureID,
		Status:    q.Status,
	})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}

func (s *feedbackService) Enroll(ctx context.Context, userID, courseID string) (*types.Enrollment, error) {
	const op = "Feedback.Enroll"
	userID, courseID = strings.TrimSpace(userID), strings.TrimSpace(courseID)
	if userID == "" || courseID == "" {
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "userId and courseId are required")
	}
	e := &types.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.enrollments.Upsert(dbctx.Context{Ctx: ctx}, e); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return e, nil
}
