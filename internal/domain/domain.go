package domain

import (
	"github.com/yungbote/lecture-feedback-backend/internal/domain/enrollment"
	"github.com/yungbote/lecture-feedback-backend/internal/domain/feedback"
	"github.com/yungbote/lecture-feedback-backend/internal/domain/lectures"
)

type Lecture = lectures.Lecture
type Section = lectures.Section
type LectureHead = lectures.LectureHead

type Reaction = feedback.Reaction
type ReactionType = feedback.ReactionType
type Suggestion = feedback.Suggestion
type SuggestionStatus = feedback.SuggestionStatus
type GenerationRun = feedback.GenerationRun

type Enrollment = enrollment.Enrollment

const (
	ReactionTypo             = feedback.ReactionTypo
	ReactionConfused         = feedback.ReactionConfused
	ReactionCalculationError = feedback.ReactionCalculationError

	SuggestionPending  = feedback.SuggestionPending
	SuggestionAccepted = feedback.SuggestionAccepted
	SuggestionRejected = feedback.SuggestionRejected
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&Lecture{},
		&Section{},
		&LectureHead{},
		&Reaction{},
		&Suggestion{},
		&GenerationRun{},
		&Enrollment{},
	}
}
