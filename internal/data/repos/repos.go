package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos/enrollment"
	"github.com/yungbote/lecture-feedback-backend/internal/data/repos/feedback"
	"github.com/yungbote/lecture-feedback-backend/internal/data/repos/lectures"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

type LectureRepo = lectures.LectureRepo
type SectionRepo = lectures.SectionRepo
type LectureHeadRepo = lectures.LectureHeadRepo

type ReactionRepo = feedback.ReactionRepo
type ReactionFilter = feedback.ReactionFilter
type SuggestionRepo = feedback.SuggestionRepo
type SuggestionFilter = feedback.SuggestionFilter
type GenerationRunRepo = feedback.GenerationRunRepo

type EnrollmentRepo = enrollment.EnrollmentRepo

// Set bundles every table repo over one gorm handle.
type Set struct {
	Lecture       LectureRepo
	Section       SectionRepo
	LectureHead   LectureHeadRepo
	Reaction      ReactionRepo
	Suggestion    SuggestionRepo
	GenerationRun GenerationRunRepo
	Enrollment    EnrollmentRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Lecture:       lectures.NewLectureRepo(db, log),
		Section:       lectures.NewSectionRepo(db, log),
		LectureHead:   lectures.NewLectureHeadRepo(db, log),
		Reaction:      feedback.NewReactionRepo(db, log),
		Suggestion:    feedback.NewSuggestionRepo(db, log),
		GenerationRun: feedback.NewGenerationRunRepo(db, log),
		Enrollment:    enrollment.NewEnrollmentRepo(db, log),
	}
}
