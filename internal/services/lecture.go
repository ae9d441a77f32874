package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

// LectureService is the Content Store: version chain writes go through the
// lecture aggregate, reads hit the repos directly.
type LectureService interface {
	CreateInitialLecture(ctx context.Context, in domainagg.CreateLectureInput) (*types.Lecture, error)
	GetVersion(ctx context.Context, lectureID uuid.UUID) (*types.Lecture, error)
	GetCurrent(ctx context.Context, baseLectureID uuid.UUID) (*types.Lecture, error)
	ListVersions(ctx context.Context, baseLectureID uuid.UUID) ([]*types.Lecture, error)
	ForkVersion(ctx context.Context, in domainagg.ForkLectureInput) (*types.Lecture, error)
}

type lectureService struct {
	log       *logger.Logger
	lectures  repos.LectureRepo
	aggregate domainagg.LectureAggregate
	notify    LectureNotifier
}

func NewLectureService(
	baseLog *logger.Logger,
	lectureRepo repos.LectureRepo,
	aggregate domainagg.LectureAggregate,
	notify LectureNotifier,
) LectureService {
	return &lectureService{
		log:       baseLog.With("service", "LectureService"),
		lectures:  lectureRepo,
		aggregate: aggregate,
		notify:    notify,
	}
}

func (s *lectureService) CreateInitialLecture(ctx context.Context, in domainagg.CreateLectureInput) (*types.Lecture, error) {
	lec, err := s.aggregate.CreateInitial(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("lecture created", "lecture_id", lec.ID, "teacher_id", lec.TeacherID, "sections", len(lec.Sections))
	return lec, nil
}

func (s *lectureService) GetVersion(ctx context.Context, lectureID uuid.UUID) (*types.Lecture, error) {
	const op = "Lecture.GetVersion"
	lec, err := s.lectures.GetByID(dbctx.Context{Ctx: ctx}, lectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if lec == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "lecture not found: %s", lectureID)
	}
	return lec, nil
}

func (s *lectureService) GetCurrent(ctx context.Context, baseLectureID uuid.UUID) (*types.Lecture, error) {
	const op = "Lecture.GetCurrent"
	lec, err := s.lectures.GetCurrentByBase(dbctx.Context{Ctx: ctx}, baseLectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if lec == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "base lecture not found: %s", baseLectureID)
	}
	return lec, nil
}

func (s *lectureService) ListVersions(ctx context.Context, baseLectureID uuid.UUID) ([]*types.Lecture, error) {
	const op = "Lecture.ListVersions"
	out, err := s.lectures.ListByBase(dbctx.Context{Ctx: ctx}, baseLectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if len(out) == 0 {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "base lecture not found: %s", baseLectureID)
	}
	return out, nil
}

func (s *lectureService) ForkVersion(ctx context.Context, in domainagg.ForkLectureInput) (*types.Lecture, error) {
	lec, err := s.aggregate.Fork(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("lecture version forked", "lecture_id", lec.ID, "version", lec.Version, "parent_id", in.ParentLectureID)
	if s.notify != nil {
		s.notify.LectureVersionCreated(lec, in.ParentLectureID)
	}
	return lec, nil
}
