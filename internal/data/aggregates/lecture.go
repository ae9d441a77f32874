package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

type LectureAggregateDeps struct {
	Base BaseDeps

	Lectures repos.LectureRepo
	Sections repos.SectionRepo
	Heads    repos.LectureHeadRepo
}

type lectureAggregate struct {
	deps   LectureAggregateDeps
	forker versionForker
}

func NewLectureAggregate(deps LectureAggregateDeps) domainagg.LectureAggregate {
	deps.Base = deps.Base.withDefaults()
	return &lectureAggregate{
		deps: deps,
		forker: versionForker{
			lectures: deps.Lectures,
			sections: deps.Sections,
			heads:    deps.Heads,
			cas:      deps.Base.CASGuard,
		},
	}
}

func (a *lectureAggregate) Contract() domainagg.Contract {
	return domainagg.LectureAggregateContract
}

func (a *lectureAggregate) CreateInitial(ctx context.Context, in domainagg.CreateLectureInput) (*types.Lecture, error) {
	const op = "Content.Lecture.CreateInitial"
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	if a.deps.Lectures == nil || a.deps.Sections == nil || a.deps.Heads == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "lecture aggregate repos not configured", nil)
	}

	var out *types.Lecture
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		now := time.Now().UTC()
		id := uuid.New()
		lec := &types.Lecture{
			ID:            id,
			BaseLectureID: id,
			Version:       1,
			IsCurrent:     true,
			Title:         in.Title,
			TeacherID:     in.TeacherID,
			CourseID:      in.CourseID,
			CreatedAt:     now,
		}
		if err := a.deps.Lectures.Create(dbc, lec); err != nil {
			return err
		}
		sections := make([]types.Section, 0, len(in.Sections))
		for i, text := range in.Sections {
			sections = append(sections, types.Section{
				LectureID: id,
				ID:        uuid.New(),
				Order:     i + 1,
				Text:      text,
			})
		}
		if err := a.deps.Sections.Create(dbc, sections); err != nil {
			return err
		}
		if err := a.deps.Heads.Create(dbc, &types.LectureHead{
			ID:        id,
			Version:   1,
			LectureID: id,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		lec.Sections = sections
		out = lec
		return nil
	})
	return out, err
}

func (a *lectureAggregate) Fork(ctx context.Context, in domainagg.ForkLectureInput) (*types.Lecture, error) {
	const op = "Content.Lecture.Fork"
	if in.ParentLectureID == uuid.Nil || in.SectionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing parent lecture or section id", nil)
	}
	if a.deps.Lectures == nil || a.deps.Sections == nil || a.deps.Heads == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "lecture aggregate repos not configured", nil)
	}

	var out *types.Lecture
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		parent, err := a.deps.Lectures.GetByID(dbc, in.ParentLectureID)
		if err != nil {
			return err
		}
		if parent == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("lecture not found: %s", in.ParentLectureID), nil)
		}
		out, err = a.forker.fork(dbc, op, parent, in.SectionID, in.NewText)
		return err
	})
	return out, err
}

// versionForker is the one place new lecture versions are produced. It must
// run inside the caller's transaction.
type versionForker struct {
	lectures repos.LectureRepo
	sections repos.SectionRepo
	heads    repos.LectureHeadRepo
	cas      CASGuard
}

// fork writes parent.Version+1 with sectionID's text replaced, moves the
// head to it and clears parent.IsCurrent last. parent must be loaded with
// its sections. A parent that is no longer the head is a conflict.
func (f versionForker) fork(dbc dbctx.Context, op string, parent *types.Lecture, sectionID uuid.UUID, newText string) (*types.Lecture, error) {
	head, err := f.heads.LockByID(dbc, parent.BaseLectureID)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return nil, InvariantError(fmt.Sprintf("lecture_head missing for base %s", parent.BaseLectureID))
	}
	if head.LectureID != parent.ID || !parent.IsCurrent {
		return nil, ConflictError(fmt.Sprintf("lecture %s is not the current version of %s", parent.ID, parent.BaseLectureID))
	}
	if err := RequireVersionMatch(head.Version, parent.Version); err != nil {
		return nil, err
	}
	if parent.SectionByID(sectionID) == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("section %s not found in lecture %s", sectionID, parent.ID), nil)
	}

	now := time.Now().UTC()
	child := &types.Lecture{
		ID:            uuid.New(),
		BaseLectureID: parent.BaseLectureID,
		Version:       parent.Version + 1,
		IsCurrent:     true,
		Title:         parent.Title,
		TeacherID:     parent.TeacherID,
		CourseID:      parent.CourseID,
		CreatedAt:     now,
	}
	if err := f.lectures.Create(dbc, child); err != nil {
		return nil, err
	}
	sections := make([]types.Section, 0, len(parent.Sections))
	for _, s := range parent.Sections {
		s.LectureID = child.ID
		if s.ID == sectionID {
			s.Text = newText
		}
		sections = append(sections, s)
	}
	if err := f.sections.Create(dbc, sections); err != nil {
		return nil, err
	}
	child.Sections = sections

	ok, err := f.cas.UpdateByVersion(dbc, types.LectureHead{}.TableName(), parent.BaseLectureID, parent.Version, map[string]any{
		"version":    child.Version,
		"lecture_id": child.ID,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if err := RequireCASSuccess(ok, "lecture_head moved during fork"); err != nil {
		return nil, err
	}

	cleared, err := f.lectures.ClearCurrent(dbc, parent.ID)
	if err != nil {
		return nil, err
	}
	if !cleared {
		return nil, ConflictError(fmt.Sprintf("lecture %s was already superseded", parent.ID))
	}
	parent.IsCurrent = false
	return child, nil
}
