package lectures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
)

func TestLectureRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	lectures := NewLectureRepo(db, testutil.Logger(t))
	sections := NewSectionRepo(db, testutil.Logger(t))

	v1 := testutil.SeedLecture(t, ctx, tx, "teacher-1", "intro", "body")

	got, err := lectures.GetByID(dbc, v1.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if len(got.Sections) != 2 || got.Sections[0].Text != "intro" || got.Sections[1].Order != 2 {
		t.Fatalf("GetByID sections: %+v", got.Sections)
	}

	if missing, err := lectures.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%v", err, missing)
	}

	v2 := &types.Lecture{
		ID:            uuid.New(),
		BaseLectureID: v1.BaseLectureID,
		Version:       2,
		IsCurrent:     true,
		Title:         v1.Title,
		TeacherID:     v1.TeacherID,
		CourseID:      v1.CourseID,
		CreatedAt:     time.Now().UTC().Add(time.Second),
	}
	if err := lectures.Create(dbc, v2); err != nil {
		t.Fatalf("Create v2: %v", err)
	}
	copied := make([]types.Section, 0, len(v1.Sections))
	for _, s := range v1.Sections {
		s.LectureID = v2.ID
		copied = append(copied, s)
	}
	if err := sections.Create(dbc, copied); err != nil {
		t.Fatalf("Create sections: %v", err)
	}

	ok, err := lectures.ClearCurrent(dbc, v1.ID)
	if err != nil || !ok {
		t.Fatalf("ClearCurrent: ok=%v err=%v", ok, err)
	}
	ok, err = lectures.ClearCurrent(dbc, v1.ID)
	if err != nil || ok {
		t.Fatalf("ClearCurrent twice: want ok=false got ok=%v err=%v", ok, err)
	}

	cur, err := lectures.GetCurrentByBase(dbc, v1.BaseLectureID)
	if err != nil || cur == nil || cur.ID != v2.ID {
		t.Fatalf("GetCurrentByBase: err=%v got=%v", err, cur)
	}
	if cur.Sections[0].ID != v1.Sections[0].ID {
		t.Fatalf("section ids should carry forward: want=%s got=%s", v1.Sections[0].ID, cur.Sections[0].ID)
	}

	n, err := lectures.CountCurrentByBase(dbc, v1.BaseLectureID)
	if err != nil || n != 1 {
		t.Fatalf("CountCurrentByBase: want=1 got=%d err=%v", n, err)
	}

	versions, err := lectures.ListByBase(dbc, v1.BaseLectureID)
	if err != nil || len(versions) != 2 || versions[0].Version != 1 || versions[1].Version != 2 {
		t.Fatalf("ListByBase: err=%v got=%d", err, len(versions))
	}

	byTeacher, err := lectures.ListByTeacher(dbc, "teacher-1")
	if err != nil || len(byTeacher) != 2 {
		t.Fatalf("ListByTeacher: err=%v got=%d", err, len(byTeacher))
	}
	if other, _ := lectures.ListByTeacher(dbc, "teacher-2"); len(other) != 0 {
		t.Fatalf("ListByTeacher other: want=0 got=%d", len(other))
	}

	byCourse, err := lectures.ListCurrentByCourses(dbc, []string{"course-1"})
	if err != nil || len(byCourse) != 1 || byCourse[0].ID != v2.ID {
		t.Fatalf("ListCurrentByCourses: err=%v got=%v", err, byCourse)
	}

	sec, err := sections.Get(dbc, v2.ID, v1.Sections[1].ID)
	if err != nil || sec == nil || sec.Text != "body" {
		t.Fatalf("SectionRepo.Get: err=%v got=%v", err, sec)
	}
}

func TestLectureRepo_DuplicateVersionRejected(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	lectures := NewLectureRepo(db, testutil.Logger(t))

	v1 := testutil.SeedLecture(t, ctx, db, "teacher-1", "only")
	dup := &types.Lecture{
		BaseLectureID: v1.BaseLectureID,
		Version:       1,
		Title:         "dup",
		TeacherID:     "teacher-1",
		CourseID:      "course-1",
	}
	if err := lectures.Create(dbc, dup); err == nil {
		t.Fatalf("expected unique violation on (base_lecture_id, version)")
	}
}

func TestLectureHeadRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	heads := NewLectureHeadRepo(db, testutil.Logger(t))

	v1 := testutil.SeedLecture(t, ctx, tx, "teacher-1", "a")

	h, err := heads.LockByID(dbc, v1.BaseLectureID)
	if err != nil || h == nil {
		t.Fatalf("LockByID: err=%v got=%v", err, h)
	}
	if h.Version != 1 || h.LectureID != v1.ID {
		t.Fatalf("head: %+v", h)
	}
	if missing, err := heads.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%v", err, missing)
	}
}
