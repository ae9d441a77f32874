package lectures

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

type LectureRepo interface {
	Create(dbc dbctx.Context, lecture *types.Lecture) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lecture, error)
	GetCurrentByBase(dbc dbctx.Context, baseID uuid.UUID) (*types.Lecture, error)
	ListByBase(dbc dbctx.Context, baseID uuid.UUID) ([]*types.Lecture, error)
	ListByTeacher(dbc dbctx.Context, teacherID string) ([]*types.Lecture, error)
	ListCurrentByCourses(dbc dbctx.Context, courseIDs []string) ([]*types.Lecture, error)
	CountCurrentByBase(dbc dbctx.Context, baseID uuid.UUID) (int64, error)
	ClearCurrent(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	return &lectureRepo{
		db:  db,
		log: baseLog.With("repo", "LectureRepo"),
	}
}

// Create inserts the lecture row only; sections go through SectionRepo.
func (r *lectureRepo) Create(dbc dbctx.Context, lecture *types.Lecture) error {
	if lecture == nil {
		return nil
	}
	if lecture.ID == uuid.Nil {
		lecture.ID = uuid.New()
	}
	if lecture.CreatedAt.IsZero() {
		lecture.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Omit(clause.Associations).Create(lecture).Error
}

func (r *lectureRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Lecture
	if err := withSections(dbc.DB(r.db)).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *lectureRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lecture, error) {
	var out []*types.Lecture
	if len(ids) == 0 {
		return out, nil
	}
	if err := withSections(dbc.DB(r.db)).
		Where("id IN ?", ids).
		Order("base_lecture_id ASC, version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) GetCurrentByBase(dbc dbctx.Context, baseID uuid.UUID) (*types.Lecture, error) {
	if baseID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Lecture
	if err := withSections(dbc.DB(r.db)).
		Where("base_lecture_id = ? AND is_current = ?", baseID, true).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *lectureRepo) ListByBase(dbc dbctx.Context, baseID uuid.UUID) ([]*types.Lecture, error) {
	var out []*types.Lecture
	if baseID == uuid.Nil {
		return out, nil
	}
	if err := withSections(dbc.DB(r.db)).
		Where("base_lecture_id = ?", baseID).
		Order("version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) ListByTeacher(dbc dbctx.Context, teacherID string) ([]*types.Lecture, error) {
	var out []*types.Lecture
	if teacherID == "" {
		return out, nil
	}
	if err := withSections(dbc.DB(r.db)).
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC, version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) ListCurrentByCourses(dbc dbctx.Context, courseIDs []string) ([]*types.Lecture, error) {
	var out []*types.Lecture
	if len(courseIDs) == 0 {
		return out, nil
	}
	if err := withSections(dbc.DB(r.db)).
		Where("course_id IN ? AND is_current = ?", courseIDs, true).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRepo) CountCurrentByBase(dbc dbctx.Context, baseID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.Lecture{}).
		Where("base_lecture_id = ? AND is_current = ?", baseID, true).
		Count(&n).Error
	return n, err
}

// ClearCurrent flips is_current to false only if it is still true.
// It is the one update ever applied to a stored lecture.
func (r *lectureRepo) ClearCurrent(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Lecture{}).
		Where("id = ? AND is_current = ?", id, true).
		Update("is_current", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func withSections(q *gorm.DB) *gorm.DB {
	return q.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
