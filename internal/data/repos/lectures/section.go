package lectures

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

type SectionRepo interface {
	Create(dbc dbctx.Context, sections []types.Section) error
	ListByLecture(dbc dbctx.Context, lectureID uuid.UUID) ([]types.Section, error)
	Get(dbc dbctx.Context, lectureID, sectionID uuid.UUID) (*types.Section, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{
		db:  db,
		log: baseLog.With("repo", "SectionRepo"),
	}
}

func (r *sectionRepo) Create(dbc dbctx.Context, sections []types.Section) error {
	if len(sections) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&sections).Error
}

func (r *sectionRepo) ListByLecture(dbc dbctx.Context, lectureID uuid.UUID) ([]types.Section, error) {
	var out []types.Section
	if lectureID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("lecture_id = ?", lectureID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) Get(dbc dbctx.Context, lectureID, sectionID uuid.UUID) (*types.Section, error) {
	if lectureID == uuid.Nil || sectionID == uuid.Nil {
		return nil, nil
	}
	var out []types.Section
	if err := dbc.DB(r.db).
		Where("lecture_id = ? AND id = ?", lectureID, sectionID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
