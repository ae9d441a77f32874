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

// LectureHeadRepo maintains the baseLectureId -> current version index.
// Version bumps go through the aggregate CAS guard, not this repo.
type LectureHeadRepo interface {
	Create(dbc dbctx.Context, head *types.LectureHead) error
	GetByID(dbc dbctx.Context, baseID uuid.UUID) (*types.LectureHead, error)
	LockByID(dbc dbctx.Context, baseID uuid.UUID) (*types.LectureHead, error)
}

type lectureHeadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureHeadRepo(db *gorm.DB, baseLog *logger.Logger) LectureHeadRepo {
	return &lectureHeadRepo{
		db:  db,
		log: baseLog.With("repo", "LectureHeadRepo"),
	}
}

func (r *lectureHeadRepo) Create(dbc dbctx.Context, head *types.LectureHead) error {
	if head == nil {
		return nil
	}
	if head.UpdatedAt.IsZero() {
		head.UpdatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(head).Error
}

func (r *lectureHeadRepo) GetByID(dbc dbctx.Context, baseID uuid.UUID) (*types.LectureHead, error) {
	return r.get(dbc.DB(r.db), baseID)
}

// LockByID reads the head row with FOR UPDATE. SQLite ignores the clause;
// its single writer connection gives the same exclusion.
func (r *lectureHeadRepo) LockByID(dbc dbctx.Context, baseID uuid.UUID) (*types.LectureHead, error) {
	return r.get(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), baseID)
}

func (r *lectureHeadRepo) get(q *gorm.DB, baseID uuid.UUID) (*types.LectureHead, error) {
	if baseID == uuid.Nil {
		return nil, nil
	}
	var out []*types.LectureHead
	if err := q.Where("id = ?", baseID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
