package feedback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

// SuggestionFilter narrows List. Zero fields do not filter.
type SuggestionFilter struct {
	LectureID  *uuid.UUID
	LectureIDs []uuid.UUID
	SectionIDs []uuid.UUID
	Status     types.SuggestionStatus
}

type SuggestionRepo interface {
	Create(dbc dbctx.Context, suggestions []*types.Suggestion) ([]*types.Suggestion, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Suggestion, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Suggestion, error)
	List(dbc dbctx.Context, f SuggestionFilter) ([]*types.Suggestion, error)
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return &suggestionRepo{
		db:  db,
		log: baseLog.With("repo", "SuggestionRepo"),
	}
}

func (r *suggestionRepo) Create(dbc dbctx.Context, suggestions []*types.Suggestion) ([]*types.Suggestion, error) {
	if len(suggestions) == 0 {
		return []*types.Suggestion{}, nil
	}
	for _, s := range suggestions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = nextStamp()
		}
	}
	if err := dbc.DB(r.db).Create(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *suggestionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Suggestion, error) {
	return r.get(dbc.DB(r.db), id)
}

func (r *suggestionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Suggestion, error) {
	return r.get(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *suggestionRepo) get(q *gorm.DB, id uuid.UUID) (*types.Suggestion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Suggestion
	if err := q.Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *suggestionRepo) List(dbc dbctx.Context, f SuggestionFilter) ([]*types.Suggestion, error) {
	q := dbc.DB(r.db).Model(&types.Suggestion{})
	if f.LectureID != nil {
		q = q.Where("lecture_id = ?", *f.LectureID)
	}
	if f.LectureIDs != nil {
		if len(f.LectureIDs) == 0 {
			return []*types.Suggestion{}, nil
		}
		q = q.Where("lecture_id IN ?", f.LectureIDs)
	}
	if f.SectionIDs != nil {
		if len(f.SectionIDs) == 0 {
			return []*types.Suggestion{}, nil
		}
		q = q.Where("section_id IN ?", f.SectionIDs)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []*types.Suggestion
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GenerationRunRepo stores one row per suggestion generation call.
type GenerationRunRepo interface {
	Create(dbc dbctx.Context, run *types.GenerationRun) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationRun, error)
	ListByLecture(dbc dbctx.Context, lectureID uuid.UUID) ([]*types.GenerationRun, error)
}

type generationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRunRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRunRepo {
	return &generationRunRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationRunRepo"),
	}
}

func (r *generationRunRepo) Create(dbc dbctx.Context, run *types.GenerationRun) error {
	if run == nil {
		return nil
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(run).Error
}

func (r *generationRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.GenerationRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *generationRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationRun, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.GenerationRun
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *generationRunRepo) ListByLecture(dbc dbctx.Context, lectureID uuid.UUID) ([]*types.GenerationRun, error) {
	var out []*types.GenerationRun
	if lectureID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("lecture_id = ?", lectureID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
