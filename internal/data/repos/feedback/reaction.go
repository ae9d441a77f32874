package feedback

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

// ReactionFilter narrows List. Zero fields do not filter.
type ReactionFilter struct {
	LectureID  *uuid.UUID
	LectureIDs []uuid.UUID
	SectionID  *uuid.UUID
	UserID     string
	Addressed  *bool
}

type ReactionRepo interface {
	Create(dbc dbctx.Context, reaction *types.Reaction) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Reaction, error)
	List(dbc dbctx.Context, f ReactionFilter) ([]*types.Reaction, error)
	MarkAddressed(dbc dbctx.Context, lectureID, sectionID uuid.UUID) (int64, error)
	CountUnaddressedBySection(dbc dbctx.Context, lectureID uuid.UUID) (map[uuid.UUID]int64, error)
	ListLectureIDsByUser(dbc dbctx.Context, userID string) ([]uuid.UUID, error)
}

type reactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReactionRepo(db *gorm.DB, baseLog *logger.Logger) ReactionRepo {
	return &reactionRepo{
		db:  db,
		log: baseLog.With("repo", "ReactionRepo"),
	}
}

func (r *reactionRepo) Create(dbc dbctx.Context, reaction *types.Reaction) error {
	if reaction == nil {
		return nil
	}
	if reaction.ID == uuid.Nil {
		reaction.ID = uuid.New()
	}
	if reaction.CreatedAt.IsZero() {
		reaction.CreatedAt = nextStamp()
	}
	return dbc.DB(r.db).Create(reaction).Error
}

func (r *reactionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Reaction, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Reaction
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *reactionRepo) List(dbc dbctx.Context, f ReactionFilter) ([]*types.Reaction, error) {
	q := dbc.DB(r.db).Model(&types.Reaction{})
	if f.LectureID != nil {
		q = q.Where("lecture_id = ?", *f.LectureID)
	}
	if f.LectureIDs != nil {
		if len(f.LectureIDs) == 0 {
			return []*types.Reaction{}, nil
		}
		q = q.Where("lecture_id IN ?", f.LectureIDs)
	}
	if f.SectionID != nil {
		q = q.Where("section_id = ?", *f.SectionID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Addressed != nil {
		q = q.Where("addressed = ?", *f.Addressed)
	}
	var out []*types.Reaction
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAddressed sets addressed on every open reaction for (lecture, section).
// Already-addressed rows are not touched, so repeat calls return 0.
func (r *reactionRepo) MarkAddressed(dbc dbctx.Context, lectureID, sectionID uuid.UUID) (int64, error) {
	if lectureID == uuid.Nil || sectionID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Reaction{}).
		Where("lecture_id = ? AND section_id = ? AND addressed = ?", lectureID, sectionID, false).
		Update("addressed", true)
	return res.RowsAffected, res.Error
}

func (r *reactionRepo) CountUnaddressedBySection(dbc dbctx.Context, lectureID uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	if lectureID == uuid.Nil {
		return out, nil
	}
	var rows []struct {
		SectionID uuid.UUID
		N         int64
	}
	if err := dbc.DB(r.db).
		Model(&types.Reaction{}).
		Select("section_id, COUNT(*) AS n").
		Where("lecture_id = ? AND addressed = ?", lectureID, false).
		Group("section_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SectionID] = row.N
	}
	return out, nil
}

func (r *reactionRepo) ListLectureIDsByUser(dbc dbctx.Context, userID string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if userID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.Reaction{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("lecture_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
