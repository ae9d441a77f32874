package enrollment

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

type EnrollmentRepo interface {
	Upsert(dbc dbctx.Context, e *types.Enrollment) error
	ListCourseIDsByUser(dbc dbctx.Context, userID string) ([]string, error)
	ListByCourse(dbc dbctx.Context, courseID string) ([]*types.Enrollment, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{
		db:  db,
		log: baseLog.With("repo", "EnrollmentRepo"),
	}
}

// Upsert enrolls the user; enrolling twice is a no-op.
func (r *enrollmentRepo) Upsert(dbc dbctx.Context, e *types.Enrollment) error {
	if e == nil || e.UserID == "" || e.CourseID == "" {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(e).Error
}

func (r *enrollmentRepo) ListCourseIDsByUser(dbc dbctx.Context, userID string) ([]string, error) {
	var out []string
	if userID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.Enrollment{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("course_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) ListByCourse(dbc dbctx.Context, courseID string) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	if courseID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
