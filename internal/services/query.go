package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

type LectureListItem struct {
	ID            uuid.UUID `json:"id"`
	BaseLectureID uuid.UUID `json:"baseLectureId"`
	Version       int       `json:"version"`
	IsCurrent     bool      `json:"isCurrent"`
	Title         string    `json:"title"`
	TeacherID     string    `json:"teacherId"`
	CourseID      string    `json:"courseId"`
	CreatedAt     time.Time `json:"createdAt"`
}

func listItem(l *types.Lecture) LectureListItem {
	return LectureListItem{
		ID:            l.ID,
		BaseLectureID: l.BaseLectureID,
		Version:       l.Version,
		IsCurrent:     l.IsCurrent,
		Title:         l.Title,
		TeacherID:     l.TeacherID,
		CourseID:      l.CourseID,
		CreatedAt:     l.CreatedAt,
	}
}

// LectureGroup is every version of one base lecture, oldest first.
type LectureGroup struct {
	BaseLectureID uuid.UUID         `json:"baseLectureId"`
	Title         string            `json:"title"`
	CourseID      string            `json:"courseId"`
	Current       *LectureListItem  `json:"current"`
	Versions      []LectureListItem `json:"versions"`
}

type TeacherComments struct {
	Reactions   []*types.Reaction   `json:"reactions"`
	Suggestions []*types.Suggestion `json:"suggestions"`
}

// OpenFeedback holds the unaddressed reactions and pending suggestions of
// one lecture version.
type OpenFeedback struct {
	Lecture     LectureListItem     `json:"lecture"`
	Reactions   []*types.Reaction   `json:"reactions"`
	Suggestions []*types.Suggestion `json:"suggestions"`
}

// QueryService serves the read-side projections. Nothing here writes.
type QueryService interface {
	RecentLecturesForStudent(ctx context.Context, userID string) ([]LectureListItem, error)
	AllLecturesForTeacher(ctx context.Context, teacherID string) ([]LectureListItem, error)
	GroupedLecturesForTeacher(ctx context.Context, teacherID string) ([]LectureGroup, error)
	CommentsForTeacher(ctx context.Context, teacherID string, lectureID uuid.UUID) (*TeacherComments, error)
	CommentsForStudent(ctx context.Context, userID string, lectureID uuid.UUID) ([]*types.Reaction, error)
	OpenFeedbackForTeacher(ctx context.Context, teacherID string) ([]OpenFeedback, error)
}

type queryService struct {
	log         *logger.Logger
	lectures    repos.LectureRepo
	reactions   repos.ReactionRepo
	suggestions repos.SuggestionRepo
	enrollments repos.EnrollmentRepo
}

func NewQueryService(
	baseLog *logger.Logger,
	lectureRepo repos.LectureRepo,
	reactionRepo repos.ReactionRepo,
	suggestionRepo repos.SuggestionRepo,
	enrollmentRepo repos.EnrollmentRepo,
) QueryService {
	return &queryService{
		log:         baseLog.With("service", "QueryService"),
		lectures:    lectureRepo,
		reactions:   reactionRepo,
		suggestions: suggestionRepo,
		enrollments: enrollmentRepo,
	}
}

func requireID(op, field, v string) error {
	if strings.TrimSpace(v) == "" {
		return domainagg.Errorf(domainagg.CodeValidation, op, "missing %s", field)
	}
	return nil
}

// RecentLecturesForStudent returns the current version of every lecture in
// the student's enrolled courses plus every version they reacted on, newest
// first.
func (s *queryService) RecentLecturesForStudent(ctx context.Context, userID string) ([]LectureListItem, error) {
	const op = "Query.RecentLecturesForStudent"
	if err := requireID(op, "user id", userID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}

	courseIDs, err := s.enrollments.ListCourseIDsByUser(dbc, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	current, err := s.lectures.ListCurrentByCourses(dbc, courseIDs)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	reactedIDs, err := s.reactions.ListLectureIDsByUser(dbc, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	reacted, err := s.lectures.GetByIDs(dbc, reactedIDs)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	seen := map[uuid.UUID]bool{}
	out := make([]LectureListItem, 0, len(current)+len(reacted))
	for _, group := range [][]*types.Lecture{current, reacted} {
		for _, l := range group {
			if l == nil || seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			out = append(out, listItem(l))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Version > out[j].Version
	})
	return out, nil
}

func (s *queryService) AllLecturesForTeacher(ctx context.Context, teacherID string) ([]LectureListItem, error) {
	const op = "Query.AllLecturesForTeacher"
	if err := requireID(op, "teacher id", teacherID); err != nil {
		return nil, err
	}
	rows, err := s.lectures.ListByTeacher(dbctx.Context{Ctx: ctx}, teacherID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	out := make([]LectureListItem, 0, len(rows))
	for _, l := range rows {
		out = append(out, listItem(l))
	}
	return out, nil
}

func (s *queryService) GroupedLecturesForTeacher(ctx context.Context, teacherID string) ([]LectureGroup, error) {
	all, err := s.AllLecturesForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	index := map[uuid.UUID]int{}
	out := []LectureGroup{}
	for _, item := range all {
		i, ok := index[item.BaseLectureID]
		if !ok {
			i = len(out)
			index[item.BaseLectureID] = i
			out = append(out, LectureGroup{BaseLectureID: item.BaseLectureID, CourseID: item.CourseID})
		}
		out[i].Versions = append(out[i].Versions, item)
	}
	for i := range out {
		g := &out[i]
		sort.SliceStable(g.Versions, func(a, b int) bool { return g.Versions[a].Version < g.Versions[b].Version })
		g.Title = g.Versions[len(g.Versions)-1].Title
		for j := range g.Versions {
			if g.Versions[j].IsCurrent {
				cur := g.Versions[j]
				g.Current = &cur
				g.Title = cur.Title
			}
		}
	}
	return out, nil
}

// CommentsForTeacher reports a lecture owned by someone else as not found.
func (s *queryService) CommentsForTeacher(ctx context.Context, teacherID string, lectureID uuid.UUID) (*TeacherComments, error) {
	const op = "Query.CommentsForTeacher"
	if err := requireID(op, "teacher id", teacherID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	lec, err := s.lectures.GetByID(dbc, lectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if lec == nil || lec.TeacherID != teacherID {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "lecture not found: %s", lectureID)
	}
	reactions, err := s.reactions.List(dbc, repos.ReactionFilter{LectureID: &lec.ID})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	suggestions, err := s.suggestions.List(dbc, repos.SuggestionFilter{LectureID: &lec.ID})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return &TeacherComments{Reactions: reactions, Suggestions: suggestions}, nil
}

func (s *queryService) CommentsForStudent(ctx context.Context, userID string, lectureID uuid.UUID) ([]*types.Reaction, error) {
	const op = "Query.CommentsForStudent"
	if err := requireID(op, "user id", userID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	lec, err := s.lectures.GetByID(dbc, lectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if lec == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "lecture not found: %s", lectureID)
	}
	out, err := s.reactions.List(dbc, repos.ReactionFilter{LectureID: &lec.ID, UserID: userID})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}

// OpenFeedbackForTeacher lists, per lecture version, what still awaits a
// teacher decision. Versions with nothing open are omitted.
func (s *queryService) OpenFeedbackForTeacher(ctx context.Context, teacherID string) ([]OpenFeedback, error) {
	const op = "Query.OpenFeedbackForTeacher"
	if err := requireID(op, "teacher id", teacherID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	lectures, err := s.lectures.ListByTeacher(dbc, teacherID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	out := []OpenFeedback{}
	if len(lectures) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(lectures))
	for _, l := range lectures {
		ids = append(ids, l.ID)
	}

	open := false
	reactions, err := s.reactions.List(dbc, repos.ReactionFilter{LectureIDs: ids, Addressed: &open})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	pending, err := s.suggestions.List(dbc, repos.SuggestionFilter{LectureIDs: ids, Status: types.SuggestionPending})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	reactionsBy := map[uuid.UUID][]*types.Reaction{}
	for _, r := range reactions {
		reactionsBy[r.LectureID] = append(reactionsBy[r.LectureID], r)
	}
	pendingBy := map[uuid.UUID][]*types.Suggestion{}
	for _, p := range pending {
		pendingBy[p.LectureID] = append(pendingBy[p.LectureID], p)
	}

	for _, l := range lectures {
		rs, ps := reactionsBy[l.ID], pendingBy[l.ID]
		if len(rs) == 0 && len(ps) == 0 {
			continue
		}
		if rs == nil {
			rs = []*types.Reaction{}
		}
		if ps == nil {
			ps = []*types.Suggestion{}
		}
		out = append(out, OpenFeedback{Lecture: listItem(l), Reactions: rs, Suggestions: ps})
	}
	return out, nil
}
