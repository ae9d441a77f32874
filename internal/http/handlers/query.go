package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-feedback-backend/internal/http/response"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type QueryHandler struct {
	log   *logger.Logger
	query services.QueryService
}

func NewQueryHandler(log *logger.Logger, query services.QueryService) *QueryHandler {
	return &QueryHandler{
		log:   log.With("handler", "QueryHandler"),
		query: query,
	}
}

// GET /api/student/:userId/lectures/recent
func (h *QueryHandler) StudentRecentLectures(c *gin.Context) {
	out, err := h.query.RecentLecturesForStudent(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lectures": out})
}

// GET /api/student/:userId/lectures/:lectureId/comments
func (h *QueryHandler) StudentComments(c *gin.Context) {
	lectureID, ok := uuidParam(c, "lectureId")
	if !ok {
		return
	}
	out, err := h.query.CommentsForStudent(c.Request.Context(), c.Param("userId"), lectureID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reactions": out})
}

// GET /api/teacher/:teacherId/lectures
func (h *QueryHandler) TeacherLectures(c *gin.Context) {
	out, err := h.query.AllLecturesForTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lectures": out})
}

// GET /api/teacher/:teacherId/lectures/grouped
func (h *QueryHandler) TeacherGroupedLectures(c *gin.Context) {
	out, err := h.query.GroupedLecturesForTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"groups": out})
}

// GET /api/teacher/:teacherId/feedback/open
func (h *QueryHandler) TeacherOpenFeedback(c *gin.Context) {
	out, err := h.query.OpenFeedbackForTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lectures": out})
}

// GET /api/teacher/:teacherId/lectures/:lectureId/comments
func (h *QueryHandler) TeacherComments(c *gin.Context) {
	lectureID, ok := uuidParam(c, "lectureId")
	if !ok {
		return
	}
	out, err := h.query.CommentsForTeacher(c.Request.Context(), c.Param("teacherId"), lectureID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, out)
}
