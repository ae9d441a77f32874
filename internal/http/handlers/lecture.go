package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/http/response"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type LectureHandler struct {
	log      *logger.Logger
	lectures services.LectureService
}

func NewLectureHandler(log *logger.Logger, lectures services.LectureService) *LectureHandler {
	return &LectureHandler{
		log:      log.With("handler", "LectureHandler"),
		lectures: lectures,
	}
}

type createLectureRequest struct {
	Title     string   `json:"title" binding:"required"`
	TeacherID string   `json:"teacherId"`
	CourseID  string   `json:"courseId" binding:"required"`
	Sections  []string `json:"sections" binding:"required,min=1"`
}

// POST /api/lectures
func (h *LectureHandler) CreateLecture(c *gin.Context) {
	var req createLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lec, err := h.lectures.CreateInitialLecture(c.Request.Context(), domainagg.CreateLectureInput{
		Title:     req.Title,
		TeacherID: callerOr(c, req.TeacherID),
		CourseID:  req.CourseID,
		Sections:  req.Sections,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lecture": lec})
}

// GET /api/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lec, err := h.lectures.GetVersion(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": lec})
}

// GET /api/lecture-bases/:baseId/current
func (h *LectureHandler) GetCurrent(c *gin.Context) {
	baseID, ok := uuidParam(c, "baseId")
	if !ok {
		return
	}
	lec, err := h.lectures.GetCurrent(c.Request.Context(), baseID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": lec})
}

// GET /api/lecture-bases/:baseId/versions
func (h *LectureHandler) ListVersions(c *gin.Context) {
	baseID, ok := uuidParam(c, "baseId")
	if !ok {
		return
	}
	versions, err := h.lectures.ListVersions(c.Request.Context(), baseID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}
