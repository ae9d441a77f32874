package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/http/response"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type ResolutionHandler struct {
	log        *logger.Logger
	resolution services.ResolutionService
}

func NewResolutionHandler(log *logger.Logger, resolution services.ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{
		log:        log.With("handler", "ResolutionHandler"),
		resolution: resolution,
	}
}

// POST /api/teacher/suggestions/:id/approve
func (h *ResolutionHandler) Approve(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.resolution.Approve(c.Request.Context(), id)
	if err != nil {
		h.log.Warn("approve failed", "suggestion_id", id, "error", err)
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"suggestion":        res.Suggestion,
		"newLecture":        res.NewLecture,
		"parentLectureId":   res.ParentLectureID,
		"reactionsResolved": res.ReactionsResolved,
	})
}

type approveManyRequest struct {
	SuggestionIDs []uuid.UUID `json:"suggestionIds" binding:"required,min=1"`
}

// POST /api/teacher/suggestions/approve
func (h *ResolutionHandler) ApproveMany(c *gin.Context) {
	var req approveManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.resolution.ApproveMany(c.Request.Context(), req.SuggestionIDs)
	if err != nil {
		h.log.Warn("approve many failed", "count", len(req.SuggestionIDs), "error", err)
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"suggestions":       res.Suggestions,
		"newLecture":        res.NewLecture,
		"versions":          res.Versions,
		"parentLectureId":   res.ParentLectureID,
		"reactionsResolved": res.ReactionsResolved,
	})
}

// POST /api/teacher/suggestions/:id/reject
func (h *ResolutionHandler) Reject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.resolution.Reject(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"suggestion":        res.Suggestion,
		"reactionsResolved": res.ReactionsResolved,
	})
}

type generateRequest struct {
	LectureID uuid.UUID `json:"lectureId" binding:"required"`
}

// POST /api/ai/generate-suggestions
func (h *ResolutionHandler) GenerateSuggestions(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.resolution.GenerateSuggestions(c.Request.Context(), req.LectureID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/lectures/:id/generation-runs
func (h *ResolutionHandler) ListGenerationRuns(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	runs, err := h.resolution.ListGenerationRuns(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
