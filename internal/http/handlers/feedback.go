package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/http/response"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type FeedbackHandler struct {
	log      *logger.Logger
	feedback services.FeedbackService
}

func NewFeedbackHandler(log *logger.Logger, feedback services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		log:      log.With("handler", "FeedbackHandler"),
		feedback: feedback,
	}
}

type addReactionRequest struct {
	LectureID uuid.UUID `json:"lectureId" binding:"required"`
	SectionID uuid.UUID `json:"sectionId" binding:"required"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type" binding:"required"`
	Comment   string    `json:"comment"`
}

// POST /api/reactions
func (h *FeedbackHandler) AddReaction(c *gin.Context) {
	var req addReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.feedback.AddReaction(c.Request.Context(), domainagg.AddReactionInput{
		LectureID: req.LectureID,
		SectionID: req.SectionID,
		UserID:    callerOr(c, req.UserID),
		Type:      req.Type,
		Comment:   req.Comment,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"reaction": r})
}

type enrollRequest struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId" binding:"required"`
}

// POST /api/enrollments
func (h *FeedbackHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.feedback.Enroll(c.Request.Context(), callerOr(c, req.UserID), req.CourseID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"enrollment": e})
}

// GET /api/reactions?lectureId=&userId=&addressed=
func (h *FeedbackHandler) ListReactions(c *gin.Context) {
	lectureID, ok := optionalUUIDQuery(c, "lectureId")
	if !ok {
		return
	}
	addressed, ok := optionalBoolQuery(c, "addressed")
	if !ok {
		return
	}
	out, err := h.feedback.ListReactions(c.Request.Context(), services.ReactionQuery{
		LectureID: lectureID,
		UserID:    c.Query("userId"),
		Addressed: addressed,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reactions": out})
}

// GET /api/suggestions?lectureId=&status=
func (h *FeedbackHandler) ListSuggestions(c *gin.Context) {
	lectureID, ok := optionalUUIDQuery(c, "lectureId")
	if !ok {
		return
	}
	out, err := h.feedback.ListSuggestions(c.Request.Context(), services.SuggestionQuery{
		LectureID: lectureID,
		Status:    types.SuggestionStatus(c.Query("status")),
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": out})
}

// GET /api/suggestions/:id
func (h *FeedbackHandler) GetSuggestion(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	s, err := h.feedback.GetSuggestion(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestion": s})
}
