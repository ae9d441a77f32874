package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/http/response"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/ctxutil"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log: log.With("handler", "RealtimeHandler"),
		hub: hub,
	}
}

// SSEStream subscribes the caller to its own user channel, its teacher
// channel when the role is teacher, and every ?baseLectureId= given.
//
// GET /api/events/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	var channels []string
	userID := ""
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != "" {
		userID = rd.UserID
		channels = append(channels, realtime.UserChannel(rd.UserID))
		if rd.IsTeacher() {
			channels = append(channels, realtime.TeacherChannel(rd.UserID))
		}
	}
	for _, raw := range c.QueryArray("baseLectureId") {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "validation", err)
			return
		}
		channels = append(channels, realtime.LectureChannel(id))
	}
	if len(channels) == 0 {
		response.RespondError(c, http.StatusBadRequest, "validation", errNoChannels)
		return
	}

	client := h.hub.NewSSEClient(userID)
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.log.Info("SSE stream open", "client_id", client.ID, "user_id", userID, "channels", len(channels))

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "client_id", client.ID)
}

var errNoChannels = errors.New("identify yourself or pass at least one baseLectureId")
