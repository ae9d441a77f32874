package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/http/response"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/ctxutil"
)

// uuidParam parses a path parameter and writes a 400 on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondAggregateError(c, domainagg.Errorf(domainagg.CodeValidation, "http", "invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery returns nil for an absent parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondAggregateError(c, domainagg.Errorf(domainagg.CodeValidation, "http", "invalid %s", name))
		return nil, false
	}
	return &id, true
}

func optionalBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		response.RespondAggregateError(c, domainagg.Errorf(domainagg.CodeValidation, "http", "invalid %s", name))
		return nil, false
	}
	return &b, true
}

// callerOr returns explicit when set, otherwise the identity on the request.
func callerOr(c *gin.Context, explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd.UserID
	}
	return ""
}

func badRequest(c *gin.Context, err error) {
	response.RespondAggregateError(c, domainagg.Wrap(domainagg.CodeValidation, "http", err))
}
