package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/lecture-feedback-backend/internal/pkg/ctxutil"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

// IdentityClaims is the token shape accepted when a secret is configured.
// Subject carries the user id.
type IdentityClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IdentityMiddleware attaches caller identity to the request context. It
// never rejects an anonymous request; handlers decide what they need.
type IdentityMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewIdentityMiddleware(log *logger.Logger, secret string) *IdentityMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &IdentityMiddleware{
		log:    log.With("middleware", "IdentityMiddleware"),
		secret: []byte(strings.TrimSpace(secret)),
	}
}

func (im *IdentityMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		var rd *ctxutil.RequestData
		if len(im.secret) > 0 {
			token := extractToken(c)
			if token != "" {
				parsed, err := im.parse(token)
				if err != nil {
					im.log.Debug("rejecting bearer token", "error", err)
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
						"error": gin.H{"message": "invalid token", "code": "unauthorized"},
					})
					return
				}
				rd = parsed
			}
		} else {
			rd = fromHeaders(c)
		}
		if rd != nil {
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		}
		c.Next()
	}
}

func (im *IdentityMiddleware) parse(tokenString string) (*ctxutil.RequestData, error) {
	claims := &IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return im.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &ctxutil.RequestData{UserID: sub, Role: strings.ToLower(strings.TrimSpace(claims.Role))}, nil
}

// fromHeaders trusts X-User-Id / X-User-Role. EventSource cannot set
// headers, so the stream endpoint may pass them as query parameters.
func fromHeaders(c *gin.Context) *ctxutil.RequestData {
	userID := strings.TrimSpace(c.GetHeader(headerUserID))
	role := strings.TrimSpace(c.GetHeader(headerUserRole))
	if userID == "" {
		userID = strings.TrimSpace(c.Query("userId"))
		role = strings.TrimSpace(c.Query("role"))
	}
	if userID == "" {
		return nil
	}
	return &ctxutil.RequestData{UserID: userID, Role: strings.ToLower(role)}
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
