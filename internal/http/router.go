package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lecture-feedback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lecture-feedback-backend/internal/http/middleware"
	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	IdentityMiddleware *httpMW.IdentityMiddleware

	LectureHandler    *httpH.LectureHandler
	FeedbackHandler   *httpH.FeedbackHandler
	ResolutionHandler *httpH.ResolutionHandler
	QueryHandler      *httpH.QueryHandler
	RealtimeHandler   *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	if cfg.IdentityMiddleware != nil {
		r.Use(cfg.IdentityMiddleware.Attach())
	}
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Content store
	if cfg.LectureHandler != nil {
		api.POST("/lectures", cfg.LectureHandler.CreateLecture)
		api.GET("/lectures/:id", cfg.LectureHandler.GetLecture)
		api.GET("/lecture-bases/:baseId/current", cfg.LectureHandler.GetCurrent)
		api.GET("/lecture-bases/:baseId/versions", cfg.LectureHandler.ListVersions)
	}

	// Feedback store
	if cfg.FeedbackHandler != nil {
		api.POST("/reactions", cfg.FeedbackHandler.AddReaction)
		api.GET("/reactions", cfg.FeedbackHandler.ListReactions)
		api.POST("/enrollments", cfg.FeedbackHandler.Enroll)
		api.GET("/suggestions", cfg.FeedbackHandler.ListSuggestions)
		api.GET("/suggestions/:id", cfg.FeedbackHandler.GetSuggestion)
	}

	// Resolution engine
	if cfg.ResolutionHandler != nil {
		api.POST("/teacher/suggestions/:id/approve", cfg.ResolutionHandler.Approve)
		api.POST("/teacher/suggestions/:id/reject", cfg.ResolutionHandler.Reject)
		api.POST("/teacher/suggestions/approve", cfg.ResolutionHandler.ApproveMany)
		api.POST("/ai/generate-suggestions", cfg.ResolutionHandler.GenerateSuggestions)
		api.GET("/lectures/:id/generation-runs", cfg.ResolutionHandler.ListGenerationRuns)
	}

	// Projections
	if cfg.QueryHandler != nil {
		api.GET("/student/:userId/lectures/recent", cfg.QueryHandler.StudentRecentLectures)
		api.GET("/student/:userId/lectures/:lectureId/comments", cfg.QueryHandler.StudentComments)
		api.GET("/teacher/:teacherId/lectures", cfg.QueryHandler.TeacherLectures)
		api.GET("/teacher/:teacherId/lectures/grouped", cfg.QueryHandler.TeacherGroupedLectures)
		api.GET("/teacher/:teacherId/lectures/:lectureId/comments", cfg.QueryHandler.TeacherComments)
		api.GET("/teacher/:teacherId/feedback/open", cfg.QueryHandler.TeacherOpenFeedback)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		api.GET("/events/stream", cfg.RealtimeHandler.SSEStream)
	}

	return r
}
