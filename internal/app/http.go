package app

import (
	"github.com/yungbote/lecture-feedback-backend/internal/http"
	httpH "github.com/yungbote/lecture-feedback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lecture-feedback-backend/internal/http/middleware"
	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime"
)

// RouterConfig assembles the handler set for svc. Exported so tests can
// drive the full HTTP surface without a listener.
func RouterConfig(log *logger.Logger, cfg Config, svc Services, hub *realtime.SSEHub, metrics *observability.Metrics) http.RouterConfig {
	log.Info("Wiring handlers...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.ServiceName
	}
	return http.RouterConfig{
		Log:                log.With("component", "http"),
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSOrigins,
		Metrics:            metrics,
		IdentityMiddleware: httpMW.NewIdentityMiddleware(log, cfg.IdentitySecret),
		LectureHandler:     httpH.NewLectureHandler(log, svc.Lectures),
		FeedbackHandler:    httpH.NewFeedbackHandler(log, svc.Feedback),
		ResolutionHandler:  httpH.NewResolutionHandler(log, svc.Resolution),
		QueryHandler:       httpH.NewQueryHandler(log, svc.Query),
		RealtimeHandler:    httpH.NewRealtimeHandler(log, hub),
		HealthHandler:      httpH.NewHealthHandler(),
	}
}
