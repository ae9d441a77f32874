package app

import (
	"strings"
	"time"

	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/envutil"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/platform/openai"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime/bus"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type Config struct {
	Port        string
	LogMode     string
	ServiceName string

	DBDriver   string
	SQLitePath string

	RedisAddr    string
	RedisChannel string

	OpenAI     openai.Config
	Generation services.GenerationConfig

	IdentitySecret string
	CORSOrigins    []string

	Otel           observability.OtelConfig
	MetricsEnabled bool

	SeedFile string
}

func LoadConfig(log *logger.Logger) Config {
	serviceName := envutil.GetEnv("SERVICE_NAME", "lecture-feedback-backend", log)
	policy := strings.ToLower(envutil.GetEnv("GENERATION_DUPLICATE_POLICY", domainagg.DuplicateAllow, log))
	if !domainagg.ValidDuplicatePolicy(policy) {
		log.Warn("unknown GENERATION_DUPLICATE_POLICY, using allow", "value", policy)
		policy = domainagg.DuplicateAllow
	}
	return Config{
		Port:        envutil.GetEnv("PORT", "8080", log),
		LogMode:     envutil.GetEnv("LOG_MODE", "development", log),
		ServiceName: serviceName,

		DBDriver:   strings.ToLower(envutil.GetEnv("DB_DRIVER", "postgres", log)),
		SQLitePath: envutil.GetEnv("SQLITE_PATH", "", log),

		RedisAddr:    envutil.GetEnv("REDIS_ADDR", "", log),
		RedisChannel: envutil.GetEnv("REDIS_CHANNEL", bus.DefaultChannel, log),

		OpenAI: openai.Config{
			APIKey:      envutil.GetEnv("OPENAI_API_KEY", "", log),
			Model:       envutil.GetEnv("OPENAI_MODEL", "", log),
			BaseURL:     envutil.GetEnv("OPENAI_BASE_URL", "", log),
			RPS:         envutil.GetEnvAsFloat("OPENAI_RPS", 2, log),
			Burst:       envutil.GetEnvAsInt("OPENAI_BURST", 1, log),
			MaxRetries:  envutil.GetEnvAsInt("OPENAI_MAX_RETRIES", 2, log),
			Timeout:     time.Duration(envutil.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60, log)) * time.Second,
			Temperature: float32(envutil.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.3, log)),
		},
		Generation: services.GenerationConfig{
			MinReactions:    envutil.GetEnvAsInt("GENERATION_MIN_REACTIONS", 0, log),
			Concurrency:     envutil.GetEnvAsInt("GENERATION_CONCURRENCY", 4, log),
			DuplicatePolicy: policy,
			CallTimeout:     time.Duration(envutil.GetEnvAsInt("GENERATION_CALL_TIMEOUT_SECONDS", 90, log)) * time.Second,
		},

		IdentitySecret: envutil.GetEnv("IDENTITY_JWT_SECRET", "", log),
		CORSOrigins:    envutil.GetEnvAsList("CORS_ORIGINS", nil),

		Otel: observability.OtelConfig{
			Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", false),
			ServiceName: serviceName,
			Environment: envutil.GetEnv("OTEL_ENVIRONMENT", "dev", log),
			Version:     envutil.GetEnv("OTEL_SERVICE_VERSION", "", log),
			Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseOTLPHeaders(envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.GetEnvAsFloat("OTEL_SAMPLE_RATIO", 1, log),
		},
		MetricsEnabled: envutil.GetEnvAsBool("METRICS_ENABLED", true),

		SeedFile: envutil.GetEnv("SEED_FILE", "", log),
	}
}
