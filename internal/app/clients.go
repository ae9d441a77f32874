package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/platform/openai"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime/bus"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type Clients struct {
	// Nil when REDIS_ADDR is unset; events then stay in-process.
	EventBus  bus.Bus
	Generator services.SuggestionGenerator
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(ctx, log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		out.EventBus = b
	}

	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		oc, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.Generator = services.NewOpenAIGenerator(oc)
	} else {
		log.Warn("OPENAI_API_KEY not set; using template suggestion generator")
		out.Generator = services.NewTemplateGenerator()
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
}
