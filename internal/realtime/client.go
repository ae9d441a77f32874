package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

// SSEClient is one open event stream. UserID is whatever identity the
// caller presented; it is informational only.
type SSEClient struct {
	ID       uuid.UUID
	UserID   string
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger

	closeOnce sync.Once
}
