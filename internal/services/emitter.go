package services

import (
	"context"

	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime"
	"github.com/yungbote/lecture-feedback-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter delivers straight to this instance's subscribers.
type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	observability.Current().IncEvent(string(msg.Event))
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes to the cross-instance bus; every instance's forwarder
// feeds its own hub, this one included.
type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	observability.Current().IncEvent(string(msg.Event))
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("event publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
}
