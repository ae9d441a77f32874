package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Resolution.Approve", "success", 10*time.Millisecond)
	h.ObserveOperation("Resolution.Approve", "conflict", time.Millisecond)
	h.ObserveOperation("Resolution.Reject", "success", time.Millisecond)
	h.IncConflict("Resolution.Approve")
	h.IncRetry("Resolution.Approve")

	got := h.StatusesFor("Resolution.Approve")
	if len(got) != 2 || got[0] != "success" || got[1] != "conflict" {
		t.Fatalf("StatusesFor: %+v", got)
	}
	if h.ConflictCount() != 1 {
		t.Fatalf("ConflictCount: want=1 got=%d", h.ConflictCount())
	}
	if len(h.Retries) != 1 || h.Retries[0] != "Resolution.Approve" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}
