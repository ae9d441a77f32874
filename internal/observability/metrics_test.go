package observability

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveAggregateOperation("Resolution.Approve", "ok", time.Millisecond)
	m.IncAggregateConflict("Resolution.Approve")
	m.IncAggregateRetry("Resolution.Approve")
	m.ObserveGenerationCall("openai", "ok", time.Millisecond)
	m.AddGenerationOutcome("created", 2)
	m.IncEvent("reaction.created")
	if err := m.RegisterDBStats(&sql.DB{}, "x"); err != nil {
		t.Fatalf("nil RegisterDBStats: %v", err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler status: %d", rec.Code)
	}
}

func TestInitDisabledReturnsNil(t *testing.T) {
	if m := Init(false); m != nil {
		t.Fatalf("disabled metrics should be nil")
	}
}

func TestAggregateCounters(t *testing.T) {
	m := NewMetrics()
	m.IncAggregateConflict("Resolution.Approve")
	m.IncAggregateConflict("Resolution.Approve")
	m.IncAggregateRetry("Feedback.AddReaction")
	m.ObserveAggregateOperation("Resolution.Approve", "conflict", 3*time.Millisecond)

	if got := testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("Resolution.Approve")); got != 2 {
		t.Fatalf("conflicts: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.aggregateRetries.WithLabelValues("Feedback.AddReaction")); got != 1 {
		t.Fatalf("retries: want=1 got=%v", got)
	}
	if n := testutil.CollectAndCount(m.aggregateOps); n != 1 {
		t.Fatalf("aggregate op series: want=1 got=%d", n)
	}
}

func TestGenerationOutcomeIgnoresZero(t *testing.T) {
	m := NewMetrics()
	m.AddGenerationOutcome("failed", 0)
	m.AddGenerationOutcome("created", 3)
	if got := testutil.ToFloat64(m.generationRuns.WithLabelValues("created")); got != 3 {
		t.Fatalf("created: want=3 got=%v", got)
	}
	if n := testutil.CollectAndCount(m.generationRuns); n != 1 {
		t.Fatalf("zero outcome must not create a series, have %d", n)
	}
}

func TestHandlerExposesAPIMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/reactions", StatusLabel(201), 20*time.Millisecond)
	m.ObserveAPI("", "", "", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`lf_api_requests_total{method="POST",route="/api/reactions",status="201"} 1`,
		`lf_api_requests_total{method="UNKNOWN",route="unknown",status="0"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
}

func TestParseOTLPHeaders(t *testing.T) {
	got := ParseOTLPHeaders(" a=1, bad ,b = 2,c=")
	if len(got) != 2 || got["a"] != "1" || got["b"] != "2" {
		t.Fatalf("unexpected headers: %v", got)
	}
	if ParseOTLPHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
