package aggregates_test

import (
	"testing"

	"github.com/yungbote/lecture-feedback-backend/internal/data/aggregates"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
)

func TestContractsNameMigratedTables(t *testing.T) {
	tables := map[string]bool{}
	for _, m := range types.Models() {
		if tn, ok := m.(interface{ TableName() string }); ok {
			tables[tn.TableName()] = true
		}
	}

	base := aggregates.BaseDeps{}
	aggs := []domainagg.Aggregate{
		aggregates.NewLectureAggregate(aggregates.LectureAggregateDeps{Base: base}),
		aggregates.NewFeedbackAggregate(aggregates.FeedbackAggregateDeps{Base: base}),
		aggregates.NewResolutionAggregate(aggregates.ResolutionAggregateDeps{Base: base}),
	}
	for _, a := range aggs {
		c := a.Contract()
		if c.Name == "" || len(c.Writes) == 0 {
			t.Fatalf("incomplete contract: %+v", c)
		}
		for _, w := range c.Writes {
			if !tables[w] {
				t.Fatalf("%s writes unknown table %q", c.Name, w)
			}
		}
	}
	if !domainagg.ResolutionAggregateContract.Owns("lecture_head") || domainagg.FeedbackAggregateContract.Owns("lecture_head") {
		t.Fatalf("only version-producing aggregates may move lecture_head")
	}
}
