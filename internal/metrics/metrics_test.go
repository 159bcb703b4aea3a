package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTask(t *testing.T) {
	before := testutil.ToFloat64(ReportTasksTotal.WithLabelValues("day", TaskOutcomeSuccess))
	RecordTask("day", TaskOutcomeSuccess)
	RecordTask("day", TaskOutcomeSuccess)
	after := testutil.ToFloat64(ReportTasksTotal.WithLabelValues("day", TaskOutcomeSuccess))
	if after-before != 2 {
		t.Fatalf("Expected the counter to grow by 2, got %v", after-before)
	}
	if got := testutil.ToFloat64(ReportTasksTotal.WithLabelValues("day", TaskOutcomeDropped)); got != 0 {
		t.Fatalf("Expected no dropped tasks, got %v", got)
	}
}
